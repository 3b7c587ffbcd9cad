package mapview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	// EarthRadius is the WGS84 equatorial radius in meters.
	EarthRadius = 6378137.0

	defaultRasterWidth  = 800
	defaultRasterHeight = 600
	defaultFontSize     = 13.0

	pinRadius = 7
)

var (
	backgroundColor = color.RGBA{242, 239, 233, 255}
	gridColor       = color.RGBA{225, 221, 213, 255}
	pinColor        = color.RGBA{232, 69, 60, 255}
	pinBorderColor  = color.RGBA{255, 255, 255, 255}
	labelColor      = color.RGBA{40, 40, 40, 255}
	labelBackground = color.RGBA{255, 255, 255, 255}
)

// RasterOptions configures the static PNG engine.
type RasterOptions struct {
	Width  int
	Height int
	// FontData is a TrueType font used for labels. Go Regular when nil.
	FontData []byte
	FontSize float64
}

// RasterLoader parses the label font and returns a RasterEngine.
type RasterLoader struct {
	opts RasterOptions
}

// NewRasterLoader creates a RasterLoader, filling unset options with defaults.
func NewRasterLoader(opts RasterOptions) *RasterLoader {
	if opts.Width <= 0 {
		opts.Width = defaultRasterWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultRasterHeight
	}
	if opts.FontSize <= 0 {
		opts.FontSize = defaultFontSize
	}
	if len(opts.FontData) == 0 {
		opts.FontData = goregular.TTF
	}
	return &RasterLoader{opts: opts}
}

// Load implements Loader.
func (l *RasterLoader) Load(ctx context.Context) (Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed, err := freetype.ParseFont(l.opts.FontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse map font: %w", err)
	}

	return &RasterEngine{
		width:  l.opts.Width,
		height: l.opts.Height,
		face: truetype.NewFace(parsed, &truetype.Options{
			Size:    l.opts.FontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		}),
	}, nil
}

// RasterEngine encodes scenes as PNG images using an equirectangular
// projection around the scene center.
type RasterEngine struct {
	primitives

	width  int
	height int

	// font.Face caches glyphs and is not safe for concurrent use
	mu   sync.Mutex
	face font.Face
}

// Encode implements Engine.
func (e *RasterEngine) Encode(canvas *Scene) (Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	proj := newProjection(canvas, e.width, e.height)
	drawGrid(img, 50)

	for _, c := range canvas.Circles {
		if err := drawCircle(img, proj, c); err != nil {
			return Frame{}, err
		}
	}

	type placed struct {
		x, y  int
		label string
	}
	pins := make([]placed, 0, len(canvas.Markers))
	for _, m := range canvas.Markers {
		px, py := proj.point(m.Position)
		x, y := int(math.Round(px)), int(math.Round(py))
		drawPin(img, x, y)
		pins = append(pins, placed{x: x, y: y, label: m.Label})
	}
	// Labels go on top of every pin.
	for _, p := range pins {
		e.drawLabel(img, p.x+pinRadius+4, p.y, p.label)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Frame{}, fmt.Errorf("failed to encode map image: %w", err)
	}

	return Frame{
		ContentType: "image/png",
		Body:        buf.Bytes(),
		RenderedAt:  time.Now(),
	}, nil
}

func (e *RasterEngine) drawLabel(img *image.RGBA, x, y int, text string) {
	if text == "" {
		return
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: e.face,
	}
	metrics := e.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	width := drawer.MeasureString(text).Ceil()

	baseline := y + (ascent-descent)/2
	box := image.Rect(x-3, baseline-ascent-2, x+width+3, baseline+descent+2)
	fillRect(img, box, labelBackground, 0.85)

	drawer.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: fixed.I(baseline),
	}
	drawer.DrawString(text)
}

// projection maps coordinates to pixels, scaled so the largest circle fits
// the shorter image side with a margin.
type projection struct {
	center         domain.Coordinate
	cosLat         float64
	pixelsPerMeter float64
	cx, cy         float64
}

func newProjection(canvas *Scene, width, height int) projection {
	extent := 0.0
	for _, c := range canvas.Circles {
		extent = math.Max(extent, c.RadiusMeters)
	}
	if extent <= 0 {
		extent = 125 * math.Pow(2, float64(canvas.Level))
	}

	half := float64(min(width, height)) / 2
	return projection{
		center:         canvas.Center,
		cosLat:         math.Cos(canvas.Center.Lat * math.Pi / 180),
		pixelsPerMeter: half * 0.85 / extent,
		cx:             float64(width) / 2,
		cy:             float64(height) / 2,
	}
}

func (p projection) point(c domain.Coordinate) (float64, float64) {
	dx := (c.Lon - p.center.Lon) * math.Pi / 180 * EarthRadius * p.cosLat
	dy := (c.Lat - p.center.Lat) * math.Pi / 180 * EarthRadius
	return p.cx + dx*p.pixelsPerMeter, p.cy - dy*p.pixelsPerMeter
}

func drawGrid(img *image.RGBA, step int) {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x += step {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			img.SetRGBA(x, y, gridColor)
		}
	}
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, gridColor)
		}
	}
}

func drawCircle(img *image.RGBA, proj projection, c Circle) error {
	fill, err := parseHexColor(c.Style.FillColor)
	if err != nil {
		return err
	}
	stroke, err := parseHexColor(c.Style.StrokeColor)
	if err != nil {
		return err
	}

	cx, cy := proj.point(c.Center)
	r := c.RadiusMeters * proj.pixelsPerMeter
	halfStroke := float64(c.Style.StrokeWeight) / 2

	minX := int(math.Floor(cx - r - halfStroke))
	maxX := int(math.Ceil(cx + r + halfStroke))
	minY := int(math.Floor(cy - r - halfStroke))
	maxY := int(math.Ceil(cy + r + halfStroke))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if d <= r {
				blend(img, x, y, fill, c.Style.FillOpacity)
			}
			if math.Abs(d-r) <= halfStroke {
				blend(img, x, y, stroke, c.Style.StrokeOpacity)
			}
		}
	}
	return nil
}

func drawPin(img *image.RGBA, x, y int) {
	for dy := -pinRadius; dy <= pinRadius; dy++ {
		for dx := -pinRadius; dx <= pinRadius; dx++ {
			d := math.Hypot(float64(dx), float64(dy))
			switch {
			case d <= float64(pinRadius)-2:
				blend(img, x+dx, y+dy, pinColor, 1)
			case d <= float64(pinRadius):
				blend(img, x+dx, y+dy, pinBorderColor, 1)
			}
		}
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA, opacity float64) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			blend(img, x, y, c, opacity)
		}
	}
}

// blend paints c over the pixel at (x, y) with the given opacity.
func blend(img *image.RGBA, x, y int, c color.RGBA, opacity float64) {
	if !image.Pt(x, y).In(img.Rect) {
		return
	}
	dst := img.RGBAAt(x, y)
	mix := func(d, s uint8) uint8 {
		return uint8(math.Round(float64(d)*(1-opacity) + float64(s)*opacity))
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(dst.R, c.R),
		G: mix(dst.G, c.G),
		B: mix(dst.B, c.B),
		A: 255,
	})
}

// parseHexColor parses "#RRGGBB".
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
