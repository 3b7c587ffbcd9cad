// Package mapview draws the session's map view through a pluggable map
// engine. Engines share one scene model and differ only in how a scene is
// encoded into a frame.
package mapview

import (
	"context"
	"time"

	"github.com/cloo-solutions/lunchpick/internal/domain"
)

// DefaultLevel is the zoom level every map is created with.
const DefaultLevel = 3

// CircleStyle describes how the search radius circle is painted.
type CircleStyle struct {
	StrokeWeight  int     `json:"strokeWeight"`
	StrokeColor   string  `json:"strokeColor"`
	StrokeOpacity float64 `json:"strokeOpacity"`
	FillColor     string  `json:"fillColor"`
	FillOpacity   float64 `json:"fillOpacity"`
}

// DefaultCircleStyle is the fixed radius circle style.
var DefaultCircleStyle = CircleStyle{
	StrokeWeight:  2,
	StrokeColor:   "#75B8FA",
	StrokeOpacity: 0.7,
	FillColor:     "#CFE7FF",
	FillOpacity:   0.5,
}

// Scene is an engine-neutral map canvas.
type Scene struct {
	Center  domain.Coordinate `json:"center"`
	Level   int               `json:"level"`
	Markers []Marker          `json:"markers"`
	Circles []Circle          `json:"circles"`
}

// Overlay is anything that can be attached to a Scene.
type Overlay interface {
	attachTo(s *Scene)
}

// Marker is a labelled pin.
type Marker struct {
	Position domain.Coordinate `json:"position"`
	Label    string            `json:"label"`
}

func (m Marker) attachTo(s *Scene) {
	s.Markers = append(s.Markers, m)
}

// Circle is a filled circle measured in meters.
type Circle struct {
	Center       domain.Coordinate `json:"center"`
	RadiusMeters float64           `json:"radius"`
	Style        CircleStyle       `json:"style"`
}

func (c Circle) attachTo(s *Scene) {
	s.Circles = append(s.Circles, c)
}

// Frame is one encoded rendering of a scene.
type Frame struct {
	ContentType string
	Body        []byte
	Markers     int
	RenderedAt  time.Time
}

// Engine is the set of drawing primitives a map backend offers.
type Engine interface {
	CreateMap(center domain.Coordinate, level int) *Scene
	CreateMarker(position domain.Coordinate, label string) Overlay
	CreateCircle(center domain.Coordinate, radiusMeters float64, style CircleStyle) Overlay
	Attach(o Overlay, canvas *Scene)
	Encode(canvas *Scene) (Frame, error)
}

// Loader loads a map engine once. Load may block on network or disk.
type Loader interface {
	Load(ctx context.Context) (Engine, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Engine, error)

func (f LoaderFunc) Load(ctx context.Context) (Engine, error) {
	return f(ctx)
}

// primitives implements the scene-building half of Engine.
type primitives struct{}

func (primitives) CreateMap(center domain.Coordinate, level int) *Scene {
	return &Scene{
		Center:  center,
		Level:   level,
		Markers: []Marker{},
		Circles: []Circle{},
	}
}

func (primitives) CreateMarker(position domain.Coordinate, label string) Overlay {
	return Marker{Position: position, Label: label}
}

func (primitives) CreateCircle(center domain.Coordinate, radiusMeters float64, style CircleStyle) Overlay {
	return Circle{Center: center, RadiusMeters: radiusMeters, Style: style}
}

func (primitives) Attach(o Overlay, canvas *Scene) {
	o.attachTo(canvas)
}

// Render fully redraws view on a fresh canvas: one marker per restaurant and
// one radius circle at the center.
func Render(e Engine, view domain.MapView) (Frame, error) {
	canvas := e.CreateMap(view.Center, DefaultLevel)
	for _, p := range view.Markers {
		e.Attach(e.CreateMarker(p.Coordinate, p.Name), canvas)
	}
	e.Attach(e.CreateCircle(view.Center, view.RadiusMeters, DefaultCircleStyle), canvas)

	frame, err := e.Encode(canvas)
	if err != nil {
		return Frame{}, err
	}
	frame.Markers = len(canvas.Markers)
	if frame.RenderedAt.IsZero() {
		frame.RenderedAt = time.Now()
	}
	return frame, nil
}
