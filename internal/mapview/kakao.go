package mapview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultKakaoSDKURL is the Kakao Maps JavaScript SDK endpoint.
const DefaultKakaoSDKURL = "https://dapi.kakao.com/v2/maps/sdk.js"

// ErrNoAppKey is returned when the Kakao engine has no JavaScript app key.
var ErrNoAppKey = errors.New("kakao maps app key is required")

// KakaoOptions configures the Kakao Maps engine.
type KakaoOptions struct {
	AppKey     string
	SDKURL     string
	HTTPClient *http.Client
}

// KakaoLoader checks that the SDK answers for the app key and returns a
// KakaoEngine.
type KakaoLoader struct {
	opts KakaoOptions
}

// NewKakaoLoader creates a KakaoLoader.
func NewKakaoLoader(opts KakaoOptions) *KakaoLoader {
	if opts.SDKURL == "" {
		opts.SDKURL = DefaultKakaoSDKURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &KakaoLoader{opts: opts}
}

// Load implements Loader.
func (l *KakaoLoader) Load(ctx context.Context) (Engine, error) {
	if l.opts.AppKey == "" {
		return nil, ErrNoAppKey
	}

	sdk, err := sdkScriptURL(l.opts.SDKURL, l.opts.AppKey)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sdk, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load kakao maps sdk: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao maps sdk returned status %d", resp.StatusCode)
	}

	return &KakaoEngine{sdkURL: sdk, tmpl: kakaoPage}, nil
}

func sdkScriptURL(base, appKey string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid sdk url: %w", err)
	}
	q := u.Query()
	q.Set("appkey", appKey)
	q.Set("autoload", "false")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// KakaoEngine encodes scenes as an HTML page that boots the Kakao Maps SDK
// and replays the scene's primitives.
type KakaoEngine struct {
	primitives

	sdkURL string
	tmpl   *template.Template
}

// Encode implements Engine.
func (e *KakaoEngine) Encode(canvas *Scene) (Frame, error) {
	var buf bytes.Buffer
	err := e.tmpl.Execute(&buf, struct {
		SDKURL string
		Scene  *Scene
	}{
		SDKURL: e.sdkURL,
		Scene:  canvas,
	})
	if err != nil {
		return Frame{}, fmt.Errorf("failed to render map page: %w", err)
	}

	return Frame{
		ContentType: "text/html; charset=utf-8",
		Body:        buf.Bytes(),
		RenderedAt:  time.Now(),
	}, nil
}

var kakaoPage = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>lunchpick map</title>
<style>html, body, #map { width: 100%; height: 100%; margin: 0; }</style>
<script src="{{.SDKURL}}"></script>
</head>
<body>
<div id="map"></div>
<script>
var scene = {{.Scene}};
kakao.maps.load(function () {
  var center = new kakao.maps.LatLng(scene.center.lat, scene.center.lon);
  var map = new kakao.maps.Map(document.getElementById("map"), {
    center: center,
    level: scene.level
  });
  scene.markers.forEach(function (m) {
    new kakao.maps.Marker({
      map: map,
      position: new kakao.maps.LatLng(m.position.lat, m.position.lon),
      title: m.label
    });
  });
  scene.circles.forEach(function (c) {
    new kakao.maps.Circle({
      map: map,
      center: new kakao.maps.LatLng(c.center.lat, c.center.lon),
      radius: c.radius,
      strokeWeight: c.style.strokeWeight,
      strokeColor: c.style.strokeColor,
      strokeOpacity: c.style.strokeOpacity,
      fillColor: c.style.fillColor,
      fillOpacity: c.style.fillOpacity
    });
  });
});
</script>
</body>
</html>
`))
