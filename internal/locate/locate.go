// Package locate resolves the device's current position.
package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloo-solutions/lunchpick/internal/domain"
)

// Locator returns the current position of the device.
type Locator interface {
	CurrentPosition(ctx context.Context) (domain.Coordinate, error)
}

// Static is a position the user already supplied.
type Static domain.Coordinate

// CurrentPosition returns the stored position.
func (s Static) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	coord := domain.Coordinate(s)
	if err := coord.Validate(); err != nil {
		return domain.Coordinate{}, domain.ErrLocationDenied.WithCause(err)
	}
	return coord, nil
}

const DefaultIPLocateURL = "http://ip-api.com/json/"

// IPLocator estimates the position from the public IP address using an
// ip-api compatible endpoint.
type IPLocator struct {
	url        string
	httpClient *http.Client
}

// NewIPLocator creates an IPLocator. An empty url uses DefaultIPLocateURL.
func NewIPLocator(url string) *IPLocator {
	if url == "" {
		url = DefaultIPLocateURL
	}
	return &IPLocator{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentPosition queries the endpoint. Any failure, including a "fail"
// status in the body, is reported as domain.ErrLocationDenied.
func (l *IPLocator) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url+"?fields=status,message,lat,lon", nil)
	if err != nil {
		return domain.Coordinate{}, domain.ErrLocationDenied.WithCause(err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return domain.Coordinate{}, domain.ErrLocationDenied.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Coordinate{}, domain.ErrLocationDenied.WithCause(
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var payload ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Coordinate{}, domain.ErrLocationDenied.WithCause(fmt.Errorf("failed to parse response: %w", err))
	}
	if payload.Status != "success" {
		return domain.Coordinate{}, domain.ErrLocationDenied.WithCause(fmt.Errorf("lookup failed: %s", payload.Message))
	}

	coord := domain.Coordinate{Lon: payload.Lon, Lat: payload.Lat}
	if err := coord.Validate(); err != nil {
		return domain.Coordinate{}, domain.ErrLocationDenied.WithCause(err)
	}
	return coord, nil
}
