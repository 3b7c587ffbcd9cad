// Package kakao is a client for the Kakao Local search API.
package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/cloo-solutions/lunchpick/internal/telemetry"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://dapi.kakao.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10

	addressPath = "/v2/local/search/address.json"
	keywordPath = "/v2/local/search/keyword.json"
)

// ErrNoAPIKey is returned when no REST API key is configured.
var ErrNoAPIKey = errors.New("kakao REST API key not set")

// Config configures a Client.
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Logger    logrus.FieldLogger
}

// Client calls the Kakao Local search endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient creates a Client with default settings.
func NewClient(apiKey string) (*Client, error) {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a Client with explicit configuration.
func NewClientWithConfig(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), int(math.Ceil(cfg.RateLimit))),
		log:     cfg.Logger,
	}, nil
}

// APIError represents a non-success response from the API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("kakao API error (%d %s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("kakao API error (%d): %s", e.StatusCode, e.Message)
}

type errorBody struct {
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
}

type meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

type roadAddress struct {
	AddressName  string `json:"address_name"`
	BuildingName string `json:"building_name"`
}

type addressDocument struct {
	AddressName string       `json:"address_name"`
	AddressType string       `json:"address_type"`
	X           string       `json:"x"`
	Y           string       `json:"y"`
	RoadAddress *roadAddress `json:"road_address"`
}

type addressResponse struct {
	Meta      meta              `json:"meta"`
	Documents []addressDocument `json:"documents"`
}

type keywordDocument struct {
	ID                string `json:"id"`
	PlaceName         string `json:"place_name"`
	CategoryName      string `json:"category_name"`
	CategoryGroupCode string `json:"category_group_code"`
	Phone             string `json:"phone"`
	AddressName       string `json:"address_name"`
	RoadAddressName   string `json:"road_address_name"`
	X                 string `json:"x"`
	Y                 string `json:"y"`
	PlaceURL          string `json:"place_url"`
	Distance          string `json:"distance"`
}

type keywordResponse struct {
	Meta      meta              `json:"meta"`
	Documents []keywordDocument `json:"documents"`
}

// SearchAddress looks up places whose address matches text.
func (c *Client) SearchAddress(ctx context.Context, text string) ([]domain.Place, error) {
	params := url.Values{}
	params.Set("query", text)

	var resp addressResponse
	if err := c.get(ctx, addressPath, params, &resp); err != nil {
		return nil, err
	}

	places := make([]domain.Place, 0, len(resp.Documents))
	for _, doc := range resp.Documents {
		place, err := doc.toPlace()
		if err != nil {
			c.log.WithError(err).WithField("address", doc.AddressName).Warn("skipping address document")
			continue
		}
		places = append(places, place)
	}
	return places, nil
}

// SearchKeyword runs a free-text place search, optionally narrowed to a
// category group and a circle around q.Center.
func (c *Client) SearchKeyword(ctx context.Context, q domain.KeywordQuery) ([]domain.Place, error) {
	params := url.Values{}
	params.Set("query", q.Text)
	if q.CategoryGroup != "" {
		params.Set("category_group_code", q.CategoryGroup)
	}
	if q.Center != nil {
		params.Set("x", strconv.FormatFloat(q.Center.Lon, 'f', -1, 64))
		params.Set("y", strconv.FormatFloat(q.Center.Lat, 'f', -1, 64))
		if q.RadiusMeters > 0 {
			params.Set("radius", strconv.Itoa(q.RadiusMeters))
		}
	}

	var resp keywordResponse
	if err := c.get(ctx, keywordPath, params, &resp); err != nil {
		return nil, err
	}

	places := make([]domain.Place, 0, len(resp.Documents))
	for _, doc := range resp.Documents {
		place, err := doc.toPlace()
		if err != nil {
			c.log.WithError(err).WithField("place", doc.PlaceName).Warn("skipping keyword document")
			continue
		}
		places = append(places, place)
	}
	return places, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	telemetry.AddBreadcrumb(ctx, "kakao", path+"?"+params.Encode())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("kakao request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			apiErr.Type = eb.ErrorType
			apiErr.Message = eb.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (d addressDocument) toPlace() (domain.Place, error) {
	coord, err := parseCoordinate(d.X, d.Y)
	if err != nil {
		return domain.Place{}, err
	}

	place := domain.NewPlace(d.AddressName, d.AddressName, coord, "")
	if d.RoadAddress != nil {
		place.RoadAddress = d.RoadAddress.AddressName
		if d.RoadAddress.BuildingName != "" {
			place.Name = d.RoadAddress.BuildingName
		}
	}
	return place, nil
}

func (d keywordDocument) toPlace() (domain.Place, error) {
	coord, err := parseCoordinate(d.X, d.Y)
	if err != nil {
		return domain.Place{}, err
	}

	place := domain.NewPlace(d.PlaceName, d.AddressName, coord, d.CategoryName)
	place.ID = d.ID
	place.RoadAddress = d.RoadAddressName
	place.CategoryGroup = d.CategoryGroupCode
	place.Phone = d.Phone
	place.URL = d.PlaceURL
	if d.Distance != "" {
		if dist, err := strconv.Atoi(d.Distance); err == nil {
			place.DistanceMeters = dist
		}
	}
	return place, nil
}

func parseCoordinate(x, y string) (domain.Coordinate, error) {
	lon, err := strconv.ParseFloat(x, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("invalid x %q: %w", x, err)
	}
	lat, err := strconv.ParseFloat(y, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("invalid y %q: %w", y, err)
	}
	return domain.Coordinate{Lon: lon, Lat: lat}, nil
}
