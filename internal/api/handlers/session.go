package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/lunchpick/internal/api"
	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/cloo-solutions/lunchpick/internal/locate"
	"github.com/cloo-solutions/lunchpick/internal/mapview"
	"github.com/cloo-solutions/lunchpick/internal/session"
	"github.com/go-chi/chi/v5"
)

type SearchService interface {
	ResolveAddress(ctx context.Context, query string) ([]domain.Place, error)
	SelectCandidateAt(ctx context.Context, index int) ([]domain.Place, error)
	FindNearby(ctx context.Context, center domain.Coordinate) ([]domain.Place, error)
	LocateUser(ctx context.Context) ([]domain.Place, error)
	LocateUserWith(ctx context.Context, locator locate.Locator) ([]domain.Place, error)
	Recommend(ctx context.Context, filter domain.FilterSpec, size int) ([]domain.Place, error)
	SetRadius(ctx context.Context, meters float64) error
}

type StateReader interface {
	ID() string
	Snapshot() session.Snapshot
}

type FrameSource interface {
	Frame() (mapview.Frame, error)
}

type SessionHandler struct {
	svc   SearchService
	state StateReader
	html  FrameSource
	png   FrameSource
}

// NewSessionHandler creates the handler for the search session endpoints.
// Either frame source may be nil when that engine is not configured.
func NewSessionHandler(svc SearchService, state StateReader, html, png FrameSource) *SessionHandler {
	return &SessionHandler{svc: svc, state: state, html: html, png: png}
}

type SearchRequest struct {
	Query string `json:"query"`
}

type RadiusRequest struct {
	RadiusMeters *float64 `json:"radius_meters"`
}

type CoordinateRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type RecommendRequest struct {
	Include string `json:"include"`
	Exclude string `json:"exclude"`
	Count   *int   `json:"count"`
}

type PlaceResponse struct {
	domain.Place
	Display string `json:"display"`
}

type PlacesResponse struct {
	Places []PlaceResponse `json:"places"`
	Count  int             `json:"count"`
}

// StateResponse is the session snapshot with display text on every place.
type StateResponse struct {
	session.Snapshot
	Candidates  []PlaceResponse `json:"candidates"`
	Restaurants []PlaceResponse `json:"restaurants"`
}

func toPlaceResponses(places []domain.Place) []PlaceResponse {
	out := make([]PlaceResponse, 0, len(places))
	for _, p := range places {
		out = append(out, PlaceResponse{Place: p, Display: p.DisplayName()})
	}
	return out
}

func placesToResponse(places []domain.Place) PlacesResponse {
	out := toPlaceResponses(places)
	return PlacesResponse{Places: out, Count: len(out)}
}

// State returns the whole session snapshot.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	api.Success(w, http.StatusOK, StateResponse{
		Snapshot:    snap,
		Candidates:  toPlaceResponses(snap.Candidates),
		Restaurants: toPlaceResponses(snap.Restaurants),
	})
}

func (h *SessionHandler) SetRadius(w http.ResponseWriter, r *http.Request) {
	var req RadiusRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RadiusMeters == nil {
		api.Error(w, http.StatusBadRequest, "radius_meters is required")
		return
	}

	if err := h.svc.SetRadius(r.Context(), *req.RadiusMeters); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]float64{"radius_meters": h.state.Snapshot().RadiusMeters})
}

func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidates, err := h.svc.ResolveAddress(r.Context(), req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	h.respondPlaces(w, candidates)
}

func (h *SessionHandler) SelectCandidate(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid candidate index")
		return
	}

	restaurants, err := h.svc.SelectCandidateAt(r.Context(), index)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	h.respondPlaces(w, restaurants)
}

func (h *SessionHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	var req CoordinateRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Lat == nil || req.Lon == nil {
		api.Error(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	restaurants, err := h.svc.FindNearby(r.Context(), domain.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	h.respondPlaces(w, restaurants)
}

// Locate uses a browser-supplied position when the body carries one and the
// daemon's locator when it carries neither coordinate. A lone lat or lon is
// rejected.
func (h *SessionHandler) Locate(w http.ResponseWriter, r *http.Request) {
	var req CoordinateRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		restaurants []domain.Place
		err         error
	)
	switch {
	case req.Lat != nil && req.Lon != nil:
		restaurants, err = h.svc.LocateUserWith(r.Context(), locate.Static(domain.Coordinate{Lat: *req.Lat, Lon: *req.Lon}))
	case req.Lat != nil || req.Lon != nil:
		err = domain.ErrInvalidCoordinate.WithCause(errors.New("lat and lon must be sent together"))
	default:
		restaurants, err = h.svc.LocateUser(r.Context())
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	h.respondPlaces(w, restaurants)
}

func (h *SessionHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count := 0
	if req.Count != nil {
		count = *req.Count
	}

	sample, err := h.svc.Recommend(r.Context(), domain.NewFilterSpec(req.Include, req.Exclude), count)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	h.respondPlaces(w, sample)
}

// MapHTML serves the latest Kakao Maps page.
func (h *SessionHandler) MapHTML(w http.ResponseWriter, r *http.Request) {
	h.serveFrame(w, h.html)
}

// MapPNG serves the latest static map image.
func (h *SessionHandler) MapPNG(w http.ResponseWriter, r *http.Request) {
	h.serveFrame(w, h.png)
}

func (h *SessionHandler) serveFrame(w http.ResponseWriter, src FrameSource) {
	if src == nil {
		api.ErrorWithCode(w, http.StatusNotFound, domain.ErrCodeNotFound, "map engine is not configured")
		return
	}

	frame, err := src.Frame()
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", frame.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Last-Modified", frame.RenderedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(frame.Body)
}

// respondPlaces writes places along with the notice an empty result left on
// the session.
func (h *SessionHandler) respondPlaces(w http.ResponseWriter, places []domain.Place) {
	resp := placesToResponse(places)
	if len(places) == 0 {
		if notice := h.state.Snapshot().LastNotice; notice != nil {
			api.SuccessWithNotice(w, http.StatusOK, resp, notice)
			return
		}
	}
	api.Success(w, http.StatusOK, resp)
}

// decodeJSON decodes the request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
