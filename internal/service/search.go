package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/cloo-solutions/lunchpick/internal/locate"
	"github.com/cloo-solutions/lunchpick/internal/picker"
	"github.com/cloo-solutions/lunchpick/internal/session"
	"github.com/cloo-solutions/lunchpick/internal/telemetry"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PlaceSearcher is the external places service.
type PlaceSearcher interface {
	SearchAddress(ctx context.Context, text string) ([]domain.Place, error)
	SearchKeyword(ctx context.Context, q domain.KeywordQuery) ([]domain.Place, error)
}

// Sampler narrows and samples a restaurant list.
type Sampler interface {
	FilterAndSample(list []domain.Place, filter domain.FilterSpec, size int) ([]domain.Place, error)
}

// SearchServiceConfig holds the optional collaborators of a SearchService.
type SearchServiceConfig struct {
	// Nil means the platform has no location service.
	Locator locate.Locator
	Sampler Sampler
	Logger  logrus.FieldLogger
}

// SearchService sequences searches against the places service and applies
// their results to the session.
type SearchService struct {
	searcher PlaceSearcher
	session  *session.Session
	notifier Notifier
	locator  locate.Locator
	sampler  Sampler
	log      logrus.FieldLogger
}

// NewSearchService creates a SearchService without a location service.
func NewSearchService(searcher PlaceSearcher, sess *session.Session, notifier Notifier) *SearchService {
	return NewSearchServiceWithConfig(searcher, sess, notifier, SearchServiceConfig{})
}

// NewSearchServiceWithConfig creates a SearchService with explicit collaborators.
func NewSearchServiceWithConfig(searcher PlaceSearcher, sess *session.Session, notifier Notifier, cfg SearchServiceConfig) *SearchService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if cfg.Sampler == nil {
		cfg.Sampler = picker.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &SearchService{
		searcher: searcher,
		session:  sess,
		notifier: notifier,
		locator:  cfg.Locator,
		sampler:  cfg.Sampler,
		log:      cfg.Logger,
	}
}

// Session returns the state holder the service mutates.
func (s *SearchService) Session() *session.Session {
	return s.session
}

// ResolveAddress looks up candidate locations for query. Address matches and
// food-and-drink keyword matches are fetched concurrently and concatenated in
// that order; when both are empty one unrestricted keyword search is made.
// On failure the previous candidate list is kept.
func (s *SearchService) ResolveAddress(ctx context.Context, query string) ([]domain.Place, error) {
	s.session.ClearNotice()
	query = strings.TrimSpace(query)
	ctx, span := telemetry.StartSpan(ctx, "SearchService.ResolveAddress", telemetry.SpanAttributes{
		Query:     query,
		Operation: "resolve_address",
	})
	defer span.End()

	if query == "" {
		return nil, s.fail(ctx, domain.ErrEmptyQuery)
	}

	s.session.SetQuery(query)
	ticket := s.session.BeginSearch()

	var addressMatches, keywordMatches []domain.Place
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		places, err := s.searcher.SearchAddress(gctx, query)
		if err != nil {
			return fmt.Errorf("address search: %w", err)
		}
		addressMatches = places
		return nil
	})
	g.Go(func() error {
		places, err := s.searcher.SearchKeyword(gctx, domain.KeywordQuery{
			Text:          query,
			CategoryGroup: domain.CategoryGroupFoodAndDrink,
		})
		if err != nil {
			return fmt.Errorf("keyword search: %w", err)
		}
		keywordMatches = places
		return nil
	})
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, s.fail(ctx, domain.ErrSearchFailed.WithCause(err))
	}

	candidates := make([]domain.Place, 0, len(addressMatches)+len(keywordMatches))
	candidates = append(candidates, addressMatches...)
	candidates = append(candidates, keywordMatches...)

	if len(candidates) == 0 {
		s.log.WithField("query", query).Debug("no address or food matches, retrying unrestricted keyword search")
		fallback, err := s.searcher.SearchKeyword(ctx, domain.KeywordQuery{Text: query})
		if err != nil {
			span.SetError(err)
			return nil, s.fail(ctx, domain.ErrSearchFailed.WithCause(fmt.Errorf("fallback keyword search: %w", err)))
		}
		candidates = append(candidates, fallback...)
	}

	if !s.session.CommitCandidates(ticket, candidates) {
		s.log.WithField("query", query).Info("dropping superseded candidate results")
		return candidates, nil
	}

	span.SetResultCount(len(candidates))
	if len(candidates) == 0 {
		s.notify(ctx, domain.NoticeNoResultsFound)
	}
	return candidates, nil
}

// SelectCandidate centers the map on candidate, closes the candidate list and
// searches for restaurants around it.
func (s *SearchService) SelectCandidate(ctx context.Context, candidate domain.Place) ([]domain.Place, error) {
	s.session.ClearNotice()
	if err := candidate.Coordinate.Validate(); err != nil {
		return nil, s.fail(ctx, err)
	}

	s.session.SetQuery(candidate.FullAddress)
	s.session.SetCenter(candidate.Coordinate)
	s.session.ClearCandidates()

	return s.FindNearby(ctx, candidate.Coordinate)
}

// SelectCandidateAt selects the candidate at index in the current list.
func (s *SearchService) SelectCandidateAt(ctx context.Context, index int) ([]domain.Place, error) {
	s.session.ClearNotice()
	candidates := s.session.Candidates()
	if index < 0 || index >= len(candidates) {
		return nil, s.fail(ctx, domain.ErrCandidateNotFound.WithCause(
			fmt.Errorf("index %d, %d candidates", index, len(candidates))))
	}
	return s.SelectCandidate(ctx, candidates[index])
}

// FindNearby searches for restaurants within the session radius of center and
// replaces the working list with a non-empty result.
func (s *SearchService) FindNearby(ctx context.Context, center domain.Coordinate) ([]domain.Place, error) {
	s.session.ClearNotice()
	radius := int(math.Round(s.session.Radius()))
	ctx, span := telemetry.StartSpan(ctx, "SearchService.FindNearby", telemetry.SpanAttributes{
		Query:        domain.RestaurantKeyword,
		RadiusMeters: radius,
		Operation:    "find_nearby",
	})
	defer span.End()

	if err := center.Validate(); err != nil {
		return nil, s.fail(ctx, err)
	}

	ticket := s.session.BeginNearby()
	places, err := s.searcher.SearchKeyword(ctx, domain.KeywordQuery{
		Text:         domain.RestaurantKeyword,
		Center:       &center,
		RadiusMeters: radius,
	})
	if err != nil {
		span.SetError(err)
		return nil, s.fail(ctx, domain.ErrSearchFailed.WithCause(fmt.Errorf("nearby search: %w", err)))
	}

	span.SetResultCount(len(places))
	if len(places) == 0 {
		s.notify(ctx, domain.NoticeNoNearbyFound)
		return places, nil
	}

	if !s.session.CommitRestaurants(ticket, places) {
		s.log.WithFields(logrus.Fields{
			"lat": center.Lat,
			"lon": center.Lon,
		}).Info("dropping superseded nearby results")
	}
	return places, nil
}

// LocateUser searches for restaurants around the device position reported by
// the configured locator.
func (s *SearchService) LocateUser(ctx context.Context) ([]domain.Place, error) {
	return s.LocateUserWith(ctx, s.locator)
}

// LocateUserWith is LocateUser with an explicit locator.
func (s *SearchService) LocateUserWith(ctx context.Context, locator locate.Locator) ([]domain.Place, error) {
	s.session.ClearNotice()
	ctx, span := telemetry.StartSpan(ctx, "SearchService.LocateUser", telemetry.SpanAttributes{
		Operation: "locate_user",
	})
	defer span.End()

	if locator == nil {
		return nil, s.fail(ctx, domain.ErrLocationUnsupported)
	}

	pos, err := locator.CurrentPosition(ctx)
	if err != nil {
		if domain.CodeOf(err) == "" {
			err = domain.ErrLocationDenied.WithCause(err)
		}
		return nil, s.fail(ctx, err)
	}

	s.session.SetCenter(pos)
	return s.FindNearby(ctx, pos)
}

// Recommend narrows the working list with filter, draws size restaurants from
// it (all when size is zero) and replaces the working list with the draw.
func (s *SearchService) Recommend(ctx context.Context, filter domain.FilterSpec, size int) ([]domain.Place, error) {
	s.session.ClearNotice()
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Recommend", telemetry.SpanAttributes{
		Operation: "recommend",
	})
	defer span.End()

	// The ticket ties the draw to the list it was read from.
	ticket := s.session.CurrentNearby()
	sample, err := s.sampler.FilterAndSample(s.session.Restaurants(), filter, size)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	if !s.session.ApplySample(ticket, sample) {
		s.log.WithField("size", len(sample)).Info("dropping sample of a superseded working list")
		return sample, nil
	}
	span.SetResultCount(len(sample))
	return sample, nil
}

// SetRadius changes the search radius used by later nearby searches.
func (s *SearchService) SetRadius(ctx context.Context, meters float64) error {
	s.session.ClearNotice()
	if err := s.session.SetRadius(meters); err != nil {
		return s.fail(ctx, err)
	}
	return nil
}

func (s *SearchService) notify(ctx context.Context, n domain.Notice) {
	s.session.SetNotice(n)
	s.notifier.Notify(ctx, n)
}

// fail surfaces err to the user and returns it unchanged.
func (s *SearchService) fail(ctx context.Context, err error) error {
	entry := s.log.WithError(err)
	switch domain.CodeOf(err) {
	case domain.ErrCodeExternalService:
		entry.Error("search failed")
	case domain.ErrCodePlatformCapability:
		entry.Warn("location unavailable")
	default:
		entry.Debug("rejected input")
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	s.notify(ctx, domain.NoticeFor(err))
	return err
}
