// Package session holds the in-memory state of one restaurant search session
// and notifies subscribers whenever the map view changes.
package session

import (
	"sync"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/google/uuid"
)

// Ticket identifies one in-flight search. Only the latest ticket of a kind
// may commit results.
type Ticket uint64

// Snapshot is a copy of the full session state.
type Snapshot struct {
	ID           string            `json:"id"`
	Query        string            `json:"query"`
	RadiusMeters float64           `json:"radius_meters"`
	Center       domain.Coordinate `json:"center"`
	Candidates   []domain.Place    `json:"candidates"`
	Restaurants  []domain.Place    `json:"restaurants"`
	MapReady     bool              `json:"map_ready"`
	LastNotice   *domain.Notice    `json:"last_notice,omitempty"`
}

// Session is the single state holder shared by the orchestrator and the
// renderers. Subscribers are called after each view change, outside the state
// lock, and must not mutate the session from the callback.
type Session struct {
	mu          sync.RWMutex
	id          string
	query       string
	radius      float64
	center      domain.Coordinate
	candidates  []domain.Place
	restaurants []domain.Place
	mapReady    bool
	lastNotice  *domain.Notice
	searchSeq   Ticket
	nearbySeq   Ticket

	notifyMu    sync.Mutex
	subscribers map[int]func(domain.MapView)
	nextSubID   int
}

// New creates a session centered on center with the given radius.
func New(center domain.Coordinate, radiusMeters float64) *Session {
	if radiusMeters <= 0 {
		radiusMeters = domain.DefaultRadiusMeters
	}
	return &Session{
		id:          uuid.NewString(),
		radius:      radiusMeters,
		center:      center,
		subscribers: make(map[int]func(domain.MapView)),
	}
}

// NewDefault creates a session with the default center and radius.
func NewDefault() *Session {
	return New(domain.DefaultCenter(), domain.DefaultRadiusMeters)
}

// Subscribe registers fn for view changes and immediately delivers the
// current view. The returned func removes the subscription.
func (s *Session) Subscribe(fn func(domain.MapView)) func() {
	s.notifyMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	view := s.View()
	s.notifyMu.Unlock()

	fn(view)

	return func() {
		s.notifyMu.Lock()
		delete(s.subscribers, id)
		s.notifyMu.Unlock()
	}
}

func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if len(s.subscribers) == 0 {
		return
	}
	view := s.View()
	for _, fn := range s.subscribers {
		fn(view)
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the whole state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ID:           s.id,
		Query:        s.query,
		RadiusMeters: s.radius,
		Center:       s.center,
		Candidates:   nonNil(clonePlaces(s.candidates)),
		Restaurants:  nonNil(clonePlaces(s.restaurants)),
		MapReady:     s.mapReady,
	}
	if s.lastNotice != nil {
		n := *s.lastNotice
		snap.LastNotice = &n
	}
	return snap
}

// View returns the inputs of the map renderer.
func (s *Session) View() domain.MapView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.MapView{
		Center:       s.center,
		RadiusMeters: s.radius,
		Markers:      nonNil(clonePlaces(s.restaurants)),
		Ready:        s.mapReady,
	}
}

func (s *Session) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

func (s *Session) Radius() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.radius
}

// SetRadius changes the search radius. It is only called on explicit user
// action.
func (s *Session) SetRadius(meters float64) error {
	if err := domain.ValidateRadius(meters); err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.radius != meters
	s.radius = meters
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return nil
}

func (s *Session) Center() domain.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.center
}

func (s *Session) SetCenter(c domain.Coordinate) {
	s.mu.Lock()
	changed := s.center != c
	s.center = c
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *Session) Candidates() []domain.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlaces(s.candidates)
}

func (s *Session) Restaurants() []domain.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlaces(s.restaurants)
}

// BeginSearch issues a ticket for a candidate search, invalidating any
// earlier one.
func (s *Session) BeginSearch() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchSeq++
	return s.searchSeq
}

// CommitCandidates replaces the candidate list if t is still current.
func (s *Session) CommitCandidates(t Ticket, list []domain.Place) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.searchSeq {
		return false
	}
	s.candidates = clonePlaces(list)
	return true
}

// ClearCandidates empties the candidate list and invalidates pending
// candidate searches.
func (s *Session) ClearCandidates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchSeq++
	s.candidates = nil
}

// BeginNearby issues a ticket for a nearby restaurant search.
func (s *Session) BeginNearby() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nearbySeq++
	return s.nearbySeq
}

// CurrentNearby returns the latest nearby ticket without issuing a new one.
func (s *Session) CurrentNearby() Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nearbySeq
}

// CommitRestaurants replaces the working list if t is still current.
func (s *Session) CommitRestaurants(t Ticket, list []domain.Place) bool {
	s.mu.Lock()
	if t != s.nearbySeq {
		s.mu.Unlock()
		return false
	}
	s.restaurants = clonePlaces(list)
	s.mu.Unlock()

	s.notify()
	return true
}

// ApplySample replaces the working list with a sample drawn under ticket t
// and recenters on its first item. It reports false, changing nothing, when a
// nearby search committed or started after t was issued.
func (s *Session) ApplySample(t Ticket, sample []domain.Place) bool {
	s.mu.Lock()
	if t != s.nearbySeq {
		s.mu.Unlock()
		return false
	}
	s.nearbySeq++
	s.restaurants = clonePlaces(sample)
	if len(sample) > 0 {
		s.center = sample[0].Coordinate
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// SetMapReady records that the map engine finished loading.
func (s *Session) SetMapReady(ready bool) {
	s.mu.Lock()
	changed := s.mapReady != ready
	s.mapReady = ready
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// SetNotice records the most recent user-visible notice.
func (s *Session) SetNotice(n domain.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastNotice = &n
}

// ClearNotice drops the recorded notice.
func (s *Session) ClearNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastNotice = nil
}

func clonePlaces(list []domain.Place) []domain.Place {
	if list == nil {
		return nil
	}
	out := make([]domain.Place, len(list))
	copy(out, list)
	return out
}

func nonNil(list []domain.Place) []domain.Place {
	if list == nil {
		return []domain.Place{}
	}
	return list
}
