package session

import (
	"sync"
	"testing"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(name string, lon, lat float64) domain.Place {
	return domain.NewPlace(name, name+" address", domain.Coordinate{Lon: lon, Lat: lat}, "음식점 > 한식")
}

type viewRecorder struct {
	mu    sync.Mutex
	views []domain.MapView
}

func (r *viewRecorder) record(v domain.MapView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *viewRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *viewRecorder) last() domain.MapView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[len(r.views)-1]
}

func TestNewDefault(t *testing.T) {
	s := NewDefault()
	snap := s.Snapshot()

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, float64(domain.DefaultRadiusMeters), snap.RadiusMeters)
	assert.Equal(t, domain.DefaultCenter(), snap.Center)
	assert.Empty(t, snap.Candidates)
	assert.NotNil(t, snap.Restaurants)
	assert.False(t, snap.MapReady)
	assert.Nil(t, snap.LastNotice)
}

func TestSubscribe_DeliversCurrentViewImmediately(t *testing.T) {
	s := NewDefault()
	rec := &viewRecorder{}

	s.Subscribe(rec.record)

	require.Equal(t, 1, rec.count())
	assert.Equal(t, domain.DefaultCenter(), rec.last().Center)
}

func TestSubscribe_NotifiedOnViewChanges(t *testing.T) {
	s := NewDefault()
	rec := &viewRecorder{}
	s.Subscribe(rec.record)

	s.SetCenter(domain.Coordinate{Lon: 127, Lat: 37})
	require.NoError(t, s.SetRadius(500))
	s.SetMapReady(true)
	ticket := s.BeginNearby()
	require.True(t, s.CommitRestaurants(ticket, []domain.Place{place("a", 127, 37)}))

	assert.Equal(t, 5, rec.count())
	last := rec.last()
	assert.Equal(t, 500.0, last.RadiusMeters)
	assert.True(t, last.Ready)
	assert.Len(t, last.Markers, 1)
}

func TestSubscribe_NotNotifiedForCandidatesOrUnchangedValues(t *testing.T) {
	s := NewDefault()
	rec := &viewRecorder{}
	s.Subscribe(rec.record)

	ticket := s.BeginSearch()
	s.CommitCandidates(ticket, []domain.Place{place("c", 1, 1)})
	s.SetCenter(domain.DefaultCenter())
	require.NoError(t, s.SetRadius(domain.DefaultRadiusMeters))
	s.SetQuery("Sample Plaza")

	assert.Equal(t, 1, rec.count())
}

func TestUnsubscribe(t *testing.T) {
	s := NewDefault()
	rec := &viewRecorder{}
	unsubscribe := s.Subscribe(rec.record)

	unsubscribe()
	s.SetCenter(domain.Coordinate{Lon: 1, Lat: 1})

	assert.Equal(t, 1, rec.count())
}

func TestSetRadius_RejectsInvalid(t *testing.T) {
	s := NewDefault()

	assert.ErrorIs(t, s.SetRadius(0), domain.ErrInvalidRadius)
	assert.ErrorIs(t, s.SetRadius(-10), domain.ErrInvalidRadius)
	assert.Equal(t, float64(domain.DefaultRadiusMeters), s.Radius())
}

func TestCommitCandidates_DropsStaleTicket(t *testing.T) {
	s := NewDefault()

	first := s.BeginSearch()
	second := s.BeginSearch()

	assert.True(t, s.CommitCandidates(second, []domain.Place{place("new", 1, 1)}))
	assert.False(t, s.CommitCandidates(first, []domain.Place{place("old", 2, 2)}))

	candidates := s.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, "new", candidates[0].Name)
}

func TestClearCandidates_InvalidatesPendingSearch(t *testing.T) {
	s := NewDefault()
	ticket := s.BeginSearch()

	s.ClearCandidates()

	assert.False(t, s.CommitCandidates(ticket, []domain.Place{place("late", 1, 1)}))
	assert.Empty(t, s.Candidates())
}

func TestCommitRestaurants_DropsStaleTicket(t *testing.T) {
	s := NewDefault()

	first := s.BeginNearby()
	second := s.BeginNearby()

	assert.True(t, s.CommitRestaurants(second, []domain.Place{place("new", 1, 1)}))
	assert.False(t, s.CommitRestaurants(first, []domain.Place{place("old", 2, 2)}))
	assert.Equal(t, "new", s.Restaurants()[0].Name)
}

func TestApplySample_ReplacesAndRecenters(t *testing.T) {
	s := NewDefault()
	pending := s.BeginNearby()
	sample := []domain.Place{place("first", 127.5, 37.5), place("second", 127.6, 37.6)}

	assert.True(t, s.ApplySample(s.CurrentNearby(), sample))

	assert.Equal(t, sample, s.Restaurants())
	assert.Equal(t, domain.Coordinate{Lon: 127.5, Lat: 37.5}, s.Center())
	assert.False(t, s.CommitRestaurants(pending, []domain.Place{place("late", 1, 1)}))
}

func TestApplySample_EmptyKeepsCenter(t *testing.T) {
	s := NewDefault()

	assert.True(t, s.ApplySample(s.CurrentNearby(), nil))

	assert.Equal(t, domain.DefaultCenter(), s.Center())
	assert.Empty(t, s.Restaurants())
}

func TestApplySample_DroppedAfterNewerNearbySearch(t *testing.T) {
	s := NewDefault()
	drawn := s.CurrentNearby()

	nearby := s.BeginNearby()
	fresh := []domain.Place{place("fresh", 127.7, 37.7)}
	require.True(t, s.CommitRestaurants(nearby, fresh))

	assert.False(t, s.ApplySample(drawn, []domain.Place{place("stale", 127.5, 37.5)}))
	assert.Equal(t, fresh, s.Restaurants())
	assert.Equal(t, domain.DefaultCenter(), s.Center())
}

func TestReturnedListsAreCopies(t *testing.T) {
	s := NewDefault()
	ticket := s.BeginNearby()
	s.CommitRestaurants(ticket, []domain.Place{place("a", 1, 1)})

	list := s.Restaurants()
	list[0].Name = "mutated"

	assert.Equal(t, "a", s.Restaurants()[0].Name)
}

func TestNotice(t *testing.T) {
	s := NewDefault()

	s.SetNotice(domain.NoticeNoNearbyFound)
	require.NotNil(t, s.Snapshot().LastNotice)
	assert.Equal(t, domain.NoticeNoNearby, s.Snapshot().LastNotice.Kind)

	s.ClearNotice()
	assert.Nil(t, s.Snapshot().LastNotice)
}

func TestConcurrentMutations(t *testing.T) {
	s := NewDefault()
	rec := &viewRecorder{}
	s.Subscribe(rec.record)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetCenter(domain.Coordinate{Lon: float64(i), Lat: 1})
			ticket := s.BeginNearby()
			s.CommitRestaurants(ticket, []domain.Place{place("p", float64(i), 1)})
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, s.View().Center, rec.last().Center)
}
