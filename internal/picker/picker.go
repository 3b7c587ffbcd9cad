// Package picker narrows a restaurant list with category rules and draws a
// random recommendation from it.
package picker

import (
	"math/rand/v2"
	"sync"

	"github.com/cloo-solutions/lunchpick/internal/domain"
)

// Picker filters and samples restaurant lists.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Picker backed by a randomly seeded source.
func New() *Picker {
	return NewWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewWithSource creates a Picker with an explicit random source.
func NewWithSource(src rand.Source) *Picker {
	return &Picker{rng: rand.New(src)}
}

// Eligible returns the items of list that pass filter. When nothing passes,
// the original list is returned so a non-empty list never filters to zero.
func Eligible(list []domain.Place, filter domain.FilterSpec) []domain.Place {
	if filter.IsEmpty() {
		return append([]domain.Place(nil), list...)
	}

	filtered := make([]domain.Place, 0, len(list))
	for _, p := range list {
		if filter.Matches(p.CategoryLabel) {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) == 0 {
		return append([]domain.Place(nil), list...)
	}
	return filtered
}

// FilterAndSample applies filter to list and returns size random items from the
// eligible set. A size of zero returns the whole eligible set, shuffled.
func (p *Picker) FilterAndSample(list []domain.Place, filter domain.FilterSpec, size int) ([]domain.Place, error) {
	if len(list) == 0 {
		return nil, domain.ErrEmptyWorkingList
	}
	if size < 0 {
		return nil, domain.ErrInvalidSampleSize
	}

	eligible := Eligible(list, filter)
	p.shuffle(eligible)

	if size == 0 || size >= len(eligible) {
		return eligible, nil
	}
	return eligible[:size], nil
}

func (p *Picker) shuffle(list []domain.Place) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rng.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
}
