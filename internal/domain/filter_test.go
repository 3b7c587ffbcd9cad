package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilterSpec_EmptyExcludeKeepsOneEntry(t *testing.T) {
	filter := NewFilterSpec("", "")

	require.Len(t, filter.Exclude, 1)
	assert.Equal(t, "", filter.Exclude[0])
	assert.True(t, filter.IsEmpty())
}

func TestNewFilterSpec_TrimsEntries(t *testing.T) {
	filter := NewFilterSpec("  한식 ", " 카페 ,분식,  ")

	assert.Equal(t, "한식", filter.Include)
	assert.Equal(t, []string{"카페", "분식", ""}, filter.Exclude)
	assert.False(t, filter.IsEmpty())
}

func TestFilterSpec_Excludes(t *testing.T) {
	tests := []struct {
		name     string
		exclude  string
		label    string
		expected bool
	}{
		{"empty field excludes nothing", "", "Korean/Soup", false},
		{"whitespace only excludes nothing", " ,  , ", "Korean/Soup", false},
		{"substring match", "Cafe", "Dessert/Cafe", true},
		{"any entry matches", "Japanese,Soup", "Korean/Soup", true},
		{"case sensitive", "cafe", "Cafe", false},
		{"no match", "Cafe", "Korean/BBQ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewFilterSpec("", tt.exclude)
			assert.Equal(t, tt.expected, filter.Excludes(tt.label))
		})
	}
}

func TestFilterSpec_Includes(t *testing.T) {
	assert.True(t, FilterSpec{}.Includes("anything"))
	assert.True(t, FilterSpec{Include: "Korean"}.Includes("Korean/BBQ"))
	assert.False(t, FilterSpec{Include: "Korean"}.Includes("Japanese/Ramen"))
}

func TestFilterSpec_Matches(t *testing.T) {
	filter := NewFilterSpec("Korean", "Soup")

	assert.True(t, filter.Matches("Korean/BBQ"))
	assert.False(t, filter.Matches("Korean/Soup"))
	assert.False(t, filter.Matches("Cafe"))
}
