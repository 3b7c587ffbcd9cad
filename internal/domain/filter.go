package domain

import "strings"

// FilterSpec holds the category include/exclude rules for a recommendation.
type FilterSpec struct {
	Include string   `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// NewFilterSpec builds a FilterSpec from the two raw form fields. The exclude
// field is comma separated; an empty field still yields one empty entry.
func NewFilterSpec(include, excludeRaw string) FilterSpec {
	parts := strings.Split(excludeRaw, ",")
	exclude := make([]string, len(parts))
	for i, p := range parts {
		exclude[i] = strings.TrimSpace(p)
	}
	return FilterSpec{
		Include: strings.TrimSpace(include),
		Exclude: exclude,
	}
}

// Excludes reports whether label contains any non-empty exclusion substring.
func (f FilterSpec) Excludes(label string) bool {
	for _, ex := range f.Exclude {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}
		if strings.Contains(label, ex) {
			return true
		}
	}
	return false
}

// Includes reports whether label satisfies the inclusion rule.
func (f FilterSpec) Includes(label string) bool {
	if f.Include == "" {
		return true
	}
	return strings.Contains(label, f.Include)
}

// Matches reports whether label passes both rules.
func (f FilterSpec) Matches(label string) bool {
	return !f.Excludes(label) && f.Includes(label)
}

// IsEmpty reports whether the filter constrains nothing.
func (f FilterSpec) IsEmpty() bool {
	if f.Include != "" {
		return false
	}
	for _, ex := range f.Exclude {
		if strings.TrimSpace(ex) != "" {
			return false
		}
	}
	return true
}
