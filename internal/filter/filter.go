package filter

import (
	"strings"

	"github.com/amishk599/leadradar/internal/model"
)

// StrengthFilter matches signals at or above a minimum strength whose company
// is not on the exclusion list. Company matching is case-insensitive and exact.
type StrengthFilter struct {
	minStrength int
	exclude     map[string]bool
}

// NewStrengthFilter returns a filter that passes signals with strength >= minStrength
// for companies not named in excludeCompanies.
func NewStrengthFilter(minStrength int, excludeCompanies []string) *StrengthFilter {
	exclude := make(map[string]bool, len(excludeCompanies))
	for _, c := range excludeCompanies {
		exclude[normalize(c)] = true
	}
	return &StrengthFilter{
		minStrength: minStrength,
		exclude:     exclude,
	}
}

// Match returns true if the signal is strong enough and its company is not excluded.
func (f *StrengthFilter) Match(s model.Signal) bool {
	if s.Strength < f.minStrength {
		return false
	}
	return !f.exclude[normalize(s.CompanyName)]
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
