package directory

import (
	"strconv"
	"strings"
)

// FilterChip is one removable pill above the results.
type FilterChip struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ActiveFilterChips returns one chip per non-default filter, in a fixed key order.
func ActiveFilterChips(f Filters) []FilterChip {
	chips := []FilterChip{}
	if q := strings.TrimSpace(f.Query); q != "" {
		chips = append(chips, FilterChip{Key: KeyQuery, Label: "Search", Value: q})
	}
	if c := strings.TrimSpace(f.City); c != "" {
		chips = append(chips, FilterChip{Key: KeyCity, Label: "City", Value: c})
	}
	if s := strings.TrimSpace(f.Service); s != "" {
		chips = append(chips, FilterChip{Key: KeyService, Label: "Service", Value: s})
	}
	if f.MinRating > 0 {
		chips = append(chips, FilterChip{Key: KeyMinRating, Label: "Rating", Value: strconv.FormatFloat(f.MinRating, 'f', -1, 64) + "+"})
	}
	if f.MaxRate.IsPositive() {
		chips = append(chips, FilterChip{Key: KeyMaxRate, Label: "Max rate", Value: FormatRate(f.MaxRate, "usd")})
	}
	if f.VerifiedOnly {
		chips = append(chips, FilterChip{Key: KeyVerified, Label: "Verified", Value: "Yes"})
	}
	if f.BackgroundChecked {
		chips = append(chips, FilterChip{Key: KeyBackgroundChecked, Label: "Background checked", Value: "Yes"})
	}
	if f.AvailableToday {
		chips = append(chips, FilterChip{Key: KeyAvailableToday, Label: "Available today", Value: "Yes"})
	}
	if langs := normalizeLanguages(f.Languages); len(langs) > 0 {
		chips = append(chips, FilterChip{Key: KeyLanguages, Label: "Languages", Value: strings.Join(langs, ", ")})
	}
	return chips
}
