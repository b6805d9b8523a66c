package directory

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"casaora/models"

	"github.com/shopspring/decimal"
)

// Query-string keys shared with the browser's filter state.
const (
	KeyQuery             = "q"
	KeyCity              = "city"
	KeyService           = "service"
	KeyMinRating         = "minRating"
	KeyMaxRate           = "maxRate"
	KeyVerified          = "verified"
	KeyBackgroundChecked = "backgroundChecked"
	KeyAvailableToday    = "availableToday"
	KeyLanguages         = "languages"
	KeySort              = "sort"
	KeyPage              = "page"
	KeyPageSize          = "pageSize"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 48
)

// Filters is the directory's filter state. The zero value filters nothing.
type Filters struct {
	Query             string          `json:"q,omitempty"`
	City              string          `json:"city,omitempty"`
	Service           string          `json:"service,omitempty"`
	MinRating         float64         `json:"minRating,omitempty"`
	MaxRate           decimal.Decimal `json:"maxRate"`
	VerifiedOnly      bool            `json:"verified,omitempty"`
	BackgroundChecked bool            `json:"backgroundChecked,omitempty"`
	AvailableToday    bool            `json:"availableToday,omitempty"`
	Languages         []string        `json:"languages,omitempty"`
}

// SortOption is the fixed set of directory orderings.
type SortOption string

const (
	SortRecommended SortOption = "recommended"
	SortRating      SortOption = "rating"
	SortPriceLow    SortOption = "price_low"
	SortPriceHigh   SortOption = "price_high"
	SortExperience  SortOption = "experience"
	SortNewest      SortOption = "newest"
)

var orderings = map[SortOption][]string{
	SortRecommended: {"verified DESC", "COALESCE(average_rating, 0) DESC", "total_reviews DESC"},
	SortRating:      {"COALESCE(average_rating, 0) DESC", "total_reviews DESC"},
	SortPriceLow:    {"hourly_rate ASC"},
	SortPriceHigh:   {"hourly_rate DESC"},
	SortExperience:  {"years_experience DESC"},
	SortNewest:      {"created_at DESC"},
}

// ParseSort maps unknown values to SortRecommended.
func ParseSort(s string) SortOption {
	opt := SortOption(strings.TrimSpace(s))
	if _, ok := orderings[opt]; ok {
		return opt
	}
	return SortRecommended
}

// OrderBy is the query ordering for the option.
func (s SortOption) OrderBy() []string {
	if o, ok := orderings[s]; ok {
		return o
	}
	return orderings[SortRecommended]
}

// Params is one directory request: filters plus sort and pagination.
type Params struct {
	Filters  Filters    `json:"filters"`
	Sort     SortOption `json:"sort"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

// Normalize applies defaults and bounds.
func (p Params) Normalize() Params {
	p.Sort = ParseSort(string(p.Sort))
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.Filters.Service = strings.ToLower(strings.TrimSpace(p.Filters.Service))
	p.Filters.Languages = normalizeLanguages(p.Filters.Languages)
	return p
}

// ParseParams reads the directory query string. Malformed values fall back to defaults.
func ParseParams(v url.Values) Params {
	f := Filters{
		Query:             strings.TrimSpace(v.Get(KeyQuery)),
		City:              strings.TrimSpace(v.Get(KeyCity)),
		Service:           strings.TrimSpace(v.Get(KeyService)),
		VerifiedOnly:      parseBool(v.Get(KeyVerified)),
		BackgroundChecked: parseBool(v.Get(KeyBackgroundChecked)),
		AvailableToday:    parseBool(v.Get(KeyAvailableToday)),
	}
	if r, err := strconv.ParseFloat(v.Get(KeyMinRating), 64); err == nil && r > 0 && r <= 5 {
		f.MinRating = r
	}
	if d, err := decimal.NewFromString(v.Get(KeyMaxRate)); err == nil && d.IsPositive() {
		f.MaxRate = d
	}
	var langs []string
	for _, raw := range v[KeyLanguages] {
		langs = append(langs, models.SplitList(raw)...)
	}
	f.Languages = langs

	p := Params{Filters: f, Sort: SortOption(v.Get(KeySort))}
	p.Page, _ = strconv.Atoi(v.Get(KeyPage))
	p.PageSize, _ = strconv.Atoi(v.Get(KeyPageSize))
	return p.Normalize()
}

// Values is the inverse of ParseParams. Only non-default keys are emitted.
func (p Params) Values() url.Values {
	p = p.Normalize()
	v := url.Values{}
	f := p.Filters
	if f.Query != "" {
		v.Set(KeyQuery, f.Query)
	}
	if f.City != "" {
		v.Set(KeyCity, f.City)
	}
	if f.Service != "" {
		v.Set(KeyService, f.Service)
	}
	if f.MinRating > 0 {
		v.Set(KeyMinRating, strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.MaxRate.IsPositive() {
		v.Set(KeyMaxRate, f.MaxRate.String())
	}
	if f.VerifiedOnly {
		v.Set(KeyVerified, "true")
	}
	if f.BackgroundChecked {
		v.Set(KeyBackgroundChecked, "true")
	}
	if f.AvailableToday {
		v.Set(KeyAvailableToday, "true")
	}
	if len(f.Languages) > 0 {
		v.Set(KeyLanguages, strings.Join(f.Languages, ","))
	}
	if p.Sort != SortRecommended {
		v.Set(KeySort, string(p.Sort))
	}
	if p.Page != 1 {
		v.Set(KeyPage, strconv.Itoa(p.Page))
	}
	if p.PageSize != DefaultPageSize {
		v.Set(KeyPageSize, strconv.Itoa(p.PageSize))
	}
	return v
}

// IsDefault reports whether no filter is active.
func (f Filters) IsDefault() bool {
	return len(ActiveFilterChips(f)) == 0
}

// Clear resets one filter key to its default.
func (f Filters) Clear(key string) Filters {
	switch key {
	case KeyQuery:
		f.Query = ""
	case KeyCity:
		f.City = ""
	case KeyService:
		f.Service = ""
	case KeyMinRating:
		f.MinRating = 0
	case KeyMaxRate:
		f.MaxRate = decimal.Zero
	case KeyVerified:
		f.VerifiedOnly = false
	case KeyBackgroundChecked:
		f.BackgroundChecked = false
	case KeyAvailableToday:
		f.AvailableToday = false
	case KeyLanguages:
		f.Languages = nil
	}
	return f
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// normalizeLanguages lower-cases, dedupes and sorts, so equal sets share a cache key.
func normalizeLanguages(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, l := range in {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
