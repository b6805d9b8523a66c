package directory

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams_Defaults(t *testing.T) {
	p := ParseParams(url.Values{})
	assert.Equal(t, SortRecommended, p.Sort)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.True(t, p.Filters.IsDefault())
	assert.Empty(t, p.Values())
}

func TestParseParams_Bounds(t *testing.T) {
	p := ParseParams(url.Values{
		KeySort:      {"cheapest"},
		KeyPage:      {"-3"},
		KeyPageSize:  {"500"},
		KeyMinRating: {"7"},
		KeyMaxRate:   {"abc"},
		KeyVerified:  {"yes"},
	})
	assert.Equal(t, SortRecommended, p.Sort)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Zero(t, p.Filters.MinRating)
	assert.True(t, p.Filters.MaxRate.IsZero())
	assert.False(t, p.Filters.VerifiedOnly)
}

func TestParams_RoundTrip(t *testing.T) {
	cases := []Params{
		{},
		{Sort: SortPriceLow, Page: 3, PageSize: 24},
		{Filters: Filters{Query: "deep clean", City: "Medellín", Service: "cleaning"}},
		{Filters: Filters{MinRating: 4.5, MaxRate: decimal.RequireFromString("27.5")}, Sort: SortRating},
		{Filters: Filters{VerifiedOnly: true, BackgroundChecked: true, AvailableToday: true, Languages: []string{"es", "en"}}},
	}
	for _, want := range cases {
		want = want.Normalize()
		encoded := want.Values().Encode()
		parsed, err := url.ParseQuery(encoded)
		require.NoError(t, err)

		got := ParseParams(parsed)
		assert.Equal(t, want.Sort, got.Sort, encoded)
		assert.Equal(t, want.Page, got.Page, encoded)
		assert.Equal(t, want.PageSize, got.PageSize, encoded)
		assert.Equal(t, want.Filters.Query, got.Filters.Query, encoded)
		assert.Equal(t, want.Filters.City, got.Filters.City, encoded)
		assert.Equal(t, want.Filters.Service, got.Filters.Service, encoded)
		assert.Equal(t, want.Filters.MinRating, got.Filters.MinRating, encoded)
		assert.True(t, want.Filters.MaxRate.Equal(got.Filters.MaxRate), encoded)
		assert.Equal(t, want.Filters.VerifiedOnly, got.Filters.VerifiedOnly, encoded)
		assert.Equal(t, want.Filters.BackgroundChecked, got.Filters.BackgroundChecked, encoded)
		assert.Equal(t, want.Filters.AvailableToday, got.Filters.AvailableToday, encoded)
		assert.Equal(t, want.Filters.Languages, got.Filters.Languages, encoded)
	}
}

func TestParseParams_ServiceIsLowercased(t *testing.T) {
	p := ParseParams(url.Values{KeyService: {"  Cleaning "}})
	assert.Equal(t, "cleaning", p.Filters.Service)
	assert.Equal(t, Params{Filters: Filters{Service: "cleaning"}}.Values(), p.Values())
}

func TestParams_ValuesAreCanonical(t *testing.T) {
	a := Params{Filters: Filters{Languages: []string{"EN", "es", "en"}}}
	b := Params{Filters: Filters{Languages: []string{"es", "en"}}}
	assert.Equal(t, a.Values().Encode(), b.Values().Encode())
	assert.Equal(t, "languages=en%2Ces", a.Values().Encode())
}

func TestParseSort(t *testing.T) {
	for _, opt := range []SortOption{SortRecommended, SortRating, SortPriceLow, SortPriceHigh, SortExperience, SortNewest} {
		assert.Equal(t, opt, ParseSort(string(opt)))
		assert.NotEmpty(t, opt.OrderBy())
	}
	assert.Equal(t, SortRecommended, ParseSort(""))
	assert.Equal(t, SortRecommended, ParseSort("random"))
	assert.Equal(t, []string{"hourly_rate ASC"}, SortPriceLow.OrderBy())
}

func TestFilters_Clear(t *testing.T) {
	f := Filters{City: "Bogotá", VerifiedOnly: true, Languages: []string{"es"}}

	f = f.Clear(KeyCity)
	assert.Empty(t, f.City)
	assert.True(t, f.VerifiedOnly)

	f = f.Clear(KeyVerified).Clear(KeyLanguages)
	assert.True(t, f.IsDefault())

	// Sort is not a filter key.
	assert.Equal(t, f, f.Clear(KeySort))
}
