package directory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chipKeys(chips []FilterChip) []string {
	keys := make([]string, 0, len(chips))
	for _, c := range chips {
		keys = append(keys, c.Key)
	}
	return keys
}

func TestActiveFilterChips_NoneForDefaults(t *testing.T) {
	chips := ActiveFilterChips(Filters{})
	assert.NotNil(t, chips)
	assert.Empty(t, chips)

	assert.Empty(t, ActiveFilterChips(Filters{Query: "   ", Languages: []string{" "}}))
}

func TestActiveFilterChips_OnePerKey(t *testing.T) {
	f := Filters{
		Query:             "ironing",
		City:              "Cali",
		Service:           "cleaning",
		MinRating:         4,
		MaxRate:           decimal.NewFromInt(30),
		VerifiedOnly:      true,
		BackgroundChecked: true,
		AvailableToday:    true,
		Languages:         []string{"es", "en", "fr"},
	}
	chips := ActiveFilterChips(f)
	assert.Equal(t, []string{
		KeyQuery, KeyCity, KeyService, KeyMinRating, KeyMaxRate,
		KeyVerified, KeyBackgroundChecked, KeyAvailableToday, KeyLanguages,
	}, chipKeys(chips))

	byKey := map[string]FilterChip{}
	for _, c := range chips {
		byKey[c.Key] = c
	}
	assert.Equal(t, "4+", byKey[KeyMinRating].Value)
	assert.Equal(t, "$30/hr", byKey[KeyMaxRate].Value)
	assert.Equal(t, "en, es, fr", byKey[KeyLanguages].Value)
}

func TestActiveFilterChips_SingleFilters(t *testing.T) {
	cases := map[string]Filters{
		KeyQuery:             {Query: "nanny"},
		KeyCity:              {City: "Quito"},
		KeyService:           {Service: "gardening"},
		KeyMinRating:         {MinRating: 3.5},
		KeyMaxRate:           {MaxRate: decimal.NewFromInt(50)},
		KeyVerified:          {VerifiedOnly: true},
		KeyBackgroundChecked: {BackgroundChecked: true},
		KeyAvailableToday:    {AvailableToday: true},
		KeyLanguages:         {Languages: []string{"es"}},
	}
	for key, f := range cases {
		chips := ActiveFilterChips(f)
		require.Len(t, chips, 1, key)
		assert.Equal(t, key, chips[0].Key)

		// Removing the chip restores the default state.
		assert.True(t, f.Clear(key).IsDefault(), key)
	}
}
