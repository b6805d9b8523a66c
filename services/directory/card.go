package directory

import (
	"fmt"
	"strings"
	"unicode"

	"casaora/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Badge labels shown on a card.
const (
	BadgeVerified          = "Verified"
	BadgeBackgroundChecked = "Background checked"
)

// RatingNew replaces the numeric rating of professionals nobody has reviewed yet.
const RatingNew = "New"

var currencySymbols = map[string]string{
	"usd": "$",
	"cop": "$",
	"mxn": "$",
	"eur": "€",
}

// ProfessionalCard is the view model behind one directory result.
type ProfessionalCard struct {
	ID                uuid.UUID       `json:"id"`
	DisplayName       string          `json:"displayName"`
	Initials          string          `json:"initials"`
	Headline          string          `json:"headline"`
	AvatarURL         string          `json:"avatarUrl,omitempty"`
	PrimaryService    string          `json:"primaryService"`
	City              string          `json:"city"`
	Latitude          *float64        `json:"lat,omitempty"`
	Longitude         *float64        `json:"lng,omitempty"`
	HourlyRate        decimal.Decimal `json:"hourlyRate"`
	Currency          string          `json:"currency"`
	RateLabel         string          `json:"rateLabel"`
	AverageRating     *float64        `json:"averageRating"`
	RatingLabel       string          `json:"ratingLabel"`
	ReviewsLabel      string          `json:"reviewsLabel,omitempty"`
	Badges            []string        `json:"badges"`
	Languages         []string        `json:"languages,omitempty"`
	YearsExperience   int             `json:"yearsExperience"`
	AvailableToday    bool            `json:"availableToday"`
	CompletedBookings int             `json:"completedBookings"`
}

// CardFromProfessional builds the card for p.
func CardFromProfessional(p models.ProfessionalProfile) ProfessionalCard {
	card := ProfessionalCard{
		ID:                p.ID,
		DisplayName:       p.DisplayName,
		Initials:          Initials(p.DisplayName),
		Headline:          p.Headline,
		AvatarURL:         p.AvatarURL,
		PrimaryService:    p.PrimaryService,
		City:              p.City,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		HourlyRate:        p.HourlyRate,
		Currency:          p.Currency,
		RateLabel:         FormatRate(p.HourlyRate, p.Currency),
		AverageRating:     p.AverageRating,
		RatingLabel:       RatingLabel(p.AverageRating),
		Badges:            []string{},
		Languages:         p.LanguageList(),
		YearsExperience:   p.YearsExperience,
		AvailableToday:    p.AvailableToday,
		CompletedBookings: p.CompletedBookings,
	}
	if p.AverageRating != nil {
		card.ReviewsLabel = ReviewsLabel(p.TotalReviews)
	}
	if p.Verified {
		card.Badges = append(card.Badges, BadgeVerified)
	}
	if p.BackgroundChecked {
		card.Badges = append(card.Badges, BadgeBackgroundChecked)
	}
	return card
}

// RatingLabel renders a one-decimal rating, or RatingNew when there is none.
func RatingLabel(avg *float64) string {
	if avg == nil {
		return RatingNew
	}
	return decimal.NewFromFloat(*avg).StringFixed(1)
}

// ReviewsLabel renders "(n reviews)".
func ReviewsLabel(n int) string {
	if n == 1 {
		return "(1 review)"
	}
	return fmt.Sprintf("(%d reviews)", n)
}

// FormatRate renders an hourly rate such as "$25/hr" or "$27.50/hr".
func FormatRate(amount decimal.Decimal, currency string) string {
	currency = strings.ToLower(currency)
	if currency == "" {
		currency = "usd"
	}
	prefix, ok := currencySymbols[currency]
	if !ok {
		prefix = strings.ToUpper(currency) + " "
	}
	places := int32(2)
	if amount.IsInteger() {
		places = 0
	}
	return prefix + amount.StringFixed(places) + "/hr"
}

// Initials takes the first letter of the first and last words of name.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	first := firstLetter(words[0])
	if len(words) == 1 {
		return first
	}
	return first + firstLetter(words[len(words)-1])
}

func firstLetter(word string) string {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return ""
}
