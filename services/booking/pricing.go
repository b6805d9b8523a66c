package booking

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	maxHours = decimal.NewFromInt(12)
	two      = decimal.NewFromInt(2)
)

// Quote is the price breakdown of a booking. The customer pays Total; the
// platform keeps Commission out of the professional's share.
type Quote struct {
	HourlyRate           decimal.Decimal `json:"hourlyRate"`
	Hours                decimal.Decimal `json:"hours"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	Commission           decimal.Decimal `json:"commission"`
	Total                decimal.Decimal `json:"total"`
	ProfessionalEarnings decimal.Decimal `json:"professionalEarnings"`
	Currency             string          `json:"currency"`
}

// NewQuote prices hours of work at rate. Hours must be in (0, 12] and a
// multiple of half an hour.
func NewQuote(rate, hours, commissionRate decimal.Decimal, currency string) (Quote, error) {
	if !rate.IsPositive() {
		return Quote{}, NewValidationError("hourlyRate", "must be greater than zero")
	}
	if !hours.IsPositive() || hours.GreaterThan(maxHours) {
		return Quote{}, NewValidationError("durationHours", "must be more than 0 and at most 12")
	}
	if halves := hours.Mul(two); !halves.Equal(halves.Truncate(0)) {
		return Quote{}, NewValidationError("durationHours", "must be in half-hour steps")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Quote{}, NewValidationError("commissionRate", "must be in [0, 1)")
	}

	subtotal := rate.Mul(hours).Round(2)
	commission := subtotal.Mul(commissionRate).Round(2)
	return Quote{
		HourlyRate:           rate,
		Hours:                hours,
		Subtotal:             subtotal,
		Commission:           commission,
		Total:                subtotal,
		ProfessionalEarnings: subtotal.Sub(commission),
		Currency:             strings.ToLower(currency),
	}, nil
}
