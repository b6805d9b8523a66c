package models

import (
	"strings"

	"github.com/google/uuid"
)

// Supported content locales.
const (
	LocaleEN = "en"
	LocaleES = "es"
)

// Locales lists every locale content is published in, in publishing order.
var Locales = []string{LocaleEN, LocaleES}

// NormalizeLocale maps anything that is not a supported locale to English.
func NormalizeLocale(locale string) string {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case LocaleES, "es-es", "es-mx", "es-co":
		return LocaleES
	default:
		return LocaleEN
	}
}

// Localized picks the value for locale, falling back to the English value when
// the localized one is blank.
func Localized(en, es, locale string) string {
	if locale == LocaleES && strings.TrimSpace(es) != "" {
		return es
	}
	return en
}

// SplitList turns a comma-separated column into a trimmed slice.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(items []string) string {
	clean := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			clean = append(clean, it)
		}
	}
	return strings.Join(clean, ",")
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// ReminderPayload is the asynq payload for a booking reminder push.
type ReminderPayload struct {
	ProfileID string `json:"profileId"`
	BookingID string `json:"bookingId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	FireDate  string `json:"fireDate,omitempty"`
}
