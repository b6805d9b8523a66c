package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"casaora/models"
	"casaora/services/booking"
	"casaora/services/directory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxSuggestions = 5
	defaultHours   = 2

	stepChooseProfessional = 1
	stepChooseTime         = 2
)

// BookingSummary is the data of a booking_summary block. The widget posts it
// back to the booking API when the customer confirms.
type BookingSummary struct {
	ProfessionalID   uuid.UUID       `json:"professionalId"`
	ProfessionalName string          `json:"professionalName"`
	Service          string          `json:"service"`
	ScheduledStart   time.Time       `json:"scheduledStart"`
	DurationHours    decimal.Decimal `json:"durationHours"`
	Quote            booking.Quote   `json:"quote"`
}

func (s *DefaultAIService) searchProfessionals(ctx context.Context, aiCtx *models.AssistantContext) ([]directory.ProfessionalCard, error) {
	page, err := s.Directory.Search(ctx, directory.Params{
		Filters:  directory.Filters{Service: aiCtx.Service, City: aiCtx.City},
		Sort:     directory.SortRating,
		PageSize: maxSuggestions,
	})
	if err != nil {
		return nil, err
	}
	cards := page.Items
	if len(cards) > maxSuggestions {
		cards = cards[:maxSuggestions]
	}
	return cards, nil
}

func describe(aiCtx *models.AssistantContext) string {
	what := aiCtx.Service
	if what == "" {
		what = "home services"
	}
	if aiCtx.City != "" {
		what += " · " + aiCtx.City
	}
	return what
}

func (s *DefaultAIService) handleSearch(ctx context.Context, locale string, aiCtx *models.AssistantContext) (*models.AssistantResponse, error) {
	cards, err := s.searchProfessionals(ctx, aiCtx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return textResponse(IntentSearch, message(locale, msgSearchEmpty, describe(aiCtx))), nil
	}
	resp := &models.AssistantResponse{
		Intent: IntentSearch,
		Blocks: []models.UIBlock{
			{Type: models.BlockText, Text: message(locale, msgSearchResults, describe(aiCtx))},
			{Type: models.BlockProfessionalList, Data: cards},
		},
	}
	for _, c := range cards {
		resp.Actions = append(resp.Actions, models.AssistantAction{
			Label:          c.DisplayName,
			Type:           "book",
			ProfessionalID: c.ID.String(),
		})
	}
	return resp, nil
}

func (s *DefaultAIService) startBooking(ctx context.Context, locale string, aiCtx *models.AssistantContext) (*models.AssistantResponse, error) {
	if aiCtx.Service == "" {
		return textResponse(IntentBook, message(locale, msgAskService)), nil
	}
	cards, err := s.searchProfessionals(ctx, aiCtx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return textResponse(IntentBook, message(locale, msgSearchEmpty, describe(aiCtx))), nil
	}

	aiCtx.BookingStep = stepChooseProfessional
	resp := &models.AssistantResponse{
		Intent: IntentBook,
		Blocks: []models.UIBlock{
			{Type: models.BlockText, Text: message(locale, msgChoosePro)},
			{Type: models.BlockProfessionalList, Data: cards},
		},
	}
	for _, c := range cards {
		resp.Actions = append(resp.Actions, models.AssistantAction{
			Label:          c.DisplayName,
			Type:           "select_professional",
			ProfessionalID: c.ID.String(),
			Value:          c.ID.String(),
		})
	}
	resp.Actions = append(resp.Actions, cancelAction(locale))
	return resp, nil
}

func (s *DefaultAIService) continueBooking(ctx context.Context, locale, text string, aiCtx *models.AssistantContext) (*models.AssistantResponse, error) {
	switch aiCtx.BookingStep {
	case stepChooseProfessional:
		id, err := uuid.Parse(strings.TrimSpace(text))
		if err != nil {
			return textResponse(IntentBook, message(locale, msgPickPro)), nil
		}
		pro, err := s.Pros.GetByID(ctx, id)
		if err != nil || pro.Status != models.ProfessionalActive {
			return textResponse(IntentBook, message(locale, msgPickPro)), nil
		}
		aiCtx.ProfessionalID = pro.ID.String()
		aiCtx.BookingStep = stepChooseTime
		resp := textResponse(IntentBook, message(locale, msgChooseTime, pro.DisplayName))
		for _, t := range SuggestedTimes(s.Now()) {
			resp.Actions = append(resp.Actions, models.AssistantAction{
				Label: t.Format("Mon 2 Jan 15:04"),
				Type:  "select_time",
				Value: t.Format(time.RFC3339),
			})
		}
		resp.Actions = append(resp.Actions, cancelAction(locale))
		return resp, nil

	case stepChooseTime:
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(text))
		if err != nil || !start.After(s.Now()) {
			return textResponse(IntentBook, message(locale, msgPickTime)), nil
		}
		return s.summarize(ctx, locale, start, aiCtx)
	}
	resetBooking(aiCtx)
	return textResponse(IntentChat, message(locale, msgGreeting)), nil
}

func (s *DefaultAIService) summarize(ctx context.Context, locale string, start time.Time, aiCtx *models.AssistantContext) (*models.AssistantResponse, error) {
	proID, err := uuid.Parse(aiCtx.ProfessionalID)
	if err != nil {
		resetBooking(aiCtx)
		return textResponse(IntentBook, message(locale, msgPickPro)), nil
	}
	pro, err := s.Pros.GetByID(ctx, proID)
	if err != nil {
		return nil, err
	}
	hours := decimal.NewFromInt(defaultHours)
	if aiCtx.Hours > 0 {
		hours = decimal.NewFromFloat(aiCtx.Hours)
	}
	quote, err := s.Quotes.Quote(ctx, proID, hours)
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		resetBooking(aiCtx)
		return textResponse(IntentBook, verr.Error()), nil
	}
	if err != nil {
		return nil, err
	}

	summary := BookingSummary{
		ProfessionalID:   proID,
		ProfessionalName: pro.DisplayName,
		Service:          aiCtx.Service,
		ScheduledStart:   start.UTC(),
		DurationHours:    hours,
		Quote:            quote,
	}
	resetBooking(aiCtx)
	return &models.AssistantResponse{
		Intent: IntentBook,
		Blocks: []models.UIBlock{
			{Type: models.BlockText, Text: message(locale, msgSummary)},
			{Type: models.BlockBookingSummary, Data: summary},
		},
		Actions: []models.AssistantAction{
			{Label: "Confirm", Type: "confirm_booking", ProfessionalID: proID.String(), Value: start.UTC().Format(time.RFC3339)},
			cancelAction(locale),
		},
	}, nil
}

func (s *DefaultAIService) handleHelp(ctx context.Context, locale, text string) (*models.AssistantResponse, error) {
	articles, err := s.Help.Search(ctx, text, locale)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return textResponse(IntentHelp, message(locale, msgHelpEmpty)), nil
	}
	if len(articles) > maxSuggestions {
		articles = articles[:maxSuggestions]
	}
	return &models.AssistantResponse{
		Intent: IntentHelp,
		Blocks: []models.UIBlock{
			{Type: models.BlockText, Text: message(locale, msgHelpResults)},
			{Type: models.BlockHelpArticles, Data: articles},
		},
	}, nil
}

// SuggestedTimes offers three slots over the next two days, in UTC.
func SuggestedTimes(now time.Time) []time.Time {
	day := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	return []time.Time{
		day.Add(9 * time.Hour),
		day.Add(14 * time.Hour),
		day.AddDate(0, 0, 1).Add(10 * time.Hour),
	}
}

func resetBooking(aiCtx *models.AssistantContext) {
	aiCtx.BookingStep = 0
	aiCtx.ProfessionalID = ""
	aiCtx.ScheduledStart = time.Time{}
	aiCtx.Hours = 0
}

func cancelAction(locale string) models.AssistantAction {
	label := "Cancel"
	if normalizeLocale(locale) == "es" {
		label = "Cancelar"
	}
	return models.AssistantAction{Label: label, Type: "reset", Value: "cancel"}
}
