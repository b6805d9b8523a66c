package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Intents the assistant dispatches on.
const (
	IntentSearch = "search"
	IntentBook   = "book"
	IntentHelp   = "help"
	IntentChat   = "chat"
)

// Intent is what a classifier extracted from one user message.
type Intent struct {
	Intent  string `json:"intent"`
	Service string `json:"service"`
	City    string `json:"city"`
}

func (i Intent) normalize() Intent {
	switch i.Intent {
	case IntentSearch, IntentBook, IntentHelp:
	default:
		i.Intent = IntentChat
	}
	i.Service = strings.ToLower(strings.TrimSpace(i.Service))
	i.City = strings.TrimSpace(i.City)
	return i
}

type Classifier interface {
	Classify(ctx context.Context, text, locale string) (Intent, error)
}

// Service slugs and the words, in English and Spanish, that point at them.
var serviceKeywords = []struct {
	slug  string
	words []string
}{
	{"cleaning", []string{"clean", "limpieza", "limpiar", "aseo"}},
	{"childcare", []string{"babysit", "nanny", "childcare", "niñera", "ninera", "niños", "ninos"}},
	{"cooking", []string{"cook", "chef", "cocin"}},
	{"laundry", []string{"laundry", "ironing", "lavander", "planch"}},
	{"eldercare", []string{"elder", "senior", "adulto mayor", "abuel"}},
	{"gardening", []string{"garden", "jardin", "jardín"}},
	{"petcare", []string{"pet", "dog walk", "mascota", "perro"}},
}

var intentKeywords = []struct {
	intent string
	words  []string
}{
	{IntentBook, []string{"book", "schedule", "reserve", "hire", "reservar", "agendar", "contratar", "reserva"}},
	{IntentHelp, []string{"help", "refund", "cancel my", "how do i", "payment", "ayuda", "reembolso", "cómo", "como puedo", "pago"}},
	{IntentSearch, []string{"find", "search", "looking for", "need", "show me", "busco", "buscar", "necesito", "encontrar", "muéstrame"}},
}

// Cities the keyword classifier recognises in free text.
var knownCities = []string{"Bogotá", "Medellín", "Cali", "Barranquilla", "Cartagena", "Ciudad de México", "Guadalajara", "Monterrey", "Miami", "Madrid"}

// KeywordClassifier matches English and Spanish keywords. It is the fallback
// when no model is configured.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, text, _ string) (Intent, error) {
	lower := strings.ToLower(text)
	out := Intent{Intent: IntentChat}

	for _, k := range intentKeywords {
		if containsAny(lower, k.words) {
			out.Intent = k.intent
			break
		}
	}
	for _, s := range serviceKeywords {
		if containsAny(lower, s.words) {
			out.Service = s.slug
			break
		}
	}
	for _, c := range knownCities {
		if strings.Contains(lower, strings.ToLower(c)) || strings.Contains(lower, strings.ToLower(stripAccents(c))) {
			out.City = c
			break
		}
	}
	// "I need a cleaner" names a service without an explicit verb.
	if out.Intent == IntentChat && out.Service != "" {
		out.Intent = IntentSearch
	}
	return out, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

var accentReplacer = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U")

func stripAccents(s string) string { return accentReplacer.Replace(s) }

// FallbackClassifier asks Primary first and falls back on any error.
type FallbackClassifier struct {
	Primary  Classifier
	Fallback Classifier
	Logger   *zap.Logger
}

func (f FallbackClassifier) Classify(ctx context.Context, text, locale string) (Intent, error) {
	if f.Primary != nil {
		intent, err := f.Primary.Classify(ctx, text, locale)
		if err == nil {
			return intent.normalize(), nil
		}
		if f.Logger != nil {
			f.Logger.Warn("Model classification failed; using keywords", zap.Error(err))
		}
	}
	intent, err := f.Fallback.Classify(ctx, text, locale)
	return intent.normalize(), err
}
