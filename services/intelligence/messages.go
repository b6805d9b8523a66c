package ai

import "fmt"

const (
	msgGreeting = iota
	msgNotHeard
	msgSearchResults
	msgSearchEmpty
	msgAskService
	msgChoosePro
	msgPickPro
	msgChooseTime
	msgPickTime
	msgSummary
	msgBookingCancelled
	msgHelpResults
	msgHelpEmpty
)

var catalog = map[string]map[int]string{
	"en": {
		msgGreeting:         "Hi, I'm Amara. I can find professionals, book a visit or answer questions about Casaora.",
		msgNotHeard:         "Sorry, I couldn't hear that. Could you try again?",
		msgSearchResults:    "Here are professionals for %s.",
		msgSearchEmpty:      "I couldn't find anyone for %s yet. Try another city or service.",
		msgAskService:       "What kind of help do you need? For example cleaning, childcare or cooking.",
		msgChoosePro:        "Who would you like to book?",
		msgPickPro:          "Please pick one of the professionals above.",
		msgChooseTime:       "When should %s come?",
		msgPickTime:         "Please choose a time in the future.",
		msgSummary:          "Here is your booking summary. Confirm it to pay and send the request.",
		msgBookingCancelled: "No problem, I stopped the booking.",
		msgHelpResults:      "These articles may help.",
		msgHelpEmpty:        "I couldn't find an article about that. You can write to support from the help center.",
	},
	"es": {
		msgGreeting:         "Hola, soy Amara. Puedo buscar profesionales, agendar una visita o responder preguntas sobre Casaora.",
		msgNotHeard:         "Perdón, no te escuché bien. ¿Puedes intentarlo de nuevo?",
		msgSearchResults:    "Estos son profesionales de %s.",
		msgSearchEmpty:      "Todavía no encontré a nadie de %s. Prueba otra ciudad o servicio.",
		msgAskService:       "¿Qué tipo de ayuda necesitas? Por ejemplo limpieza, cuidado de niños o cocina.",
		msgChoosePro:        "¿A quién quieres reservar?",
		msgPickPro:          "Elige uno de los profesionales de arriba.",
		msgChooseTime:       "¿Cuándo debe venir %s?",
		msgPickTime:         "Elige una hora en el futuro.",
		msgSummary:          "Este es el resumen de tu reserva. Confírmala para pagar y enviar la solicitud.",
		msgBookingCancelled: "Listo, detuve la reserva.",
		msgHelpResults:      "Estos artículos pueden ayudarte.",
		msgHelpEmpty:        "No encontré un artículo sobre eso. Puedes escribir a soporte desde el centro de ayuda.",
	},
}

func message(locale string, key int, args ...any) string {
	text := catalog[normalizeLocale(locale)][key]
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}
