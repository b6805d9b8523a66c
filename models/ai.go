package models

import "time"

// AssistantRequest is the payload the chat widget posts to /api/assistant/chat.
type AssistantRequest struct {
	UserID string   `json:"-"`
	Text   string   `json:"text" binding:"required,max=2000"`
	Locale string   `json:"locale,omitempty"`
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
}

// UI block types rendered by the widget.
const (
	BlockText             = "text"
	BlockProfessionalList = "professional_list"
	BlockBookingSummary   = "booking_summary"
	BlockHelpArticles     = "help_articles"
)

// UIBlock is one generative-UI element. Data's shape depends on Type.
type UIBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Data any    `json:"data,omitempty"`
}

// AssistantAction is a button the widget shows under the reply.
type AssistantAction struct {
	Label          string `json:"label"`
	Type           string `json:"type"` // "select_professional", "select_time", "confirm_booking", "search", "reset"
	ProfessionalID string `json:"professionalId,omitempty"`
	Value          string `json:"value,omitempty"`
}

// AssistantResponse is what the chat endpoint returns.
type AssistantResponse struct {
	Intent  string            `json:"intent"`
	Blocks  []UIBlock         `json:"blocks"`
	Actions []AssistantAction `json:"actions,omitempty"`
}

// AssistantContext survives between turns in Redis.
type AssistantContext struct {
	Intent         string    `json:"intent"`
	Service        string    `json:"service"`
	City           string    `json:"city"`
	BookingStep    int       `json:"bookingStep"`
	ProfessionalID string    `json:"professionalId,omitempty"`
	ScheduledStart time.Time `json:"scheduledStart,omitzero"`
	Hours          float64   `json:"hours,omitempty"`
}

// TranscriptEntry is one archived assistant turn.
type TranscriptEntry struct {
	UserID    string    `bson:"userId" json:"userId"`
	Role      string    `bson:"role" json:"role"` // "user" or "assistant"
	Text      string    `bson:"text" json:"text"`
	Intent    string    `bson:"intent,omitempty" json:"intent,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
