package handlers

import (
	"net/http"
	"strconv"
	"time"

	"casaora/middleware"
	"casaora/services/messaging"
	"casaora/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessagingHandler struct {
	Service messaging.MessagingService
}

func NewMessagingHandler(svc messaging.MessagingService) *MessagingHandler {
	return &MessagingHandler{Service: svc}
}

type startConversationRequest struct {
	ProfessionalID uuid.UUID  `json:"professionalId" binding:"required"`
	BookingID      *uuid.UUID `json:"bookingId"`
}

func (h *MessagingHandler) Start(c *gin.Context) {
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	conv, err := h.Service.StartConversation(c.Request.Context(), middleware.ProfileID(c), req.ProfessionalID, req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *MessagingHandler) List(c *gin.Context) {
	convs, err := h.Service.List(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// Messages pages backwards with ?before=<RFC3339>&limit=.
func (h *MessagingHandler) Messages(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid before", "expected RFC3339 timestamp")
			return
		}
		before = &t
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := h.Service.Messages(c.Request.Context(), id, middleware.ProfileID(c), before, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *MessagingHandler) Send(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	msg, err := h.Service.Send(c.Request.Context(), id, middleware.ProfileID(c), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessagingHandler) MarkRead(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	n, err := h.Service.MarkRead(c.Request.Context(), id, middleware.ProfileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}
