package handlers

import (
	"io"
	"net/http"
	"strconv"

	"casaora/middleware"
	"casaora/models"
	"casaora/services/booking"
	"casaora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe caps event payloads well below this.
const maxWebhookBytes = 64 << 10

type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingHandler{Service: svc, Logger: logger}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var in booking.CreateBookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Service.Create(c.Request.Context(), middleware.ProfileID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *BookingHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.Service.List(c.Request.Context(), actorFrom(c), booking.ListInput{
		Status: models.BookingStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	b, err := h.Service.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Accept(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c)(h.Service.Accept(c.Request.Context(), actorFrom(c), id))
}

func (h *BookingHandler) Start(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c)(h.Service.Start(c.Request.Context(), actorFrom(c), id))
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c)(h.Service.Complete(c.Request.Context(), actorFrom(c), id))
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	h.respond(c)(h.Service.Cancel(c.Request.Context(), actorFrom(c), id, req.Reason))
}

func (h *BookingHandler) respond(c *gin.Context) func(*models.Booking, error) {
	return func(b *models.Booking, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

func (h *BookingHandler) Review(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.Service.Review(c.Request.Context(), middleware.ProfileID(c), id, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

type disputeRequest struct {
	Reason      string `json:"reason" binding:"required,max=200"`
	Description string `json:"description" binding:"max=4000"`
}

func (h *BookingHandler) OpenDispute(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req disputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := h.Service.OpenDispute(c.Request.Context(), actorFrom(c), id, req.Reason, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// StripeWebhook verifies and applies a Stripe event. The raw body is needed
// for the signature check, so it is read before any binding.
func (h *BookingHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to read body", err.Error())
		return
	}
	res, err := h.Service.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.Logger.Warn("Stripe webhook rejected", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
