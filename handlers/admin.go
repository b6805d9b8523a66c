package handlers

import (
	"net/http"
	"time"

	"casaora/middleware"
	"casaora/services/booking"
	"casaora/services/payout"
	"casaora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	Bookings booking.BookingService
	Payouts  payout.PayoutService
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewAdminHandler(bookings booking.BookingService, payouts payout.PayoutService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{Bookings: bookings, Payouts: payouts, Logger: logger, Now: time.Now}
}

type resolveDisputeRequest struct {
	InFavorOf  booking.Party `json:"inFavorOf" binding:"required,oneof=customer professional"`
	Resolution string        `json:"resolution" binding:"required,max=4000"`
}

func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := h.Bookings.ResolveDispute(c.Request.Context(), middleware.ProfileID(c), id, req.InFavorOf, req.Resolution)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Logger.Info("Dispute resolved",
		zap.String("dispute_id", id.String()),
		zap.String("admin_id", middleware.ProfileID(c).String()),
		zap.String("in_favor_of", string(req.InFavorOf)))
	c.JSON(http.StatusOK, d)
}

type runPayoutsRequest struct {
	PeriodEnd *time.Time `json:"periodEnd"`
}

// RunPayouts triggers a payout batch now. periodEnd defaults to the current time.
func (h *AdminHandler) RunPayouts(c *gin.Context) {
	var req runPayoutsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	periodEnd := h.Now().UTC()
	if req.PeriodEnd != nil {
		periodEnd = req.PeriodEnd.UTC()
	}
	if periodEnd.After(h.Now().UTC()) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid periodEnd", "periodEnd cannot be in the future")
		return
	}
	res, err := h.Payouts.RunBatch(c.Request.Context(), periodEnd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
