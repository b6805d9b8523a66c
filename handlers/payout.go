package handlers

import (
	"net/http"

	"casaora/middleware"
	"casaora/services/payout"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	Service payout.PayoutService
}

func NewPayoutHandler(svc payout.PayoutService) *PayoutHandler {
	return &PayoutHandler{Service: svc}
}

func (h *PayoutHandler) ListMine(c *gin.Context) {
	list, err := h.Service.ListMine(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": list})
}

func (h *PayoutHandler) Summary(c *gin.Context) {
	s, err := h.Service.Summary(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
