package handlers

import (
	"net/http"

	"casaora/middleware"
	"casaora/services/referral"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	Service referral.ReferralService
}

func NewReferralHandler(svc referral.ReferralService) *ReferralHandler {
	return &ReferralHandler{Service: svc}
}

func (h *ReferralHandler) Code(c *gin.Context) {
	code, err := h.Service.EnsureCode(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

type redeemRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

func (h *ReferralHandler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ref, err := h.Service.Redeem(c.Request.Context(), middleware.ProfileID(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *ReferralHandler) ListMine(c *gin.Context) {
	refs, err := h.Service.ListMine(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": refs})
}
