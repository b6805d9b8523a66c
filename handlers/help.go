package handlers

import (
	"net/http"
	"strings"

	"casaora/services/helpcenter"
	"casaora/utils"

	"github.com/gin-gonic/gin"
)

type HelpHandler struct {
	Service helpcenter.HelpCenterService
}

func NewHelpHandler(svc helpcenter.HelpCenterService) *HelpHandler {
	return &HelpHandler{Service: svc}
}

// locale reads ?locale=, falling back to Accept-Language and then "en".
func locale(c *gin.Context) string {
	if l := c.Query("locale"); l != "" {
		return l
	}
	if strings.HasPrefix(strings.ToLower(c.GetHeader("Accept-Language")), "es") {
		return "es"
	}
	return "en"
}

func (h *HelpHandler) Categories(c *gin.Context) {
	cats, err := h.Service.Categories(c.Request.Context(), locale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *HelpHandler) Articles(c *gin.Context) {
	articles, err := h.Service.Articles(c.Request.Context(), c.Param("slug"), locale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (h *HelpHandler) Article(c *gin.Context) {
	a, err := h.Service.Article(c.Request.Context(), c.Param("slug"), locale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type feedbackRequest struct {
	Helpful *bool `json:"helpful" binding:"required"`
}

func (h *HelpHandler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Service.Feedback(c.Request.Context(), c.Param("slug"), *req.Helpful); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HelpHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing query", "q is required")
		return
	}
	results, err := h.Service.Search(c.Request.Context(), q, locale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
