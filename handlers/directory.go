package handlers

import (
	"net/http"

	"casaora/services/directory"
	"casaora/utils"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	Service directory.DirectoryService
}

func NewDirectoryHandler(svc directory.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{Service: svc}
}

// Search serves GET /api/directory. The query string is the directory's URL state.
func (h *DirectoryHandler) Search(c *gin.Context) {
	page, err := h.Service.Search(c.Request.Context(), directory.ParseParams(c.Request.URL.Query()))
	if err != nil {
		utils.RetryableError(c, "Failed to load professionals", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Chips returns the removable chips for the active filters, without querying.
func (h *DirectoryHandler) Chips(c *gin.Context) {
	params := directory.ParseParams(c.Request.URL.Query())
	c.JSON(http.StatusOK, gin.H{"chips": directory.ActiveFilterChips(params.Filters)})
}

func (h *DirectoryHandler) Map(c *gin.Context) {
	page, err := h.Service.Search(c.Request.Context(), directory.ParseParams(c.Request.URL.Query()))
	if err != nil {
		utils.RetryableError(c, "Failed to load map", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"markers": directory.MapMarkers(page)})
}

func (h *DirectoryHandler) MapConfig(c *gin.Context) {
	c.JSON(http.StatusOK, directory.CurrentMapConfig())
}
