package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"casaora/middleware"
	"casaora/services/booking"
	"casaora/services/professional"
	"casaora/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const maxAvatarBytes = 5 << 20

var allowedAvatarExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type ProfessionalHandler struct {
	Service  professional.ProfessionalService
	Bookings booking.BookingService
}

func NewProfessionalHandler(svc professional.ProfessionalService, bookings booking.BookingService) *ProfessionalHandler {
	return &ProfessionalHandler{Service: svc, Bookings: bookings}
}

func (h *ProfessionalHandler) GetPublic(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.Service.GetPublicProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Quote prices ?hours= of work with the professional.
func (h *ProfessionalHandler) Quote(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	hours, err := decimal.NewFromString(c.DefaultQuery("hours", "2"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid hours", err.Error())
		return
	}
	q, err := h.Bookings.Quote(c.Request.Context(), id, hours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *ProfessionalHandler) GetMine(c *gin.Context) {
	p, err := h.Service.GetByProfileID(c.Request.Context(), middleware.ProfileID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfessionalHandler) UpsertMine(c *gin.Context) {
	var in professional.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	if in.HourlyRate.IsNegative() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", "hourlyRate must not be negative")
		return
	}
	p, err := h.Service.UpsertMyProfile(c.Request.Context(), middleware.ProfileID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfessionalHandler) UploadAvatar(c *gin.Context) {
	header, err := c.FormFile("avatar")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "avatar file is required", err.Error())
		return
	}
	if header.Size > maxAvatarBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "Avatar too large", "maximum size is 5MB")
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); !allowedAvatarExt[ext] {
		utils.JSONError(c, http.StatusBadRequest, "Invalid file type", "expected jpg, png or webp")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to read avatar", err.Error())
		return
	}
	defer file.Close()

	p, err := h.Service.UploadAvatar(c.Request.Context(), middleware.ProfileID(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatarUrl": p.AvatarURL})
}

type availabilityRequest struct {
	AvailableToday *bool `json:"availableToday" binding:"required"`
}

func (h *ProfessionalHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Service.SetAvailability(c.Request.Context(), middleware.ProfileID(c), *req.AvailableToday); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availableToday": *req.AvailableToday})
}
