package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"casaora/middleware"
	"casaora/models"
	ai "casaora/services/intelligence"
	"casaora/utils"

	"github.com/gin-gonic/gin"
)

type AssistantHandler struct {
	Service ai.AIService
}

func NewAssistantHandler(svc ai.AIService) *AssistantHandler {
	return &AssistantHandler{Service: svc}
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	var req models.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.UserID = middleware.ProfileID(c).String()
	resp, err := h.Service.Chat(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Voice accepts a multipart "audio" WAV (16 kHz mono PCM) plus an optional
// "locale" field and answers with the transcript and the assistant reply.
func (h *AssistantHandler) Voice(c *gin.Context) {
	header, err := c.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != allowedAudioExt {
		utils.JSONError(c, http.StatusBadRequest, "Invalid file type", "expected "+allowedAudioExt+", got "+ext)
		return
	}
	if header.Size > ai.MaxAudioBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "Audio too large", "maximum size is 5MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to read audio", err.Error())
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, ai.MaxAudioBytes))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to read audio", err.Error())
		return
	}
	if err := validateWave(audio); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Unsupported audio", err.Error())
		return
	}

	req := models.AssistantRequest{
		UserID: middleware.ProfileID(c).String(),
		Locale: c.DefaultPostForm("locale", "en"),
	}
	reply, err := h.Service.Transcribe(c.Request.Context(), req, audio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *AssistantHandler) Reset(c *gin.Context) {
	if err := h.Service.Reset(c.Request.Context(), middleware.ProfileID(c).String()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
