package middleware

import (
	"errors"
	"net/http"
	"strings"

	profileRepo "casaora/database/repository/profile"
	"casaora/models"
	"casaora/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by AuthMiddleware.
const (
	ProfileIDKey = "profileID"
	RoleKey      = "role"
)

// AuthMiddleware verifies the Supabase access token and loads the caller's
// profile row, whose role drives every later authorization decision.
func AuthMiddleware(secret string, profiles profileRepo.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Missing or invalid Authorization header", "")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := utils.ParseAuthClaims(tokenString, secret)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", err.Error())
			return
		}
		profileID, err := uuid.Parse(claims.Subject)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", "subject is not a profile id")
			return
		}

		profile, err := profiles.GetByID(c.Request.Context(), profileID)
		if errors.Is(err, profileRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusUnauthorized, "Profile not found", "")
			return
		}
		if err != nil {
			utils.GetLogger().Error("Failed to load profile", zap.String("profile_id", profileID.String()), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to authenticate", "")
			return
		}

		c.Set(ProfileIDKey, profile.ID)
		c.Set(RoleKey, profile.Role)
		c.Next()
	}
}

// ProfileID returns the authenticated caller. It is uuid.Nil on public routes.
func ProfileID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ProfileIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func Role(c *gin.Context) models.Role {
	if v, ok := c.Get(RoleKey); ok {
		if r, ok := v.(models.Role); ok {
			return r
		}
	}
	return ""
}
