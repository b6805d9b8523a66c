package handlers

import (
	"errors"
	"net/http"

	"casaora/middleware"
	"casaora/services/booking"
	"casaora/services/helpcenter"
	ai "casaora/services/intelligence"
	"casaora/services/messaging"
	"casaora/services/payments"
	"casaora/services/payout"
	"casaora/services/professional"
	"casaora/services/referral"
	"casaora/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	notFoundErrors = []error{
		booking.ErrNotFound, booking.ErrDisputeNotFound, professional.ErrNotFound,
		helpcenter.ErrNotFound, messaging.ErrNotFound, payout.ErrNotProfessional,
	}
	forbiddenErrors = []error{booking.ErrForbidden, messaging.ErrNotParticipant}
	conflictErrors  = []error{
		booking.ErrInvalidTransition, booking.ErrAlreadyReviewed, booking.ErrNotReviewable,
		booking.ErrAlreadyPaidOut, booking.ErrDisputeClosed, booking.ErrProfessionalUnavailable,
		referral.ErrAlreadyRedeemed,
	}
	badRequestErrors = []error{
		messaging.ErrEmptyBody, messaging.ErrBodyTooLong, messaging.ErrSelfMessage,
		referral.ErrInvalidCode, referral.ErrSelfReferral,
		ai.ErrEmptyMessage, ai.ErrEmptyAudio, payments.ErrInvalidSignature,
	}
	unavailableErrors = []error{ai.ErrSpeechUnavailable, professional.ErrStorageUnavailable}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *booking.ValidationError
	var perr *booking.PaymentError
	switch {
	case errors.As(err, &verr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", verr.Error())
	case errors.As(err, &perr):
		utils.RetryableError(c, "Payment provider error", err)
	case isAny(err, notFoundErrors):
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
	case isAny(err, forbiddenErrors):
		utils.JSONError(c, http.StatusForbidden, "Forbidden", err.Error())
	case isAny(err, conflictErrors):
		utils.JSONError(c, http.StatusConflict, "Conflict", err.Error())
	case isAny(err, badRequestErrors):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
	case isAny(err, unavailableErrors):
		utils.JSONError(c, http.StatusServiceUnavailable, "Service unavailable", err.Error())
	default:
		utils.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func bindError(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
}

// paramUUID reads a uuid path parameter, answering 400 when it is malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name, "expected a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{ProfileID: middleware.ProfileID(c), Role: middleware.Role(c)}
}
