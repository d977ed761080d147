package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"poker-platform/internal/apierr"
)

// statusFor maps an apierr.Kind to the HTTP status the command gateway
// answers with. Every command response carries either the new snapshot or
// {error, detail} per spec.md §7.
func statusFor(kind apierr.Kind) int {
	switch kind {
	case apierr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apierr.KindForbidden:
		return http.StatusForbidden
	case apierr.KindNotFound, apierr.KindNotSeated:
		return http.StatusNotFound
	case apierr.KindInvalidAction, apierr.KindInvalidAmount:
		return http.StatusBadRequest
	case apierr.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case apierr.KindTableFull, apierr.KindAlreadySeated, apierr.KindGameAlreadyStarted,
		apierr.KindAlreadyCashedOut, apierr.KindNotYourTurn, apierr.KindGameNotInProgress,
		apierr.KindCannotLeaveActive:
		return http.StatusConflict
	case apierr.KindBusy:
		return http.StatusServiceUnavailable
	case apierr.KindDeckExhausted, apierr.KindInsufficientCards, apierr.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {error, detail} with the mapped HTTP status.
// A non-apierr error is treated as Internal.
func writeError(c *gin.Context, err error) {
	if e, ok := err.(*apierr.Error); ok {
		c.JSON(statusFor(e.Kind), errorResponse{Error: string(e.Kind), Detail: e.Detail})
		return
	}
	c.JSON(http.StatusInternalServerError, errorResponse{Error: string(apierr.KindInternal), Detail: err.Error()})
}
