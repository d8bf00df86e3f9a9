package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto an HTTP status. Client errors are answered
// with the error text; anything unexpected is logged and answered with fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrUnknownParticipant),
		errors.Is(err, apperrors.ErrInvalidConfiguration):
		logger.Warn("Rejected invalid request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNoExchangeRate):
		logger.Warn("Exchange rate unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
