package handlers

import (
	"net/http"

	apperrors "bakai-assistant/errors"
	"bakai-assistant/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, fields ...zap.Field) {
	fields = append(fields, zap.Error(technicalError))
	middleware.LoggerFrom(c).Error("Request failed", fields...)

	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithServiceError maps a service error onto a status code.
func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case apperrors.IsInvalidInput(err):
		respondWithClientError(c, http.StatusBadRequest, err.Error())
	case apperrors.IsIndexNotBuilt(err), apperrors.IsEmptyCollection(err):
		respondWithError(c, http.StatusServiceUnavailable, err, "knowledge base is not ready")
	case apperrors.IsServiceUnavailable(err):
		respondWithError(c, http.StatusServiceUnavailable, err, "a backing service is unavailable")
	default:
		respondWithError(c, http.StatusInternalServerError, err, "internal error")
	}
}
