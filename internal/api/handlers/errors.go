package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

// respondError maps service errors to HTTP statuses. Gateway and internal failures
// are logged and answered with a generic message.
func respondError(c *gin.Context, err error, logger *zap.Logger) {
	var validation *errors.ErrValidation
	var notFound *errors.ErrNotFound
	var conflict *errors.ErrConflict
	var gateway *errors.GatewayError

	switch {
	case stderrors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case stderrors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case stderrors.As(err, &gateway):
		logger.Error("Shopify request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "error processing request"})
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error processing request"})
	}
}

// queryLimit reads ?limit=, defaulting to 25 and capped at 100
func queryLimit(c *gin.Context) int {
	limit := 25
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n >= 1 && n <= 100 {
			limit = n
		}
	}
	return limit
}
