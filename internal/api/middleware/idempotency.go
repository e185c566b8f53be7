package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyKeyPrefix = "pdforders:idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour
)

// KeyLocker claims a key for a TTL; the sync lock stores satisfy it
type KeyLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// IdempotencyMiddleware rejects a replayed submission that carries the same
// Idempotency-Key and payload as one already accepted within the last 24h.
// A failed request releases its claim so the client can retry.
func IdempotencyMiddleware(store KeyLocker, maxBody int64, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to POST/PUT/PATCH requests
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		// Read request body
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody+1))
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
			c.Abort()
			return
		}
		if int64(len(body)) > maxBody {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			c.Abort()
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		// Calculate request hash
		hash := sha256.Sum256(append([]byte(idempotencyKey+"\x00"), body...))
		key := idempotencyKeyPrefix + hex.EncodeToString(hash[:])

		token, ok, err := store.TryLock(c.Request.Context(), key, idempotencyKeyTTL)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.JSON(http.StatusConflict, gin.H{
				"error": "duplicate submission: this Idempotency-Key was already used with the same payload",
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Unlock(context.WithoutCancel(c.Request.Context()), key, token); err != nil {
				logger.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
