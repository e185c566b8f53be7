package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/repository/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	hash, err := HashAPIKey("s3cret-key")
	require.NoError(t, err)

	router := gin.New()
	router.Use(AuthMiddleware(hash, zap.NewNop()))
	router.GET("/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty key", "Bearer   ", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"valid key", "Bearer s3cret-key", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthMiddleware_DisabledWithoutHash(t *testing.T) {
	router := gin.New()
	router.Use(AuthMiddleware("", zap.NewNop()))
	router.GET("/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIdempotencyMiddleware(t *testing.T) {
	status := http.StatusCreated
	calls := 0

	router := gin.New()
	router.Use(IdempotencyMiddleware(redis.NewLocalLocker(), 1<<20, zap.NewNop()))
	router.POST("/v1/submissions/items", func(c *gin.Context) {
		calls++
		c.Status(status)
	})

	send := func(key, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/submissions/items", strings.NewReader(body))
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("k1", `{"po_number":"1"}`))
	assert.Equal(t, http.StatusConflict, send("k1", `{"po_number":"1"}`))
	assert.Equal(t, http.StatusCreated, send("k1", `{"po_number":"2"}`), "different payload is a different submission")
	assert.Equal(t, http.StatusCreated, send("", `{"po_number":"1"}`))
	assert.Equal(t, http.StatusCreated, send("", `{"po_number":"1"}`))
	assert.Equal(t, 4, calls)

	status = http.StatusBadGateway
	assert.Equal(t, http.StatusBadGateway, send("k2", `{"po_number":"3"}`))
	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, send("k2", `{"po_number":"3"}`), "failed request releases its key")
}

func TestIdempotencyMiddleware_BodyTooLarge(t *testing.T) {
	router := gin.New()
	router.Use(IdempotencyMiddleware(redis.NewLocalLocker(), 8, zap.NewNop()))
	router.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123456789"))
	req.Header.Set(IdempotencyKeyHeader, "k")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
