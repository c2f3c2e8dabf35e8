package transport

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	portidem "github.com/alanyang/prompt-vault/internal/port/idempotency"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
)

// noisyPaths are high-frequency paths logged at Debug to keep Info clean.
var noisyPaths = map[string]bool{
	"/health": true,
	"/api/ws": true,
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == http.MethodOptions {
			return
		}
		level := slog.LevelInfo
		if noisyPaths[c.Request.URL.Path] {
			level = slog.LevelDebug
		}

		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"user_id", httpx.Owner(c),
		)
	}
}

// CORSMiddleware allows the configured origins; "*" or an empty list allows
// any origin.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	anyOrigin := len(origins) == 0
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			anyOrigin = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case anyOrigin:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, If-Match, Idempotency-Key")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "ETag")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

const idempotencyHeader = "Idempotency-Key"

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key. Only successful responses are stored, so a failed create
// may be retried with the same key. Must run after authentication.
func IdempotencyMiddleware(store portidem.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		owner := httpx.Owner(c)
		if key == "" || owner == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		prev, ok, err := store.Check(ctx, owner, key)
		if err != nil {
			slog.WarnContext(ctx, "idempotency check failed", "key", key, "error", err)
		}
		if ok {
			c.Header("Idempotent-Replayed", "true")
			if prev.ETag != "" {
				c.Header("ETag", prev.ETag)
			}
			c.Data(prev.StatusCode, "application/json; charset=utf-8", prev.Body)
			c.Abort()
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if status := w.Status(); status >= 200 && status < 300 {
			resp := portidem.Response{StatusCode: status, Body: w.body.Bytes(), ETag: w.Header().Get("ETag")}
			if err := store.Save(ctx, owner, key, resp); err != nil {
				slog.WarnContext(ctx, "idempotency save failed", "key", key, "error", err)
			}
		}
	}
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
