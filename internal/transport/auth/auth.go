package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
)

// Guard resolves a bearer credential to its (existing) user.
type Guard interface {
	CurrentUser(ctx context.Context, credential string) (domainuser.User, error)
}

// Middleware authenticates every request in the group. The credential comes
// from "Authorization: Bearer <token>", or from the access_token query
// parameter for clients that cannot set headers (browser WebSockets).
func Middleware(guard Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c)
		if !ok {
			httpx.WriteError(c, record.ErrUnauthenticated)
			return
		}
		u, err := guard.CurrentUser(c.Request.Context(), token)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		httpx.SetUser(c, u)
		c.Next()
	}
}

func bearer(c *gin.Context) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
	if q := c.Query("access_token"); q != "" {
		return q, true
	}
	return "", false
}

// Register mounts the current-user endpoint on a group that is already
// behind Middleware.
func Register(rg *gin.RouterGroup) {
	rg.GET("/me", me)
}

func me(c *gin.Context) {
	u, ok := httpx.User(c)
	if !ok {
		httpx.WriteError(c, record.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, u)
}
