package httpx

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/prompt-vault/internal/domain/record"
	domainuser "github.com/alanyang/prompt-vault/internal/domain/user"
)

const userKey = "prompt_vault_user"

type ownerCtxKey struct{}

// SetUser records the authenticated user on both the gin context and the
// request context, so handlers mounted with gin.WrapH see it too.
func SetUser(c *gin.Context, u domainuser.User) {
	c.Set(userKey, u)
	c.Request = c.Request.WithContext(WithOwner(c.Request.Context(), u.ID))
}

// User returns the user set by the auth middleware.
func User(c *gin.Context) (domainuser.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return domainuser.User{}, false
	}
	u, ok := v.(domainuser.User)
	return u, ok
}

// Owner returns the authenticated owner id, or "" when the route is not
// behind the auth middleware. Services reject "" as unauthenticated.
func Owner(c *gin.Context) record.UserID {
	u, _ := User(c)
	return u.ID
}

func WithOwner(ctx context.Context, id record.UserID) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, id)
}

func OwnerFrom(ctx context.Context) record.UserID {
	id, _ := ctx.Value(ownerCtxKey{}).(record.UserID)
	return id
}
