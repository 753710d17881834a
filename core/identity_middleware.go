package core

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireIdentity resolves the caller through the backend and stores it on the context.
// Without a valid session the browser is sent to /logout, which clears the cookie.
func RequireIdentity(gw *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ResolveCurrentUser(c.Request.Context(), gw.ServerDispatcher(c.Request))
		if err != nil && !errors.Is(err, ErrNoToken) {
			respondDispatchError(c, err)
			c.Abort()
			return
		}
		if id == nil {
			c.Redirect(http.StatusSeeOther, "/logout")
			c.Abort()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// currentIdentity returns the identity stored by RequireIdentity.
func currentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}
