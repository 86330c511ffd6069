package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"typeroo-api/internal/auth"
	"typeroo-api/internal/domain"
	"typeroo-api/internal/service"
)

const identityKey = "identity"

// requireUser rejects requests without a valid bearer token carrying the
// user or admin role.
func (h *Handler) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.Request)
		if err != nil {
			message(c, http.StatusUnauthorized, "Error: Unauthorized")
			c.Abort()
			return
		}

		claims, err := h.tokens.Verify(raw)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				h.logger.WithError(err).Warn("token verification failed")
			}
			message(c, http.StatusUnauthorized, "Error: Unauthorized")
			c.Abort()
			return
		}

		who := service.Identity{
			UserID:   claims.Subject,
			Username: claims.Username,
			Roles:    claims.Roles,
		}
		if !who.HasAnyRole(domain.RoleUser, domain.RoleAdmin) {
			message(c, http.StatusForbidden, "Error: Forbidden")
			c.Abort()
			return
		}

		c.Set(identityKey, who)
		c.Next()
	}
}

func identity(c *gin.Context) service.Identity {
	v, _ := c.Get(identityKey)
	who, _ := v.(service.Identity)
	return who
}
