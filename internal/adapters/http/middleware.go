package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/storage"
)

const sessionUserKey = "uid"

// Identity resolves the request's principal from the cookie session, or
// from a ws ticket for WebSocket connects that cannot send cookies.
// The principal is optional here; RequireAuth enforces it per route.
func Identity(auth *storage.AuthService, tickets *TicketIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint

		if v := sessions.Default(c).Get(sessionUserKey); v != nil {
			if id, ok := v.(uint); ok {
				userID = id
			}
		}
		if userID == 0 {
			if ticket := c.Query("ticket"); ticket != "" {
				id, err := tickets.Verify(ticket)
				if err != nil {
					log.Warn().Err(err).Str("module", "adapters.http").Msg("bad ws ticket")
				} else {
					userID = id
				}
			}
		}
		if userID == 0 {
			c.Next()
			return
		}

		user, err := auth.UserByID(userID)
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Uint("uid", userID).Msg("stale session user")
			c.Next()
			return
		}
		c.Set("principal", user.Principal())
		c.Next()
	}
}

// RequireAuth rejects requests without a resolved principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get("principal"); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized. Please log in."})
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) *domain.Principal {
	if v, ok := c.Get("principal"); ok {
		return v.(*domain.Principal)
	}
	return nil
}
