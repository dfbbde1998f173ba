package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// actorHeader carries the authenticated staff member's id, set by the
// reverse proxy in front of this service after it validates the session.
const actorHeader = "X-Actor-Id"

const actorKey = "actor_id"

// requireActor rejects requests that arrive without an actor identity.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(actorHeader))
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString(actorKey)
}
