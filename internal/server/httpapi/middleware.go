package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fcastro-dev/taskroom/internal/server/auth"
	"github.com/fcastro-dev/taskroom/internal/server/services"
)

// ctxUserID is the gin context key under which the authenticated user id is
// stored by the auth middlewares.
const ctxUserID = "userID"

// sessionAuth requires a valid token cookie and stores the signed user id
// in the request context.
func sessionAuth(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"we could not validate your user"}})
			return
		}

		userID, err := auth.GetUserIDFromToken(token, secretKey)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"invalid user or token"}})
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// adminAuth additionally requires the user snapshot cookie and rejects the
// call when the signed id does not match the snapshot's. Snapshots are
// client-echoed, so the token remains the source of truth.
func adminAuth(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"we could not validate your user"}})
			return
		}

		snapshot, err := userSnapshot(c)
		if err != nil || snapshot.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"we could not validate your user"}})
			return
		}

		userID, err := auth.GetUserIDFromToken(token, secretKey)
		if err != nil || userID != snapshot.ID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"invalid user or token"}})
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// requestContext assembles the caller details passed down to the services.
func requestContext(c *gin.Context) services.RequestContext {
	return services.RequestContext{
		ActorID:   c.GetString(ctxUserID),
		UserAgent: c.GetHeader("User-Agent"),
		IP:        c.ClientIP(),
	}
}
