package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/agricoop/api/internal/auth"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

// ActorKey is the context key for the authenticated actor
const ActorKey = "actor"

// TokenValidator validates bearer tokens. auth.JWTManager satisfies it.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Authenticate resolves the request's actor from an optional bearer token.
// A request without an Authorization header proceeds as services.Anonymous;
// a malformed or invalid token is rejected with 401. Capability checks are
// left to the services.
func Authenticate(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(ActorKey, services.Anonymous)
			c.Next()
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "Invalid authorization format")
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Warn("Rejected bearer token", map[string]interface{}{"error": err.Error()})
			}
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		actor := services.Actor{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     models.Role(claims.Role),
		}
		c.Set(ActorKey, actor)
		if log := GetLogger(c); log != nil {
			c.Set(LoggerKey, log.With(map[string]interface{}{
				"user_id": actor.UserID,
				"role":    string(actor.Role),
			}))
		}
		c.Next()
	}
}

// GetActor retrieves the actor from the Gin context.
// Returns services.Anonymous if none was set.
func GetActor(c *gin.Context) services.Actor {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(services.Actor); ok {
			return actor
		}
	}
	return services.Anonymous
}

func abortUnauthorized(c *gin.Context, message string) {
	abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
