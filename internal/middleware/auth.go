package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/pkg/auth"
	"github.com/mediassist/patient-api/pkg/httputil"
)

const ContextActor = "actor"

// AuthMiddleware verifies bearer credentials and places the resolved actor in
// the request context. Verified claims are cached briefly to skip repeated
// signature checks on chatty clients.
type AuthMiddleware struct {
	tokens auth.TokenService
	cache  *gocache.Cache
	ttl    time.Duration
}

func NewAuthMiddleware(tokens auth.TokenService, cacheTTL time.Duration) *AuthMiddleware {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AuthMiddleware{
		tokens: tokens,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		ttl:    cacheTTL,
	}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthenticated(c, "invalid authorization format")
			return
		}
		token := parts[1]

		var claims *auth.Claims
		if cached, ok := m.cache.Get(token); ok {
			claims = cached.(*auth.Claims)
		} else {
			verified, err := m.tokens.Verify(token)
			if err != nil {
				abortUnauthenticated(c, "invalid or expired token")
				return
			}
			claims = verified
			// Never cache claims past the token's own expiry.
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > m.ttl {
				ttl = m.ttl
			}
			if ttl > 0 {
				m.cache.Set(token, claims, ttl)
			}
		}

		c.Set(ContextActor, &model.Actor{
			ID:    claims.SubjectID,
			Email: claims.Email,
			Role:  model.Role(claims.Role),
		})
		c.Next()
	}
}

// RequireRole aborts with Forbidden unless the actor carries the given role.
func (m *AuthMiddleware) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor == nil {
			abortUnauthenticated(c, "authentication required")
			return
		}
		if actor.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, httputil.Response{
				Success: false,
				Message: "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor, or nil on unauthenticated
// routes.
func ActorFromContext(c *gin.Context) *model.Actor {
	v, ok := c.Get(ContextActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*model.Actor)
	return actor
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
		Success: false,
		Message: message,
	})
}
