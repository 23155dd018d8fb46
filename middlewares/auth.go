package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// bearerToken returns the JWT of the request, taken from the Authorization
// header or, failing that, from the Authorization cookie.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, _ := c.Cookie("Authorization")
	return token
}

// Authenticate resolves the principal of the request. Requests without a
// token are anonymous; an invalid token is rejected.
func Authenticate(c *gin.Context) {
	JWT := bearerToken(c)
	if JWT == "" {
		c.Set(utils.PrincipalKey, access.Principal{})
		c.Next()
		return
	}

	// Decode and validate it
	id, err := utils.ParseToken(JWT, initializers.Cfg.SecretKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	// First check if the principal exists in the Redis cache
	p, ok := utils.CachedPrincipal(c.Request.Context(), initializers.RDB, id)
	if !ok {
		// If the principal is not in the cache, then fetch it from the database
		p, err = initializers.USERS.Principal(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		// Finally, cache the principal in Redis
		utils.CachePrincipal(c.Request.Context(), initializers.RDB, p)
	}

	// Attach the principal to the context
	c.Set(utils.PrincipalKey, p)

	// Continue
	c.Next()
}

// RequireAuthentication rejects anonymous requests.
func RequireAuthentication(c *gin.Context) {
	if !utils.GetPrincipal(c).Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": access.ErrUnauthenticated.Error()})
		return
	}
	c.Next()
}

var methodActions = map[string]access.Action{
	http.MethodGet:    access.List,
	http.MethodPost:   access.Create,
	http.MethodPut:    access.Update,
	http.MethodPatch:  access.Update,
	http.MethodDelete: access.Delete,
}

// RequireAuthorization checks the request method against the policies of res.
func RequireAuthorization(res access.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.GetPrincipal(c)
		act, ok := methodActions[c.Request.Method]
		if !ok || !initializers.AUTHZ.Allowed(p, act, res, nil) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": access.ErrForbidden.Error()})
			initializers.LOGGER.Warn("Authorization Failed", "username", p.Username, "path", c.Request.URL.Path, "method", c.Request.Method)
			return
		}
		c.Next()
	}
}
