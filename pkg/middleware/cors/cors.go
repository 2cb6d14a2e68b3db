package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// New returns a CORS middleware for the dashboard origins. The session header is
// exposed so the browser can read a freshly issued session id.
//
// An empty origin list allows any origin.
func New(allowedOrigins []string, sessionHeader string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}

	allowHeaders := []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID", "X-Confirm-Token"}
	if sessionHeader != "" {
		allowHeaders = append(allowHeaders, sessionHeader)
	}
	allowHeadersValue := strings.Join(allowHeaders, ", ")

	expose := []string{"X-Request-ID", "Content-Disposition"}
	if sessionHeader != "" {
		expose = append(expose, sessionHeader)
	}
	exposeValue := strings.Join(expose, ", ")

	return func(c *gin.Context) {
		origin := strings.TrimRight(c.GetHeader("Origin"), "/")
		if origin != "" {
			if _, ok := originSet[origin]; allowAll || ok {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			}
		} else if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowHeadersValue)
		c.Writer.Header().Set("Access-Control-Expose-Headers", exposeValue)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
