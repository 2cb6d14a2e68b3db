package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/config"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/logger"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "currentSession"

type sessionResolver interface {
	Resolve(ctx context.Context, id string) (*session.Session, error)
}

// Session protects routes by requiring an authenticated session. The session id is
// read from the configured header, then from the cookie.
func Session(resolver sessionResolver, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := SessionID(c, cfg)
		if id == "" {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), id)
		if err != nil {
			c.Set(logger.SessionIDKey, id)
			response.Abort(c, err)
			return
		}

		c.Set(logger.SessionIDKey, sess.ID)
		c.Set(ContextSessionKey, sess)
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

// SessionID extracts the session id of the request, if any.
func SessionID(c *gin.Context, cfg config.SessionConfig) string {
	if cfg.HeaderName != "" {
		if id := strings.TrimSpace(c.GetHeader(cfg.HeaderName)); id != "" {
			return id
		}
	}
	if cfg.CookieName != "" {
		if id, err := c.Cookie(cfg.CookieName); err == nil {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

// CurrentSession returns the session resolved by Session.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok && sess != nil
}
