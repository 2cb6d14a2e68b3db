package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/models"
)

type auditRecorder interface {
	Record(entry models.AuditEntry)
}

// Audit creates a middleware that journals the action after successful requests.
func Audit(recorder auditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}

		entry := models.AuditEntry{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			CreatedAt: start,
		}
		if sess, ok := CurrentSession(c); ok {
			entry.SessionID = sess.ID
			entry.Role = string(sess.Role)
			entry.Actor = sess.DisplayName()
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}

		entry.Details, _ = json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		recorder.Record(entry)
	}
}
