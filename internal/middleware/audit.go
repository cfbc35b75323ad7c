package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"procurement/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const resultKey = "audit_result"

// entityIDPaths are tried in order against the serialized handler result
var entityIDPaths = []string{"id", "request.id", "purchase_order.id", "user.id"}

type AuditRecorder interface {
	Record(ctx context.Context, entry service.AuditEntry)
}

// SetResult publishes the payload a handler responded with so the audit
// stage can derive the entity id from it.
func SetResult(c *gin.Context, result any) {
	c.Set(resultKey, result)
}

// Audit records successful calls of the wrapped route. Calls that fail,
// have no principal, or have no resolvable entity id leave no trace.
func Audit(recorder AuditRecorder, action, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := captureBody(c)

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		principal, ok := GetPrincipal(c)
		if !ok {
			return
		}

		result, _ := c.Get(resultKey)
		entityID := ResolveEntityID(c.Param("id"), result)
		if entityID == "" {
			log.WithFields(log.Fields{"action": action, "path": c.FullPath()}).Debug("audit skipped, no entity id")
			return
		}

		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}

		recorder.Record(c.Request.Context(), service.AuditEntry{
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			Actor:      principal,
			Changes:    map[string]any{"body": body, "params": params},
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			StatusCode: status,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
	}
}

// captureBody reads the request body and puts it back for the handler.
// JSON bodies are kept as raw JSON, anything else as a string.
func captureBody(c *gin.Context) any {
	if c.Request.Body == nil {
		return map[string]any{}
	}
	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}
	}
	if gjson.ValidBytes(raw) {
		return json.RawMessage(raw)
	}
	return string(raw)
}

// ResolveEntityID picks the id of the affected entity: the path id when the
// route has one, otherwise the first id found in the result payload.
func ResolveEntityID(pathID string, result any) string {
	if pathID != "" {
		return pathID
	}
	if result == nil {
		return ""
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	for _, path := range entityIDPaths {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
