package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/session"
	"github.com/noah-isme/student-complaints/pkg/middleware/requestid"
)

// Audit actions.
const (
	AuditActionAdminLogin    = "ADMIN_LOGIN"
	AuditActionStatusUpdate  = "COMPLAINT_STATUS_UPDATE"
	AuditActionExport        = "COMPLAINT_EXPORT"
	AuditActionStudentSignup = "STUDENT_SIGNUP"
)

// Audit writes one structured audit record per request on the "audit" logger. Form values that
// identify the change are recorded; passwords never are.
func Audit(logger *zap.Logger, action string, fields ...string) gin.HandlerFunc {
	audit := logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		st := session.Load(c)
		entries := []zap.Field{
			zap.String("action", action),
			zap.String("request_id", requestid.Value(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Bool("admin", st.AdminLoggedIn),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
			zap.Duration("latency", time.Since(start)),
		}
		for _, name := range fields {
			entries = append(entries, zap.String(name, c.Request.FormValue(name)))
		}
		audit.Info("audit", entries...)
	}
}
