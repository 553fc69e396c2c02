package recovery

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/middleware/requestid"
)

// InitSentry configures the global Sentry client. An empty DSN leaves reporting disabled.
// The returned flush function must be called before the process exits.
func InitSentry(dsn, environment string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// Middleware converts panics into a generic 500, logs the stack and forwards the
// panic to Sentry when a client is bound to the current hub.
func Middleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			reqID := requestid.Value(c)
			logger.Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", reqID),
				zap.ByteString("stack", debug.Stack()),
			)

			if hub := sentry.CurrentHub(); hub.Client() != nil {
				hub = hub.Clone()
				hub.Scope().SetRequest(c.Request)
				hub.Scope().SetTag("request_id", reqID)
				hub.RecoverWithContext(c.Request.Context(), rec)
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": appErrors.ErrInternal.Message,
				"code":  appErrors.ErrInternal.Code,
			})
		}()
		c.Next()
	}
}
