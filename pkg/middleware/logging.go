package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/softdesk/softdesk-api/pkg/auth"
)

// RequestLogger returns middleware that writes one access-log entry per
// request. Every resource in this API belongs to somebody, so the entry
// names the authenticated account whenever the auth layer resolved one.
// The level follows the outcome: Debug for success, Warn for client
// errors, Error for server errors. Pass nil logger to disable logging.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Plant the identity slot before the auth layer runs and
			// capture the status code on the way out.
			ctx, identity := auth.WithRequestIdentity(r.Context())
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			if identity.Resolved() {
				fields = append(fields,
					zap.String("user", identity.Username),
					zap.String("user_id", identity.UserID.String()))
			}
			logger.Log(levelForStatus(recorder.status), "HTTP request", fields...)
		})
	}
}

// levelForStatus maps a response status to the log level for its entry.
func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.DebugLevel
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}
