package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/finpanel/pkg/logger"
)

// maxCapturedBody caps how much of an error response is kept for logging
const maxCapturedBody = 4 << 10

// errCapture keeps the start of error response bodies so the access log can
// show the message.
type errCapture struct {
	chimiddleware.WrapResponseWriter
	buf bytes.Buffer
}

func (e *errCapture) Write(b []byte) (int, error) {
	if e.Status() >= 400 && e.buf.Len() < maxCapturedBody {
		rest := maxCapturedBody - e.buf.Len()
		if len(b) < rest {
			rest = len(b)
		}
		e.buf.Write(b[:rest])
	}
	return e.WrapResponseWriter.Write(b)
}

// extractErrorMessage pulls the "error" field out of a JSON body
func extractErrorMessage(body []byte) string {
	var obj struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &obj) == nil && obj.Error != "" {
		return obj.Error
	}
	return ""
}

// Logger logs one line per request and copies chi's request id into the
// context under logger.RequestIDKey
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ec := &errCapture{WrapResponseWriter: chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)}
			start := time.Now()

			reqID := chimiddleware.GetReqID(r.Context())
			if reqID != "" {
				r = r.WithContext(context.WithValue(r.Context(), logger.RequestIDKey, reqID))
			}

			defer func() {
				status := ec.Status()
				if status == 0 {
					status = http.StatusOK
				}
				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"status", status,
					"bytes", ec.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
				}
				if reqID != "" {
					attrs = append(attrs, "request_id", reqID)
				}
				if status >= 400 {
					if msg := extractErrorMessage(ec.buf.Bytes()); msg != "" {
						attrs = append(attrs, "error", msg)
					}
				}

				switch {
				case status >= 500:
					log.Error("HTTP request", attrs...)
				case status >= 400:
					log.Warn("HTTP request", attrs...)
				default:
					log.Info("HTTP request", attrs...)
				}
			}()

			next.ServeHTTP(ec, r)
		}
		return http.HandlerFunc(fn)
	}
}
