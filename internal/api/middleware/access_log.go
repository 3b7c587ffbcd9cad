package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// AccessLog emits one structured log entry per HTTP request.
func AccessLog(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}

			entry := logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": clientIP(r),
			})
			if requestID := GetRequestID(r.Context()); requestID != "" {
				entry = entry.WithField("request_id", requestID)
			}
			if ua := r.UserAgent(); ua != "" {
				entry = entry.WithField("user_agent", ua)
			}

			switch {
			case status >= 500:
				entry.Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
