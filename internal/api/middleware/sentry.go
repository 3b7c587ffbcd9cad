package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// SentryMiddleware runs each request inside a Sentry transaction tagged with
// the request and session IDs. Without an initialized client the transaction
// is dropped on Finish and the handler runs unchanged.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		options := []sentry.SpanOption{
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
		}
		if trace := r.Header.Get("sentry-trace"); trace != "" {
			options = append(options, sentry.ContinueFromHeaders(trace, r.Header.Get("baggage")))
		}

		tx := sentry.StartTransaction(r.Context(), r.Method+" "+r.URL.Path, options...)
		defer tx.Finish()

		r = r.WithContext(sentry.SetHubOnContext(tx.Context(), hub))
		hub.Scope().SetContext("request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"query":       r.URL.RawQuery,
			"remote_addr": clientIP(r),
		})
		if requestID := GetRequestID(r.Context()); requestID != "" {
			hub.Scope().SetTag("request_id", requestID)
			tx.SetTag("request_id", requestID)
		}

		defer func() {
			if err := recover(); err != nil {
				tx.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), err)
				panic(err)
			}
		}()

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		tx.Status = httpStatusToSpanStatus(status)
		tx.SetData("http.response.status_code", status)

		// Set by the router once the handler chain has run.
		if sessionID := w.Header().Get("X-Session-ID"); sessionID != "" {
			hub.Scope().SetTag("session_id", sessionID)
			tx.SetTag("session_id", sessionID)
		}

		// Upstream failures are already captured by the service span.
		if status >= 500 && status != http.StatusBadGateway {
			hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)))
		}
	})
}

func httpStatusToSpanStatus(status int) sentry.SpanStatus {
	switch {
	case status >= 200 && status < 400:
		return sentry.SpanStatusOK
	case status == http.StatusNotFound:
		return sentry.SpanStatusNotFound
	case status == http.StatusRequestEntityTooLarge:
		return sentry.SpanStatusResourceExhausted
	case status < 500:
		return sentry.SpanStatusInvalidArgument
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable:
		return sentry.SpanStatusUnavailable
	case status == http.StatusGatewayTimeout:
		return sentry.SpanStatusDeadlineExceeded
	default:
		return sentry.SpanStatusInternalError
	}
}
