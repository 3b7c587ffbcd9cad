package middleware

import (
	"fmt"
	"net/http"

	"github.com/cloo-solutions/lunchpick/internal/api"
)

// CodeBodyTooLarge is the error code sent with 413 responses.
const CodeBodyTooLarge = "BODY_TOO_LARGE"

// MaxBodyBytes rejects requests whose declared length exceeds limit and caps
// the body reader for chunked uploads. Bodiless methods pass straight through.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	message := fmt.Sprintf("request body exceeds %d bytes", limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case limit <= 0, r.Body == nil, r.Body == http.NoBody:
			case r.ContentLength > limit:
				api.ErrorWithCode(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, message)
				return
			default:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
