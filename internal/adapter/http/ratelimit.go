package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

const rateLimitWindow = time.Minute

// rateLimitByIP limits requests per client IP over a one-minute window.
// A non-positive limit returns a pass-through middleware.
func rateLimitByIP(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		limit,
		rateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

func rateLimitExceeded(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}
