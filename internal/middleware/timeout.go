package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds the whole handler. The response is buffered, so routes
// that stream files use StreamingTimeout instead.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"status":false,"code":"REQUEST_TIMEOUT","message":"Request timed out"}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
