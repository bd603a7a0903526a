package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout bounds how long a request handler may run. A handler that
// outlives the deadline gets its context cancelled and the client
// receives a 503 in the API's JSON error envelope, unless the handler
// already started writing a response.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})

			// The guard tracks whether the handler has begun writing,
			// so the timeout path and the handler never both produce
			// a response.
			gw := &guardedWriter{ResponseWriter: w}

			go func() {
				next.ServeHTTP(gw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				gw.mu.Lock()
				defer gw.mu.Unlock()
				if !gw.wroteHeader {
					gw.wroteHeader = true
					WriteAPIError(w, http.StatusServiceUnavailable, "timeout", "Request timed out", nil)
				}
			}
		})
	}
}

// guardedWriter serializes writes between the handler goroutine and the
// timeout path, and remembers whether a header went out.
type guardedWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
}

func (gw *guardedWriter) WriteHeader(code int) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if !gw.wroteHeader {
		gw.wroteHeader = true
		gw.ResponseWriter.WriteHeader(code)
	}
}

func (gw *guardedWriter) Write(b []byte) (int, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if !gw.wroteHeader {
		gw.wroteHeader = true
		gw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return gw.ResponseWriter.Write(b)
}
