package middleware

import (
	"log"
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging recovers from handler panics and writes one access-log line per
// request with method, path, status, duration, and request id.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			reqID, _ := GetRequestID(r.Context())
			if p := recover(); p != nil {
				log.Printf("http: panic serving %s %s (request %s): %v", r.Method, r.URL.Path, reqID, p)
				http.Error(rec, "Internal server error", http.StatusInternalServerError)
				return
			}
			log.Printf("http: %s %s -> %d in %s (request %s)",
				r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond), reqID)
		}()

		next.ServeHTTP(rec, r)
	})
}
