package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"

	"discshare/internal/logging"
)

// Recover wraps handlers with panic recovery to keep the server alive.
func Recover(log *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic recovered",
						logging.Any("panic", err),
						logging.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLog logs each request at debug level.
func RequestLog(log *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debug("request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("remote", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}
}
