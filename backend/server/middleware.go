package server

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
)

const requestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestID returns the id assigned to the request carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware keeps a caller supplied X-Request-ID or assigns a fresh one, and
// echoes it on the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoveryMiddleware is a middleware function that recovers from panics and provides a generic error message to the client.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic_recovered",
					"request_id", RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", err,
					"stack", string(debug.Stack()),
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

var corsMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

// openCORS allows every origin, method and header, with credentials. The origin is echoed
// rather than answered with "*", which browsers refuse alongside credentials. A preflight's
// requested headers are allowed as asked.
func openCORS(next http.Handler) http.Handler {
	base := []handlers.CORSOption{
		handlers.AllowedOriginValidator(func(string) bool { return true }),
		handlers.AllowedMethods(corsMethods),
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization", requestIDHeader}),
		handlers.AllowCredentials(),
	}
	fixed := handlers.CORS(base...)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		requested := r.Header.Get("Access-Control-Request-Headers")
		if r.Method != http.MethodOptions || strings.TrimSpace(requested) == "" {
			fixed.ServeHTTP(w, r)
			return
		}
		opts := append(base[:len(base):len(base)], handlers.AllowedHeaders(strings.Split(requested, ",")))
		handlers.CORS(opts...)(next).ServeHTTP(w, r)
	})
}
