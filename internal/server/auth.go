package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/me/sheetsync/pkg/model"
)

// APIKeyHeader carries the shared API key.
const APIKeyHeader = "X-API-Key"

// apiKeyMiddleware rejects requests whose X-API-Key does not match key.
func apiKeyMiddleware(key string, logger *slog.Logger) func(http.Handler) http.Handler {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				logger.Warn("unauthorized access attempt",
					"path", r.URL.Path,
					"api_key_provided", got != "",
					"key_id", keyID(got),
					"request_id", RequestIDFromContext(r.Context()),
				)
				respondError(w, RequestIDFromContext(r.Context()), http.StatusUnauthorized, &model.APIError{
					Code:    model.ErrUnauthorized,
					Message: "Invalid API Key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// keyID returns a short hash of key for logging, never the key itself.
func keyID(key string) string {
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}
