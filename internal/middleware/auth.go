package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/gildedrose/internal/auth"
)

// BasicRealm is the realm announced in Basic auth challenges.
const BasicRealm = "gildedrose"

// safeMethods never change the inventory. They stay public so probes,
// dashboards and the /ws day stream need no credentials.
var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Auth returns a middleware that authenticates requests which modify the
// inventory: stocking, editing, removing items and advancing the day.
func Auth(authenticator auth.Authenticator, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresAuth(r) {
				next.ServeHTTP(w, r)
				return
			}

			info, err := authenticator.Authenticate(r)
			if err != nil {
				logger.Warn("authentication failed",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeAuthError(w, err)
				return
			}

			logger.Debug("authentication successful",
				zap.String("subject", info.Subject),
				zap.String("method", string(info.Method)),
				zap.String("path", r.URL.Path),
			)

			next.ServeHTTP(w, r.WithContext(auth.WithAuthInfo(r.Context(), info)))
		})
	}
}

func requiresAuth(r *http.Request) bool {
	return !safeMethods[r.Method]
}

type authErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeAuthError writes a 401 with a challenge matching the failure.
func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if challenge := challengeFor(err); challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(authErrorResponse{
		Code:    http.StatusUnauthorized,
		Message: err.Error(),
	})
}

func challengeFor(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return `Basic realm="` + BasicRealm + `", API-Key`
	case errors.Is(err, auth.ErrInvalidCredentials):
		return `Basic realm="` + BasicRealm + `"`
	case errors.Is(err, auth.ErrInvalidAPIKey):
		return "API-Key"
	default:
		return ""
	}
}
