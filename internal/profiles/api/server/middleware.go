package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/pkg/logger"
)

type ctxKey int

const callerKey ctxKey = iota

// caller returns the authenticated user attached to the request, if any.
func caller(r *http.Request) (models.User, bool) {
	u, ok := r.Context().Value(callerKey).(models.User)

	return u, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 {
		return ""
	}

	scheme := strings.ToLower(parts[0])
	if scheme != "bearer" && scheme != "token" {
		return ""
	}

	return parts[1]
}

// authRequired rejects requests without a valid bearer token and attaches
// the resolved user to the request context.
func (s *Server) authRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			handleError(w, fmt.Errorf("authentication credentials were not provided"), http.StatusUnauthorized) //nolint:perfsprint

			return
		}

		u, err := s.authService.Identify(r.Context(), token)
		if err != nil {
			handleError(w, fmt.Errorf("authentication error: %w", err), http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, u)))
	})
}

// authOptional attaches the caller when a token is presented. Anonymous
// requests pass through, a presented but invalid token is still rejected.
func (s *Server) authOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)

			return
		}

		u, err := s.authService.Identify(r.Context(), token)
		if err != nil {
			handleError(w, fmt.Errorf("authentication error: %w", err), http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, u)))
	})
}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := httptest.NewRecorder()

			defer func() {
				latency := time.Since(start).String()

				logg.Infof("METHOD %s URI %s %s	STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					rr.Code,
					latency,
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(rr, r)

			for k, v := range rr.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(rr.Code)

			if rr.Code >= 400 && rr.Body.Len() != 0 {
				logg.Errorf("error: %s", rr.Body)
			}

			_, err := rr.Body.WriteTo(w)
			if err != nil {
				logg.Errorf("middleware write error: %s", err.Error())
			}
		})
	}
}
