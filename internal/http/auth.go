package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/readlog/internal/domain"
	"github.com/Clark-Hu/readlog/internal/identity"
)

type userCtxKey struct{}

// authenticate resolves the bearer token into a local user and stores it on
// the request context. Every route behind it can rely on currentUser.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}

		timeout := time.Duration(s.cfg.AuthTimeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		session, err := s.identity.Verify(ctx, token)
		cancel()
		if err != nil {
			if errors.Is(err, identity.ErrInvalidSession) {
				s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
				return
			}
			s.logger.Error("verify session", zap.Error(err))
			s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Authentication service unavailable")
			return
		}

		user, err := s.repo.Users.Upsert(r.Context(), session.UserID, session.DisplayName)
		if err != nil {
			s.respondInternal(w, r, "upsert user", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
	})
}

func currentUser(r *http.Request) domain.User {
	user, _ := r.Context().Value(userCtxKey{}).(domain.User)
	return user
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
