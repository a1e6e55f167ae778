package appctx

import (
	"encoding/json"
	"errors"
	"net/http"

	"fundgate/internal/pkg/logger"
)

// Middleware 鉴权并把会话放入请求 context，失败时直接返回 401
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := p.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			status, msg := http.StatusUnauthorized, ErrUnauthenticated.Error()
			if !errors.Is(err, ErrUnauthenticated) {
				status, msg = http.StatusInternalServerError, "failed to load session"
				logger.Ctx(r.Context()).Error().Err(err).Msg("failed to load session")
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": msg})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}
