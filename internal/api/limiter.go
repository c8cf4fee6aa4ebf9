package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// userRateLimiter limits requests per calling user, keyed by the user id header.
// Requests without the header are not limited.
type userRateLimiter struct {
	cfg     config.APIRateLimitConfig
	backend domain.RateLimiter
	logger  *zerolog.Logger
}

func newUserRateLimiter(cfg config.APIRateLimitConfig, backend domain.RateLimiter, logger *zerolog.Logger) *userRateLimiter {
	return &userRateLimiter{cfg: cfg, backend: backend, logger: logger}
}

func (l *userRateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(models.UserIDHeader)), 10, 64)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		window := time.Duration(l.cfg.Window) * time.Second
		allowed, err := l.backend.CheckRateLimit(r.Context(), userID, l.cfg.Requests, window)
		if err != nil {
			// лимитер недоступен: пропускаем запрос
			l.logger.Error().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.IncRateLimited()
			l.logger.Warn().Int64("user_id", userID).Msg("rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *userRateLimiter) enabled() bool {
	return l.cfg.Enabled && l.backend != nil && l.cfg.Requests > 0 && l.cfg.Window > 0
}
