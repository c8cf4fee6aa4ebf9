package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"shareit/internal/config"
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

const apiKeyHeaderDefault = "x-api-key"

var (
	errMissingAPIKey = errors.New("missing api key header")
	errInvalidAPIKey = errors.New("invalid api key")
)

// HTTPAuth checks the shared API key header when auth is enabled.
// It identifies the calling service, not the end user.
type HTTPAuth struct {
	cfg    config.APIAuthConfig
	header string
	keys   []config.APIClientKey
}

func NewHTTPAuth(cfg config.APIAuthConfig) *HTTPAuth {
	header := strings.ToLower(strings.TrimSpace(cfg.HeaderAPIKey))
	if header == "" {
		header = apiKeyHeaderDefault
	}
	return &HTTPAuth{cfg: cfg, header: header, keys: cfg.APIKeys}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		client, err := a.authenticate(r)
		if err != nil {
			metrics.IncHTTPError("UNAUTHORIZED")
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		zerolog.Ctx(r.Context()).Debug().Str("client", client.Name).Msg("api client authenticated")
		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) authenticate(r *http.Request) (config.APIClientKey, error) {
	apiKey := strings.TrimSpace(r.Header.Get(a.header))
	if apiKey == "" {
		return config.APIClientKey{}, errMissingAPIKey
	}

	// проверяем все ключи, чтобы время ответа не зависело от позиции совпадения
	var (
		found   config.APIClientKey
		matched bool
	)
	for _, k := range a.keys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(apiKey)) == 1 {
			found = k
			matched = true
		}
	}
	if !matched {
		return config.APIClientKey{}, errInvalidAPIKey
	}
	return found, nil
}
