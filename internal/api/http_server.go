package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/metrics"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	requestIDHeader = "X-Request-Id"
	maxBodyBytes    = 1 << 20
)

// Dependencies are the services and infrastructure the HTTP layer calls into.
type Dependencies struct {
	Users       domain.UserService
	Items       domain.ItemService
	Bookings    domain.BookingService
	Requests    domain.RequestService
	RateLimiter domain.RateLimiter
	Clock       domain.Clock
	// Ready reports whether storage can serve requests. Nil means always ready.
	Ready func(ctx context.Context) error
}

type HTTPServer struct {
	cfg     config.APIConfig
	deps    Dependencies
	logger  *zerolog.Logger
	server  *http.Server
	auth    *HTTPAuth
	limiter *userRateLimiter
}

func NewHTTPServer(cfg config.APIConfig, deps Dependencies, logger *zerolog.Logger) *HTTPServer {
	if deps.Clock == nil {
		deps.Clock = domain.SystemClock{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	srv := &HTTPServer{cfg: cfg, deps: deps, logger: logger}
	srv.auth = NewHTTPAuth(cfg.Auth)
	srv.limiter = newUserRateLimiter(cfg.RateLimit, deps.RateLimiter, logger)

	api := http.NewServeMux()
	srv.routes(api)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", srv.handleHealth)
	root.HandleFunc("GET /readyz", srv.handleReady)
	root.Handle("/", srv.auth.Wrap(srv.limiter.Wrap(api)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           loggingMiddleware(logger, root),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	s.handle(mux, "POST /users", s.handleCreateUser)
	s.handle(mux, "GET /users", s.handleListUsers)
	s.handle(mux, "GET /users/{id}", s.handleGetUser)
	s.handle(mux, "PATCH /users/{id}", s.handleUpdateUser)
	s.handle(mux, "DELETE /users/{id}", s.handleDeleteUser)

	s.handle(mux, "POST /items", s.handleCreateItem)
	s.handle(mux, "GET /items", s.handleOwnerItems)
	s.handle(mux, "GET /items/search", s.handleSearchItems)
	s.handle(mux, "GET /items/{id}", s.handleGetItem)
	s.handle(mux, "PATCH /items/{id}", s.handleUpdateItem)
	s.handle(mux, "POST /items/{id}/comment", s.handleAddComment)

	s.handle(mux, "POST /bookings", s.handleCreateBooking)
	s.handle(mux, "GET /bookings", s.handleBookerBookings)
	s.handle(mux, "GET /bookings/owner", s.handleOwnerBookings)
	s.handle(mux, "GET /bookings/{id}", s.handleGetBooking)
	s.handle(mux, "PATCH /bookings/{id}", s.handleApproveBooking)

	s.handle(mux, "POST /requests", s.handleCreateRequest)
	s.handle(mux, "GET /requests", s.handleUserRequests)
	s.handle(mux, "GET /requests/all", s.handleAllRequests)
	s.handle(mux, "GET /requests/{id}", s.handleGetRequest)
}

func (s *HTTPServer) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(pattern)
		h(w, r)
	})
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	base := logger.With().Str("component", "http").Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		reqLogger := base.With().Str("request_id", requestID).Logger()
		r = r.WithContext(reqLogger.WithContext(r.Context()))

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		reqLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// validationError is a rejected request parameter. Its message goes to the client as is.
type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == domain.ErrInvalidArgument }

func badRequest(format string, args ...any) error {
	return validationError(fmt.Sprintf(format, args...))
}

var kindStatus = map[string]int{
	domain.KindNotFound:         http.StatusNotFound,
	domain.KindForbidden:        http.StatusForbidden,
	domain.KindUnavailable:      http.StatusBadRequest,
	domain.KindInvalidArgument:  http.StatusBadRequest,
	domain.KindDuplicateAddress: http.StatusConflict,
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.Kind(err)
	metrics.IncHTTPError(kind)

	status, ok := kindStatus[kind]
	if !ok {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
