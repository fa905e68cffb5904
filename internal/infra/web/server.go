package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-media-publisher/internal/usecase"
)

// Server exposes the operational API used to inspect and manage the
// pipeline without going through the Telegram bot.
type Server struct {
	opsUC  usecase.OpsUseCase
	apiKey string
	auth   *AuthManager
	log    *zerolog.Logger
}

func NewServer(opsUC usecase.OpsUseCase, apiKey string, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{
		opsUC:  opsUC,
		apiKey: apiKey,
		auth:   auth,
		log:    logger,
	}
}

// Router builds the full route tree, including the unauthenticated
// health and metrics endpoints.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", s.loginHandler())
		r.Delete("/session", s.logoutHandler())

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/queue", s.queueStatusHandler())
			r.Delete("/queue", s.queueClearHandler())
			r.Get("/deliveries", s.deliveriesHandler())
		})
	})

	return r
}

// authMiddleware accepts a minted session JWT, via cookie or bearer header.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			s.log.Error().Msg("auth manager is not configured")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
