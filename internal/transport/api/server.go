// Package api is the JSON HTTP surface of the chat core.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/bokjirang/policybot/internal/service/reminder"
	"github.com/bokjirang/policybot/pkg/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const shutdownTimeout = 10 * time.Second

type ReminderRunner interface {
	RunOnce(ctx context.Context) (reminder.Report, error)
}

type Server struct {
	cfg       *config.AppConfig
	chat      *chat.Service
	reminders ReminderRunner
	srv       *http.Server
}

func NewServer(cfg *config.AppConfig, chatSvc *chat.Service, reminders ReminderRunner) *Server {
	return &Server{
		cfg:       cfg,
		chat:      chatSvc,
		reminders: reminders,
	}
}

func (s *Server) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	s.srv = &http.Server{
		Addr:         s.cfg.HTTPAddr,
		Handler:      s.Router(ctx),
		ReadTimeout:  s.cfg.HTTPReadTimeout,
		WriteTimeout: s.cfg.HTTPWriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	logger.Info().Str("addr", s.cfg.HTTPAddr).Msg("http server listening")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	// ctx is already cancelled when services shut down
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// Router builds the handler tree. It is exported for tests.
func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(*log.FromCtx(ctx)))
	r.Use(requestID)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))

	r.Get("/health", s.health)

	r.Post("/chat", s.ask)
	r.Get("/chat/sessions", s.listSessions)
	r.Get("/chat/messages", s.listMessages)
	r.Delete("/chat/sessions/{id}", s.deleteSession)

	r.With(s.internalOnly).Post("/internal/reminders/run", s.runReminders)

	return r
}

// requestID reuses an incoming X-Request-Id or generates one, and tags
// the request logger with it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimw.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(chimw.RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), chimw.RequestIDKey, id)
		logger := zerolog.Ctx(ctx).With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
	})
}
