// Package api serves tuition notices and finance reports over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"educenter/internal/finance"
	"educenter/internal/ledger"
	"educenter/internal/logger"
	"educenter/pkg/models"
)

// Options configures a Server.
type Options struct {
	// Overrides are laid over the ledger's center settings on every request.
	Overrides models.CenterSettings

	// RateLimit is the sustained number of requests per second. Zero disables
	// limiting.
	RateLimit float64

	// NoticeCacheTTL bounds how long a computed notice is reused. Zero
	// disables the cache.
	NoticeCacheTTL time.Duration
}

// Server answers read-only queries against the ledger. Every request reads a
// fresh snapshot from the store.
type Server struct {
	store     ledger.Store
	overrides models.CenterSettings
	notices   *finance.Service
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewServer creates a server over store.
func NewServer(store ledger.Store, opts Options) *Server {
	s := &Server{
		store:     store,
		overrides: opts.Overrides,
		notices:   finance.NewService(opts.NoticeCacheTTL),
		log:       logger.WithComponent("api"),
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit * 3)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/invoices/{invoiceID}/notice", s.handleNotice)
		r.Get("/months/{month}/notices", s.handleMonthNotices)
		r.Get("/reports/debts", s.handleDebts)
		r.Get("/reports/revenue", s.handleRevenue)
	})

	return r
}

// snapshot loads the current ledger with the configured overrides applied.
func (s *Server) snapshot(ctx context.Context) (*ledger.Snapshot, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.WithSettings(s.overrides), nil
}
