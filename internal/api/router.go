package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/coin-ledger/internal/events/memory"
	"github.com/sheikh-saqib/coin-ledger/internal/ledger"
	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

// Authenticator resolves an API key to a participant.
type Authenticator interface {
	Lookup(apiKey string) (models.Participant, error)
}

type Options struct {
	Ledger        *ledger.Ledger
	Authenticator Authenticator
	Logger        *zap.Logger
	// Redis enables Idempotency-Key replay protection when set.
	Redis *redis.Client
	// Events serves GET /events when set.
	Events *memory.Bus
}

func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handler{ledger: opts.Ledger, events: opts.Events, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(authenticate(opts.Authenticator))

		r.Route("/transactions", func(r chi.Router) {
			if opts.Redis != nil {
				r.Use(Idempotency(opts.Redis, logger))
			}
			r.Post("/", h.submit)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.listAccounts)
			r.Post("/", h.createAccount)
			r.Get("/{id}", h.getAccount)
			r.Delete("/{id}", h.removeAccount)
		})

		if opts.Events != nil {
			r.Get("/events", h.recentEvents)
		}
	})

	return r
}
