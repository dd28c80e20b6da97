package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/longscribe/internal/api/handlers"
	"github.com/nikhilbhutani/longscribe/internal/api/middleware"
	"github.com/nikhilbhutani/longscribe/internal/auth"
	"github.com/nikhilbhutani/longscribe/internal/config"
	"github.com/nikhilbhutani/longscribe/internal/jobs"
	"github.com/nikhilbhutani/longscribe/internal/queue"
	"github.com/nikhilbhutani/longscribe/internal/usage"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	svc   handlers.Transcriber
	auth  *auth.Middleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, svc handlers.Transcriber) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		svc:   svc,
		auth:  auth.NewMiddleware(cfg.Auth),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}, rt.cfg.Auth.APIKeyHeader))

	rl := middleware.NewRateLimiter(10, 20)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	store := jobs.NewStore(rt.redis, 0)
	queueClient := queue.NewClient(rt.cfg.Redis)
	recorder := usage.NewRecorder(rt.db)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.auth.Authenticate)

		transcriptionH := handlers.NewTranscriptionHandler(rt.svc, store, queueClient)
		r.Route("/transcriptions", func(r chi.Router) {
			r.Post("/", transcriptionH.Submit)
			r.Get("/{id}", transcriptionH.Get)
			r.Post("/sync", transcriptionH.Sync)
		})

		adminH := handlers.NewAdminHandler(recorder)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/usage", adminH.Usage)
		})
	})

	return r
}
