package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediassist/patient-api/internal/middleware"
	"github.com/mediassist/patient-api/pkg/metrics"
)

// Handler registers a set of routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RequestTimeout time.Duration
	RateLimit      middleware.RateLimiterConfig
	RateLimitOn    bool
	CORS           middleware.CORSConfig
	Metrics        *metrics.Metrics
}

// Router assembles the middleware chain and route groups.
type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware

	healthH Handler
	authH   Handler

	protected []Handler
}

func NewRouter(auth *middleware.AuthMiddleware, healthH, authH Handler, protected []Handler, cfg Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorLogger(),
	)
	if cfg.Metrics != nil {
		engine.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	engine.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimitOn {
		engine.Use(middleware.NewRateLimiter(cfg.RateLimit).RateLimit())
	}

	return &Router{
		engine:    engine,
		auth:      auth,
		healthH:   healthH,
		authH:     authH,
		protected: protected,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.healthH.RegisterRoutes(api)
	r.authH.RegisterRoutes(api)

	authed := api.Group("", r.auth.Authenticate())
	for _, h := range r.protected {
		h.RegisterRoutes(authed)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
