package http

import (
	"byte_battle/internal/config"
	"byte_battle/internal/http/handlers"
	"byte_battle/internal/http/middleware"
	"byte_battle/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs from main.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Hub     *ws.Hub
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, d Deps) {
	r.Use(middleware.RequestLogger(), middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	{
		v1.GET("/battles/:code", d.Handler.GetBattle)
		v1.GET("/me", middleware.JWT(), d.Handler.Me)
		v1.GET("/me/xp", middleware.JWT(), d.Handler.MyXP)
	}

	r.GET("/ws",
		middleware.WSAuth(),
		middleware.ConnectRateLimit(cfg.WSConnectLimit, cfg.WSConnectWindow),
		d.Handler.WS(d.Hub),
	)
}
