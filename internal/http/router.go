package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/http/handlers"
	"github.com/userhub/userhub/internal/http/middlewares"
	"github.com/userhub/userhub/internal/observability"
	"github.com/userhub/userhub/internal/repo/postgres"
	"github.com/userhub/userhub/internal/service"
)

func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	}

	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	// metrics

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories and services

	usersRepo := postgres.NewUsersRepo(pool, prom)
	authSvc := service.NewAuth(usersRepo, log)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	cookies := auth.NewCookieJar(cfg.Env)

	authHandler := handlers.NewAuthHandler(authSvc, jwtManager, cookies, log)
	usersHandler := handlers.NewUsersHandler(usersRepo, log)

	requireAuth := middlewares.NewAuthMiddleware(jwtManager, cookies).RequireAuth()

	r.POST("/auth/sign-up", authHandler.SignUp)
	r.POST("/auth/sign-in", authHandler.SignIn)
	r.POST("/auth/sign-out", authHandler.SignOut)

	users := r.Group("/users", requireAuth)
	users.GET("", usersHandler.List)
	users.GET("/:id", usersHandler.GetByID)
	users.PUT("/:id", usersHandler.Update)
	users.DELETE("/:id", usersHandler.Delete)

	return r
}
