package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/inviteportal/internal/config"
	"github.com/smallbiznis/inviteportal/internal/credentials"
	"github.com/smallbiznis/inviteportal/internal/invite"
	"github.com/smallbiznis/inviteportal/internal/kv"
	"github.com/smallbiznis/inviteportal/internal/observability"
	obsmiddleware "github.com/smallbiznis/inviteportal/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/inviteportal/internal/observability/metrics"
	obstracing "github.com/smallbiznis/inviteportal/internal/observability/tracing"
	"github.com/smallbiznis/inviteportal/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	kv.Module,
	credentials.Module,
	invite.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if metrics != nil {
		r.Use(metrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	if metrics != nil {
		r.GET("/metrics", metrics.Handler())
	}

	return r
}

type engineParams struct {
	fx.In

	ObsCfg  observability.Config
	Metrics *obsmetrics.Metrics `optional:"true"`
}

func registerGin(p engineParams) *gin.Engine {
	return NewEngine(p.ObsCfg, p.Metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           WithCORS(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	resolver  *invite.Resolver
	env       credentials.EnvSource
	store     credentials.OverrideStore
	runtime   *credentials.Layered
	cookies   *credentials.CookieCodec
	catalogue *config.CatalogueHolder
	limiter   *ratelimit.InviteLimiter
	metrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Log       *zap.Logger
	Resolver  *invite.Resolver
	Env       credentials.EnvSource
	Store     credentials.OverrideStore
	Runtime   *credentials.Layered
	Cookies   *credentials.CookieCodec
	Catalogue *config.CatalogueHolder
	Limiter   *ratelimit.InviteLimiter `optional:"true"`
	Metrics   *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		log:       log.Named("http"),
		resolver:  p.Resolver,
		env:       p.Env,
		store:     p.Store,
		runtime:   p.Runtime,
		cookies:   p.Cookies,
		catalogue: p.Catalogue,
		limiter:   p.Limiter,
		metrics:   p.Metrics,
	}

	svc.registerPublicRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	s.engine.GET("/health", s.Health)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/config", s.PortalConfig)
	api.POST("/invite", s.InviteRateLimit(), s.Invite)

	session := api.Group("/session")
	{
		session.POST("/credentials", s.SetSessionCredentials)
		session.DELETE("/credentials", s.ClearSessionCredentials)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AdminKeyRequired())

	admin.GET("/config", s.GetAdminConfig)
	admin.POST("/config", s.UpdateAdminConfig)
	admin.DELETE("/config", s.ClearAdminConfig)
}

// credentialSource layers the caller's cookie override, if any, above the
// runtime override and environment.
func (s *Server) credentialSource(c *gin.Context) invite.CredentialSource {
	if s.cookies != nil {
		if o, ok := s.cookies.Read(c); ok {
			return s.runtime.With(credentials.Static(o))
		}
	}
	return s.runtime
}
