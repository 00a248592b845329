package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/letterdesk/backend/internal/infrastructure/auth"
	"github.com/letterdesk/backend/internal/infrastructure/config"
	"github.com/letterdesk/backend/internal/infrastructure/logger"
	"github.com/letterdesk/backend/internal/interfaces/http/handler"
	"github.com/letterdesk/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers wired into the engine.
type Handlers struct {
	System    *handler.SystemHandler
	Auth      *handler.AuthHandler
	Company   *handler.CompanyHandler
	Letter    *handler.LetterHandler
	Access    *handler.AccessHandler
	Directory *handler.DirectoryHandler
}

// BuildEngine assembles the gin engine with the full middleware chain
// and all route groups. The dev token endpoint is only registered
// outside production.
func BuildEngine(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, h Handlers) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg)))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	// Unauthenticated probes.
	engine.GET("/health", h.System.Health)
	engine.GET("/healthz", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log
	jwtCfg.SkipPaths = append(jwtCfg.SkipPaths, "/api/v1/auth/token")
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))

	r := NewRouter(engine)
	r.Register(systemRoutes(h.System))
	r.Register(companyRoutes(h.Company))
	r.Register(letterRoutes(h.Letter))
	r.Register(accessRoutes(h.Access))
	r.Register(directoryRoutes(h.Directory))
	if cfg.App.Env != "production" && h.Auth != nil {
		r.Register(authRoutes(h.Auth))
	}
	r.Setup()

	return engine, nil
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return corsCfg
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.POST("/refresh", h.Refresh)
	return g
}

func authRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.POST("/token", h.Token)
	return g
}

func companyRoutes(h *handler.CompanyHandler) *DomainGroup {
	g := NewDomainGroup("companies", "/companies")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return g
}

func letterRoutes(h *handler.LetterHandler) *DomainGroup {
	g := NewDomainGroup("letters", "/letters")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/next-sequence", h.NextSequence)
	g.GET("/preview-reference", h.PreviewReference)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.GET("/:id/attachments", h.ListAttachments)
	g.POST("/:id/attachments", h.AddAttachments)
	g.GET("/:id/attachments/url", h.AttachmentURL)
	return g
}

func accessRoutes(h *handler.AccessHandler) *DomainGroup {
	g := NewDomainGroup("access", "/access")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return g
}

func directoryRoutes(h *handler.DirectoryHandler) *DomainGroup {
	g := NewDomainGroup("directory", "/directory")
	g.GET("/users", h.Search)
	return g
}
