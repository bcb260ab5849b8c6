package router

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/application/attachment"
	"github.com/rst/farmcontrol/internal/infrastructure/config"
	"github.com/rst/farmcontrol/internal/infrastructure/logger"
	"github.com/rst/farmcontrol/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// uploadOverhead covers multipart framing around the invoice file
const uploadOverhead = 1 << 20

// EngineConfig describes the HTTP stack
type EngineConfig struct {
	Logger     *zap.Logger
	HTTP       config.HTTPConfig
	Production bool
	// Verifier enables bearer authentication; nil serves the default farm
	// and honors X-Tenant-ID
	Verifier         middleware.TokenVerifier
	ServiceName      string
	TracingEnabled   bool
	Meter            metric.Meter
	ProfilingEnabled bool
	Handlers         Handlers
}

// NewEngine builds the gin engine with the middleware chain and all routes.
//
// Order: request id, recovery, access log, security headers, CORS, body
// limit, tracing; then on /api/v1: auth, tenant, span attributes, metrics,
// profiling labels.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	apiPrefix := "/api/v1"
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins, cfg.Production),
		middleware.BodyLimitWithOverrides(cfg.HTTP.MaxBodySize, map[string]int64{
			apiPrefix + "/attachments/invoices": attachment.MaxInvoiceBytes + uploadOverhead,
		}),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
	)

	engine.GET("/health", cfg.Handlers.System.Health)

	public := []string{apiPrefix + "/system/ping", apiPrefix + "/system/info"}
	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.SkipPaths = public

	r := NewRouter(engine, WithAPIVersion("v1"))
	if cfg.Verifier != nil {
		r.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			Verifier:  cfg.Verifier,
			SkipPaths: public,
			Logger:    log,
		}))
		tenantCfg.HeaderEnabled = false
		tenantCfg.Fallback = uuid.Nil
	}
	r.Use(
		middleware.Tenant(tenantCfg),
		middleware.SpanAttributes(),
		middleware.HTTPMetrics(cfg.Meter),
		middleware.Profiling(cfg.ProfilingEnabled),
	)
	r.Register(DomainGroups(cfg.Handlers)...)
	r.Setup()

	return engine
}
