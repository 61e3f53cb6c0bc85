package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recoveryos/internal/metrics"
	"recoveryos/internal/service"
)

const requestIDKey = "request_id"

// RouterConfig agrupa las opciones del borde HTTP.
type RouterConfig struct {
	AllowedOrigins []string
	CSPReportOnly  bool
	MetricsEnabled bool
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	cfg RouterConfig,
	m *metrics.Metrics,
	jwtSvc *service.JWTService,
	checkinH *CheckinHandler,
	consentH *ConsentHandler,
	briefingH *BriefingHandler,
	systemH *SystemHandler,
	userH *UserHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(
		requestIDMiddleware(),
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		securityHeadersMiddleware(cfg.CSPReportOnly),
		corsMiddleware(cfg.AllowedOrigins),
		jsonContentTypeMiddleware(),
	)

	// Camino de miembros: abierto, pseudónimo. Solo el check-in pasa por
	// el rate limiter (dentro del servicio).
	r.POST("/check-in", checkinH.CheckIn)
	r.POST("/consents", consentH.PutConsent)
	r.GET("/consents/:user_id", consentH.GetConsent)

	// Operación.
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/help", systemH.Help)
	if cfg.MetricsEnabled && m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Cuentas y auth de la superficie clínica.
	r.POST("/users", userH.CreateUser)
	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	// Superficie clínica: requiere access token.
	protected := r.Group("")
	protected.Use(JWTAuthMiddleware(jwtSvc))
	protected.GET("/users", userH.ListUsers)
	protected.GET("/users/:id", userH.GetUser)
	protected.POST("/briefings/:user_id", briefingH.CreateBriefing)
	protected.GET("/audit", briefingH.ListAudit)

	return r
}

// requestIDMiddleware respeta el x-request-id entrante o genera uno, y lo
// devuelve en la respuesta para correlación.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("x-request-id")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set("x-request-id", rid)
		c.Next()
	}
}

// zapLoggerMiddleware loguea método, ruta, status y latencia. Sin cuerpos
// y sin direcciones de cliente: solo metadata.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
		)
	}
}

const strictCSP = "default-src 'none'; base-uri 'none'; object-src 'none'; " +
	"frame-ancestors 'none'; img-src 'self'; font-src 'self'; " +
	"connect-src 'self'; script-src 'self'; style-src 'self'"

// securityHeadersMiddleware fija la CSP estricta del API. En modo
// report-only la política se observa sin bloquear.
func securityHeadersMiddleware(reportOnly bool) gin.HandlerFunc {
	header := "Content-Security-Policy"
	if reportOnly {
		header = "Content-Security-Policy-Report-Only"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set(header, strictCSP)
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

// corsMiddleware habilita CORS solo para los orígenes configurados.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Set("Vary", "Origin")
				c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, x-request-id")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
