package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "beehive_monitor/docs"
	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/service"
)

const defaultCookieName = "hive_session"

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger

	cookieName   string
	cookieSecure bool
	deviceKey    string
}

// Option customises a Handler.
type Option func(*Handler)

// WithSessionCookie sets the session cookie name and Secure flag.
func WithSessionCookie(name string, secure bool) Option {
	return func(h *Handler) {
		if name != "" {
			h.cookieName = name
		}
		h.cookieSecure = secure
	}
}

// WithDeviceKey requires pushed readings to carry X-Device-Key.
func WithDeviceKey(key string) Option {
	return func(h *Handler) { h.deviceKey = key }
}

func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log, cookieName: defaultCookieName}
	for _, o := range opts {
		o(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerIngestRoutes(router)
	h.registerAPIRoutes(router)

	router.GET("/ws", h.sessionMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
		auth.POST("/sign-out", h.signOut)
	}
}

// Devices push readings with a shared key rather than a user session.
func (h *Handler) registerIngestRoutes(r *gin.Engine) {
	r.POST("/api/v1/readings", h.deviceKeyMiddleware, h.pushReading)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.sessionMiddleware)
	{
		api.GET("/data", h.getData)
		api.GET("/alerts", h.getAlerts)
		api.GET("/history", h.getHistory)
		api.GET("/history/:date", h.getHistory)
		api.GET("/extremes", h.getExtremes)
		api.GET("/report/pdf", h.getPDFReport)
		api.GET("/report/xlsx", h.getExcelReport)
		api.GET("/logs", h.getLogs)
		api.POST("/users", h.createUser)
	}
}

// requestLogger writes one debug line per request.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	if h.log == nil {
		return
	}
	h.log.Debugw("http_request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	)
}
