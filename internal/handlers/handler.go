package handlers

import (
	"heatzone/internal/logger"
	"heatzone/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// WebSocket state stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authGuard)
	{
		h.registerProfileRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerProfileRoutes(api *gin.RouterGroup) {
	profile := api.Group("/profile")
	{
		profile.GET("/state", h.getState)
		profile.GET("/sync", h.getSyncStatus)

		// Body example: {"mode":2}
		profile.POST("/mode", h.selectMode)

		paint := profile.Group("/paint")
		{
			paint.POST("/begin", h.beginPaint)
			paint.POST("/move", h.movePaint)
			paint.POST("/end", h.endPaint)
			paint.POST("/cancel", h.cancelPaint)
		}

		profile.POST("/setpoint", h.setSetpoint)
		profile.POST("/away", h.setAwayTemp)
		profile.POST("/holiday", h.setHolidayTemp)
		profile.POST("/active", h.setActive)
		profile.POST("/save", h.saveProfile)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
