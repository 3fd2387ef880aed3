package router

import (
	"github.com/MauroRinelli/Solship/config"
	"github.com/MauroRinelli/Solship/internal/app/controller"
	"github.com/MauroRinelli/Solship/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController        *controller.AuthController
	destinationController *controller.DestinationController
	shipmentController    *controller.ShipmentController
	settingsController    *controller.SettingsController
	exportController      *controller.ExportController
	wsController          *controller.WSController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	destinationController *controller.DestinationController,
	shipmentController *controller.ShipmentController,
	settingsController *controller.SettingsController,
	exportController *controller.ExportController,
	wsController *controller.WSController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		destinationController: destinationController,
		shipmentController:    shipmentController,
		settingsController:    settingsController,
		exportController:      exportController,
		wsController:          wsController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Solship API is running",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		// Data routes identify the caller from the bearer token when
		// present and fall back to the demo workspace otherwise.
		data := api.Group("")
		data.Use(r.authMiddleware.Identify())
		{
			destinations := data.Group("/destinations")
			{
				destinations.GET("", r.destinationController.ListDestinations)
				destinations.POST("", r.destinationController.CreateDestination)
				destinations.GET("/:id", r.destinationController.GetDestination)
				destinations.PUT("/:id", r.destinationController.UpdateDestination)
				destinations.DELETE("/:id", r.destinationController.DeleteDestination)
			}

			shipments := data.Group("/shipments")
			{
				shipments.GET("", r.shipmentController.ListShipments)
				shipments.POST("", r.shipmentController.CreateShipment)
				shipments.GET("/stats", r.shipmentController.GetStats)
				shipments.GET("/:id", r.shipmentController.GetShipment)
				shipments.PUT("/:id", r.shipmentController.UpdateShipment)
				shipments.DELETE("/:id", r.shipmentController.DeleteShipment)
			}

			settings := data.Group("/settings")
			{
				settings.GET("", r.settingsController.GetSettings)
				settings.PUT("", r.settingsController.UpdateSettings)
			}

			data.GET("/export", r.exportController.ExportData)
			data.POST("/import", r.exportController.ImportData)
			data.GET("/export/:entity/csv", r.exportController.ExportCSV)
			data.GET("/export/:entity/xlsx", r.exportController.ExportXLSX)
		}
	}

	router.GET("/ws/updates", r.authMiddleware.Identify(), r.wsController.Updates)

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
