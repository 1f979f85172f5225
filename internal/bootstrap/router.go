package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/liveqai/eventhub/internal/middleware"
	"github.com/liveqai/eventhub/pkg/auth"
)

// SetupRouter configures the HTTP router
func SetupRouter(handlers *Handlers, jwtManager *auth.JWTManager) *gin.Engine {
	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	setupRoutes(router, handlers, jwtManager)

	return router
}

// setupRoutes configures all API routes
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtManager *auth.JWTManager) {
	// API routes base group
	apiV1 := router.Group("/api/v1")

	authMiddleware := middleware.JWTAuthMiddleware(jwtManager)

	// ========== Event Module ==========
	eventRoutes := apiV1.Group("/events")
	{
		// Public: anyone with a join code can join an event
		eventRoutes.POST("/:code/join", handlers.JoinHandler.Join)

		// Public: the read-only spectator snapshot and live stream
		eventRoutes.GET("/:id/state", handlers.SpectatorHandler.GetState)
		eventRoutes.GET("/:id/stream", handlers.SpectatorHandler.StreamEvents)

		// Host-only event controls
		eventPrivate := eventRoutes.Group("")
		eventPrivate.Use(authMiddleware)
		{
			eventPrivate.PATCH("/:id/join-lock", handlers.JoinLockHandler.SetJoinLock)
			eventPrivate.POST("/:id/resume", handlers.EventResumeHandler.Resume)
		}
	}

	// ========== WebSocket ==========
	// WebSocket route (outside API versioning), authenticated by
	// participant_id+session_token query params rather than JWT, since
	// hosts and presenters are just participants with extra authority the
	// Session itself enforces.
	router.GET("/ws/event/:eventId", handlers.WSHandler.HandleConnection)
}
