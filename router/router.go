package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/senpow/italy-restaurant-booking/config"
	"github.com/senpow/italy-restaurant-booking/controllers"
	"github.com/senpow/italy-restaurant-booking/events"
	"github.com/senpow/italy-restaurant-booking/middlewares"
	"github.com/senpow/italy-restaurant-booking/services"
	"github.com/senpow/italy-restaurant-booking/utils"
)

// Dependencies are the shared components the routes are wired to.
type Dependencies struct {
	Config  *config.Config
	Service *booking.Service
	Reports *services.ReportService
	Hub     *events.Hub
	JWT     *utils.JWTManager
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.LoggerMiddleware())

	cfg := deps.Config

	voiceCtrl := controllers.NewVoiceController(deps.Service)
	reservationCtrl := controllers.NewReservationController(deps.Service)
	adminCtrl := controllers.NewAdminController(deps.Service)
	reportCtrl := controllers.NewReportController(deps.Service, deps.Reports)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      VOICE AGENT API
	// ----------------------------------------------------------------
	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	voice := r.Group("/",
		middlewares.CORSMiddlewares("*"),
		limiter.RateLimit(),
		middlewares.APIKeyMiddleware(cfg.VoiceAPIKey, cfg.VoiceAPIKeyHash),
	)
	{
		voice.OPTIONS("/checkAvailability", noContent)
		voice.OPTIONS("/createReservation", noContent)
		voice.POST("/checkAvailability", voiceCtrl.CheckAvailability)
		voice.POST("/createReservation", voiceCtrl.CreateReservation)
	}

	auth := middlewares.AuthMiddleware(deps.JWT, cfg.IsAdminEmail)

	// ----------------------------------------------------------------
	//                      GUEST API
	// ----------------------------------------------------------------
	api := r.Group("/api", middlewares.CORSMiddlewares(cfg.CORSOrigin), auth)
	{
		api.OPTIONS("/*path", noContent)
		api.GET("/slots", reservationCtrl.GetSlots)
		api.GET("/tables", reservationCtrl.GetTables)
		api.POST("/reservations", reservationCtrl.CreateReservation)
		api.GET("/reservations", reservationCtrl.GetMyReservations)
		api.POST("/reservations/:id/cancel", reservationCtrl.CancelMyReservation)
	}

	// ----------------------------------------------------------------
	//                      ADMIN
	// ----------------------------------------------------------------
	admin := r.Group("/admin", middlewares.CORSMiddlewares(cfg.CORSOrigin), auth, middlewares.AdminOnly())
	{
		admin.OPTIONS("/*path", noContent)
		admin.GET("/reservations", adminCtrl.GetReservations)
		admin.PATCH("/reservations/:id", adminCtrl.UpdateReservation)
		admin.POST("/reservations/:id/cancel", adminCtrl.CancelReservation)
		admin.DELETE("/reservations/:id", adminCtrl.DeleteReservation)

		admin.GET("/reports/day.pdf", reportCtrl.DaySheet)
		admin.GET("/reports/occupancy.png", reportCtrl.OccupancyChart)

		admin.GET("/ws", controllers.LiveFeedHandler(deps.Hub))
	}

	return r
}
