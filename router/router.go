package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/table-reservation/config"
	"github.com/yeremiapane/table-reservation/controllers"
	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/middlewares"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/realtime"
	"github.com/yeremiapane/table-reservation/services"
	"gorm.io/gorm"
)

// Deps are the collaborators built in main. Only DB and Config are required.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Hub    *realtime.Hub
	// Publisher receives every event in addition to the board and the notification log.
	Publisher events.Notifier
	Locker    services.SlotLocker
	Deposits  services.DepositCalculator
	Gateway   *services.DepositGateway
}

func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	db := deps.DB

	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(cfg.GinMode == gin.ReleaseMode))
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitPerSecond, 1).RateLimit())

	hub := deps.Hub
	if hub == nil {
		hub = realtime.NewHub()
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = services.NewDepositGateway(cfg.PaymentServerKey)
	}

	// Inisialisasi service
	notificationSvc := services.NewNotificationService(db)
	notifier := events.Multi{hub, notificationSvc, deps.Publisher}
	tableStore := services.NewTableStore(db, notifier)

	opts := []services.ReservationOption{
		services.WithNotifier(notifier),
		services.WithSlotLocker(deps.Locker),
		services.WithLockWait(cfg.SlotLockWaitTimeout),
	}
	if deps.Deposits != nil {
		opts = append(opts, services.WithDepositPolicy(deps.Deposits))
	}
	reservationSvc := services.NewReservationService(db, tableStore, opts...)
	availabilitySvc := services.NewAvailabilityService(db, cfg.SeatingWindow)
	waitlistSvc := services.NewWaitlistService(db, notifier, cfg.DefaultWaitMinutes)
	reportSvc := services.NewReportService(db, tableStore)

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	tableCtrl := controllers.NewTableController(tableStore)
	reservationCtrl := controllers.NewReservationController(reservationSvc)
	availabilityCtrl := controllers.NewAvailabilityController(availabilitySvc)
	waitlistCtrl := controllers.NewWaitlistController(waitlistSvc)
	notificationCtrl := controllers.NewNotificationController(notificationSvc)
	adminCtrl := controllers.NewAdminController(reportSvc)
	paymentCtrl := controllers.NewPaymentController(db, gateway, reservationSvc)
	boardCtrl := controllers.NewBoardController(hub, cfg.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter(3*time.Second, 10))
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	r.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	r.GET("/restaurants/:restaurant_id", restaurantCtrl.GetRestaurant)
	r.GET("/restaurants/:restaurant_id/availability", availabilityCtrl.GetAvailability)

	// Callback payment gateway (tanpa JWT, diverifikasi lewat signature)
	payments := r.Group("/payments")
	payments.Use(middlewares.PaymentSecurityHeaders(), middlewares.PaymentRateLimiter(10), middlewares.LogPaymentRequest())
	{
		payments.POST("/deposit/callback", paymentCtrl.DepositCallback)
	}

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", userCtrl.GetProfile)
		api.POST("/reservations", middlewares.RequireRole(models.RoleCustomer), reservationCtrl.CreateReservation)
		api.GET("/reservations/me", reservationCtrl.MyReservations)
		api.GET("/reservations/:reservation_id", reservationCtrl.GetReservation)
		api.POST("/reservations/:reservation_id/cancel", reservationCtrl.CancelReservation)
	}

	// ----------------------------------------------------------------
	//                      STAFF / ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleStaff, models.RoleAdmin))

	adminOnly := middlewares.RequireRole(models.RoleAdmin)

	// RESTAURANT & USERS (admin)
	admin.POST("/restaurants", adminOnly, restaurantCtrl.CreateRestaurant)
	admin.GET("/users", adminOnly, userCtrl.GetAllUsers)
	admin.POST("/users", adminOnly, userCtrl.CreateStaff)

	// TABLE
	admin.GET("/tables", tableCtrl.GetAllTables)
	admin.POST("/tables", tableCtrl.CreateTable)
	admin.GET("/tables/:table_id", tableCtrl.GetTable)
	admin.PUT("/tables/:table_id", tableCtrl.UpdateTable)
	admin.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

	// RESERVATIONS
	admin.GET("/reservations", reservationCtrl.ListReservations)
	admin.GET("/reservations/:reservation_id", reservationCtrl.GetReservation)
	admin.PATCH("/reservations/:reservation_id/status", reservationCtrl.UpdateReservationStatus)
	admin.POST("/reservations/:reservation_id/arrive", reservationCtrl.MarkArrived)
	admin.POST("/reservations/:reservation_id/cancel", reservationCtrl.CancelReservation)

	// WAITLIST
	admin.GET("/waitlist", waitlistCtrl.GetWaitlist)
	admin.POST("/waitlist", waitlistCtrl.AddToWaitlist)
	admin.PATCH("/waitlist/:entry_id/status", waitlistCtrl.UpdateWaitlistStatus)
	admin.DELETE("/waitlist/:entry_id", waitlistCtrl.RemoveFromWaitlist)

	// NOTIFICATIONS
	admin.GET("/notifications", notificationCtrl.GetAllNotifications)
	admin.PATCH("/notifications/:notification_id/read", notificationCtrl.MarkAsRead)

	// PAYMENTS & REPORTS
	admin.GET("/payments", paymentCtrl.GetAllPayments)
	admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	admin.GET("/reports/reservations", adminCtrl.ExportReservations)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/board", boardCtrl.BoardHandler)
	}

	return r
}
