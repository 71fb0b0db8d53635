package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/database"
	"github.com/vidcourse/api/handlers"
	admin_handlers "github.com/vidcourse/api/handlers/admin"
	auth_handlers "github.com/vidcourse/api/handlers/auth"
	course_handlers "github.com/vidcourse/api/handlers/course"
	notification_handlers "github.com/vidcourse/api/handlers/notification"
	subscription_handlers "github.com/vidcourse/api/handlers/subscription"
	video_handlers "github.com/vidcourse/api/handlers/video"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/utils/auth"
	"github.com/vidcourse/api/utils/cache"
	"github.com/vidcourse/api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "vidcourse-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection and playback URL caching
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and URL caching will be disabled.", err)
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	// Security middleware (request ID, logging, panic recovery, headers, rate limiting)
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	})

	// Initialize services
	subscriptionService := services.NewSubscriptionService(db)
	videoService := services.NewVideoService(db, redisCache)
	passwordService := services.NewPasswordService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(store)
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db, videoService)
	videoHandler := video_handlers.NewVideoHandler(db, videoService)
	subscriptionHandler := subscription_handlers.NewSubscriptionHandler(db, subscriptionService)
	adminHandler := admin_handlers.NewAdminHandler(db, subscriptionService, passwordService)
	notificationHandler := notification_handlers.NewNotificationHandler(db)

	// Health check
	app.Get("/health", healthHandler.Check)

	v1 := app.Group("/api/v1")

	// Public auth routes
	authRoutes := v1.Group("/auth")
	if bruteForceProtection != nil {
		authRoutes.Use(bruteForceProtection.CheckAndRecordAttempt())
	}
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)

	// Authenticated auth routes
	authRoutes.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authRoutes.Post("/logout-all", authMiddleware.Required(), authHandler.LogoutAll)
	authRoutes.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)
	authRoutes.Put("/profile", authMiddleware.Required(), authHandler.UpdateProfile)
	authRoutes.Put("/password", authMiddleware.Required(), authHandler.ChangePassword)

	// Course catalog. Browsing needs a login; content needs approval plus a
	// subscription, which the handlers check through the access gate.
	courses := v1.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Get("/:id/playlist", authMiddleware.RequireApproved(), courseHandler.GetPlaylist)
	courses.Get("/:id/videos/:video_id/play", authMiddleware.RequireApproved(), courseHandler.PlayVideo)

	// Subscription self-service
	subscriptions := v1.Group("/subscriptions", authMiddleware.Required())
	subscriptions.Get("/", subscriptionHandler.ListMySubscriptions)
	subscriptions.Post("/courses/:course_id/receipt", subscriptionHandler.RequestByReceipt)
	subscriptions.Post("/courses/:course_id/redeem", subscriptionHandler.RequestByPassword)

	// Notifications
	notifications := v1.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.ListNotifications)
	notifications.Get("/unread-count", notificationHandler.GetUnreadCount)
	notifications.Put("/:id/read", notificationHandler.MarkRead)
	notifications.Put("/read-all", notificationHandler.MarkAllRead)

	// Admin routes
	admin := v1.Group("/admin", authMiddleware.Required(), authMiddleware.RequireAdmin())

	// Course management
	admin.Post("/courses", middleware.AdminAuditLog(db, "create", "courses"), courseHandler.CreateCourse)
	admin.Put("/courses/:id", middleware.AdminAuditLog(db, "update", "courses"), courseHandler.UpdateCourse)
	admin.Delete("/courses/:id", middleware.AdminAuditLog(db, "delete", "courses"), courseHandler.DeleteCourse)
	admin.Post("/courses/:id/videos", middleware.AdminAuditLog(db, "attach_video", "courses"), courseHandler.AttachVideo)
	admin.Delete("/courses/:id/videos/:video_id", middleware.AdminAuditLog(db, "detach_video", "courses"), courseHandler.DetachVideo)
	admin.Put("/courses/:id/playlist", middleware.AdminAuditLog(db, "reorder", "courses"), courseHandler.ReorderPlaylist)

	// Video library
	admin.Get("/videos", videoHandler.ListVideos)
	admin.Get("/videos/:id", videoHandler.GetVideo)
	admin.Post("/videos", middleware.AdminAuditLog(db, "upload", "videos"), videoHandler.UploadVideo)
	admin.Post("/videos/external", middleware.AdminAuditLog(db, "create", "videos"), videoHandler.CreateExternalVideo)
	admin.Put("/videos/:id/ready", middleware.AdminAuditLog(db, "mark_ready", "videos"), videoHandler.MarkReady)
	admin.Put("/videos/:id/disable", middleware.AdminAuditLog(db, "disable", "videos"), videoHandler.DisableVideo)
	admin.Delete("/videos/:id", middleware.AdminAuditLog(db, "delete", "videos"), videoHandler.DeleteVideo)

	// Subscription management
	admin.Get("/subscriptions", adminHandler.ListSubscriptions)
	admin.Post("/subscriptions", middleware.AdminAuditLog(db, "create", "subscriptions"), adminHandler.CreateSubscription)
	admin.Put("/subscriptions/:id/approve", middleware.AdminAuditLog(db, "approve", "subscriptions"), adminHandler.ApproveSubscription)
	admin.Delete("/subscriptions/:id", middleware.AdminAuditLog(db, "reject", "subscriptions"), adminHandler.RejectSubscription)
	admin.Put("/subscriptions/:id/renew", middleware.AdminAuditLog(db, "renew", "subscriptions"), adminHandler.RenewSubscription)
	admin.Get("/subscriptions/:id/receipt", adminHandler.GetReceiptURL)

	// Course passwords
	admin.Post("/passwords", middleware.AdminAuditLog(db, "create", "course_passwords"), adminHandler.MintPassword)
	admin.Get("/passwords", adminHandler.ListPasswords)
	admin.Delete("/passwords/:id", middleware.AdminAuditLog(db, "revoke", "course_passwords"), adminHandler.RevokePassword)

	// User management
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Put("/users/:id/approve", middleware.AdminAuditLog(db, "approve", "users"), adminHandler.ApproveUser)
	admin.Put("/users/:id/revoke-approval", middleware.AdminAuditLog(db, "revoke_approval", "users"), adminHandler.RevokeUserApproval)
}
