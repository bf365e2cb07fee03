package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"rentpay_portal/internal/handlers"
	authMiddleware "rentpay_portal/internal/middleware"
	"rentpay_portal/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	ctx := context.Background()

	// Initialize Firebase
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(ctx, credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis is optional; without it the dashboard cache and webhook
	// dedupe degrade gracefully.
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	} else {
		log.Println("Warning: REDIS_URL not set, caching disabled")
	}

	stripeClient := services.NewStripeService()
	emailService := services.NewEmailService()
	paymentService := services.NewPaymentService(db, stripeClient, emailService)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient)
	dashboardHandler := handlers.NewDashboardHandler(db, cache)
	tenantHandler := handlers.NewTenantHandler(db)
	propertyHandler := handlers.NewPropertyHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db, paymentService)
	billingHandler := handlers.NewBillingHandler(db, cache)
	webhookHandler := handlers.NewWebhookHandler(db, cache, stripeClient, paymentService)

	// Public routes
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/auth/config", authHandler.Config)
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)
	e.POST("/webhooks/stripe", webhookHandler.HandleStripe)

	// Authenticated routes (tenant or admin)
	protected := e.Group("")
	protected.Use(authMiddleware.RequireAuth(authClient, db))
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/payments", paymentHandler.ListPayments)
	protected.GET("/payments/:id", paymentHandler.GetPayment)
	protected.POST("/payments/:id/initiate", paymentHandler.InitiatePayment)
	protected.POST("/payments/:id/retry", paymentHandler.RetryPayment)

	// Admin routes
	admin := e.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(authClient, db))
	admin.Use(authMiddleware.RequireAdmin())

	admin.GET("/dashboard", dashboardHandler.Summary)

	admin.GET("/tenants", tenantHandler.ListTenants)
	admin.POST("/tenants", tenantHandler.StoreTenant)
	admin.GET("/tenants/:id", tenantHandler.GetTenant)
	admin.PUT("/tenants/:id", tenantHandler.UpdateTenant)
	admin.DELETE("/tenants/:id", tenantHandler.DeleteTenant)
	admin.POST("/tenants/:id/generate-payment", billingHandler.GenerateForTenant)

	admin.GET("/properties", propertyHandler.ListProperties)
	admin.POST("/properties", propertyHandler.StoreProperty)
	admin.GET("/properties/:id", propertyHandler.GetProperty)
	admin.PUT("/properties/:id", propertyHandler.UpdateProperty)
	admin.DELETE("/properties/:id", propertyHandler.DeleteProperty)

	admin.POST("/payments/sweep", billingHandler.RunSweep)
	admin.POST("/payments/:id/refunds", paymentHandler.StoreRefund)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
