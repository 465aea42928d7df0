package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/electrokart/electrokart_api/internal/cache"
	"github.com/electrokart/electrokart_api/internal/config"
	"github.com/electrokart/electrokart_api/internal/database"
	"github.com/electrokart/electrokart_api/internal/handler"
	"github.com/electrokart/electrokart_api/internal/middleware"
	"github.com/electrokart/electrokart_api/internal/repository"
	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
	"github.com/electrokart/electrokart_api/internal/worker"
)

const (
	loginFailureLimit  = 10
	loginFailureWindow = 15 * time.Minute
)

// main is the application entrypoint for the ElectroKart storefront API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting electrokart api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, cfg.MigrationsPath, false); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	catalogCache := cache.NewCatalogCache(redisClient, cfg.Cache.CatalogTTL)

	// 4. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// 5. Initialize services
	kb := service.NewKnowledgeBase(productRepo)
	tokens := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	productSvc := service.NewProductService(productRepo, reviewRepo, orderRepo, catalogCache, kb)
	categorySvc := service.NewCategoryService(categoryRepo, catalogCache, kb)
	userSvc := service.NewUserService(userRepo, tokens)
	orderSvc := service.NewOrderService(orderRepo, productRepo)
	chatbotSvc := service.NewChatbotService(productRepo, kb, service.NewConversationStore())
	visualSvc := service.NewVisualSearchService(productRepo, kb, cfg.VisualSearch.DefaultLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The knowledge base fills in the background; chat works on an empty one.
	go func() {
		n, err := kb.Refresh(ctx)
		if err != nil {
			log.Error().Err(err).Msg("initial knowledge base load failed")
			return
		}
		log.Info().Int("products", n).Msg("knowledge base loaded")
	}()

	handlers := &Handlers{
		Health: handler.NewHealthHandler(kb, map[string]handler.HealthCheck{
			"database": db.PingContext,
			"redis":    redisClient.Ping,
		}),
		User:         handler.NewUserHandler(userSvc),
		Category:     handler.NewCategoryHandler(categorySvc),
		Product:      handler.NewProductHandler(productSvc, userSvc),
		Order:        handler.NewOrderHandler(orderSvc),
		Chatbot:      handler.NewChatbotHandler(chatbotSvc),
		VisualSearch: handler.NewVisualSearchHandler(visualSvc, cfg.VisualSearch),
	}

	jwtMw := middleware.NewJWTMiddleware(tokens)
	loginLimiter := middleware.NewFailedLoginLimiter(loginFailureLimit, loginFailureWindow)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	go worker.NewKnowledgeRefreshWorker(kb, cfg.Worker.KnowledgeRefreshInterval).Start(ctx)
	go worker.NewUploadSweeper(cfg.VisualSearch.UploadDir, cfg.Worker.UploadMaxAge, cfg.Worker.UploadSweepInterval).Start(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

type Handlers struct {
	Health       *handler.HealthHandler
	User         *handler.UserHandler
	Category     *handler.CategoryHandler
	Product      *handler.ProductHandler
	Order        *handler.OrderHandler
	Chatbot      *handler.ChatbotHandler
	VisualSearch *handler.VisualSearchHandler
}

func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.FailedLoginLimiter) {
	auth := jwtMiddleware.Handle()
	admin := middleware.AdminOnly()

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/health", handlers.Health.GetHealth)

	users := api.Group("/users")
	{
		users.POST("", handlers.User.Register)
		users.POST("/auth", loginLimiter.Handle(), handlers.User.Login)
		users.GET("/profile", auth, handlers.User.GetProfile)
		users.PUT("/profile", auth, handlers.User.UpdateProfile)
		users.GET("", auth, admin, handlers.User.ListUsers)
	}

	category := api.Group("/category")
	{
		category.GET("/categories", handlers.Category.ListCategories)
		category.GET("/:id", handlers.Category.GetCategory)
		category.POST("", auth, admin, handlers.Category.CreateCategory)
		category.PUT("/:id", auth, admin, handlers.Category.UpdateCategory)
		category.DELETE("/:id", auth, admin, handlers.Category.DeleteCategory)
	}

	products := api.Group("/products")
	{
		products.GET("", handlers.Product.GetProducts)
		products.GET("/allproducts", handlers.Product.GetAllProducts)
		products.GET("/top", handlers.Product.GetTopProducts)
		products.GET("/new", handlers.Product.GetNewProducts)
		products.GET("/search", handlers.Product.SearchProducts)
		products.POST("/filtered-products", handlers.Product.FilterProducts)
		products.GET("/:id", handlers.Product.GetProduct)
		products.GET("/:id/related", handlers.Product.GetRelatedProducts)
		products.POST("/:id/reviews", auth, handlers.Product.AddReview)
		products.POST("", auth, admin, handlers.Product.CreateProduct)
		products.PUT("/:id", auth, admin, handlers.Product.UpdateProduct)
		products.DELETE("/:id", auth, admin, handlers.Product.DeleteProduct)
	}

	orders := api.Group("/orders")
	orders.Use(auth)
	{
		orders.POST("", handlers.Order.CreateOrder)
		orders.GET("/mine", handlers.Order.GetMyOrders)
		orders.GET("/total-orders", admin, handlers.Order.CountTotalOrders)
		orders.GET("/total-sales", admin, handlers.Order.TotalSales)
		orders.GET("/:id", handlers.Order.GetOrder)
		orders.PUT("/:id/pay", handlers.Order.MarkPaid)
		orders.GET("", admin, handlers.Order.ListOrders)
		orders.PUT("/:id/deliver", admin, handlers.Order.MarkDelivered)
	}

	chatbot := api.Group("/chatbot")
	{
		chatbot.POST("/chat", handlers.Chatbot.Chat)
		chatbot.GET("/history/:userId", handlers.Chatbot.GetHistory)
		chatbot.DELETE("/history/:userId", handlers.Chatbot.ClearHistory)
		chatbot.DELETE("/history", auth, admin, handlers.Chatbot.ClearHistory)
		chatbot.GET("/suggestions", handlers.Chatbot.GetSuggestions)
	}

	visual := api.Group("/visual-search")
	{
		visual.POST("/search", handlers.VisualSearch.Search)
		visual.GET("/suggestions", handlers.VisualSearch.GetSuggestions)
		visual.POST("/update-features/:productId", handlers.VisualSearch.UpdateFeatures)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
