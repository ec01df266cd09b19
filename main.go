package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"cardapio/internal/config"
	"cardapio/internal/database"
	"cardapio/internal/handlers"
	"cardapio/internal/logging"
	"cardapio/internal/middleware"
	"cardapio/internal/pricing"
	"cardapio/internal/repository"
	"cardapio/internal/service"
	"cardapio/internal/storage"
)

const menuPollInterval = 15 * time.Second

func main() {
	if err := config.Load(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(config.AppEnv.LogLevel, config.AppEnv.LogEncoding)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	db := client.Database(config.AppEnv.DBName)
	logger.Info("MongoDB connected", zap.String("db", db.Name()))

	if err := database.EnsureCatalogIndexes(db); err != nil {
		logger.Warn("catalog index warning", zap.Error(err))
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		logger.Warn("order index warning", zap.Error(err))
	}
	if n, err := database.BackfillCategoryIDs(db); err != nil {
		logger.Warn("categoryId backfill failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("categoryId backfilled", zap.Int64("documents", n))
	}

	categories := repository.NewCategoryStore(db)
	products := repository.NewProductStore(db)
	combos := repository.NewComboStore(db)
	orderStore := repository.NewOrderStore(db)

	health := map[string]handlers.Pinger{
		"mongo": handlers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}),
	}

	var (
		sessions service.SessionStore = service.NewMemorySessionStore(config.AppEnv.SessionTTL)
		numbers  service.Sequence     = repository.NewMongoCounter(db)
	)
	if config.AppEnv.RedisEnabled() {
		rdb, err := database.ConnectRedis(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword, config.AppEnv.RedisDB)
		if err != nil {
			logger.Fatal("redis connect failed", zap.Error(err))
		}
		cache := repository.NewRedisRepository(rdb)
		defer cache.Close()

		sessions = service.NewRedisSessionStore(cache, config.AppEnv.SessionTTL)
		numbers = repository.NewRedisCounter(cache)
		health["redis"] = cache
		logger.Info("Redis connected", zap.String("addr", config.AppEnv.RedisAddr))
	}

	var uploader storage.Uploader
	if config.AppEnv.CloudinaryURL != "" {
		cld, err := storage.NewCloudinary(config.AppEnv.CloudinaryURL)
		if err != nil {
			logger.Fatal("cloudinary setup failed", zap.Error(err))
		}
		uploader = cld
	} else {
		uploader = storage.NewLocal(config.AppEnv.UploadDir, "/uploads")
	}

	coupons := config.AppEnv.Coupons
	if len(coupons) == 0 {
		coupons = pricing.DefaultCoupons()
	}

	catalog := service.NewCatalog(categories, products, combos, uploader)
	orders := service.NewOrders(orderStore, numbers, catalog)
	checkout := service.NewCheckout(sessions, catalog, orderStore, numbers, pricing.NewCouponBook(coupons))

	if highest, err := orders.SeedNumbers(ctx); err != nil {
		logger.Warn("order counter seed failed", zap.Error(err))
	} else {
		logger.Info("order counter seeded", zap.Int64("highest", highest))
	}

	feed := service.NewMenuFeed(catalog)
	go feed.Run(ctx)
	stopWatch := feed.Watch(ctx, menuPollInterval, categories, products, combos)
	defer stopWatch()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))
	r.Static("/uploads", config.AppEnv.UploadDir)

	r.GET("/health", handlers.Health(health))
	r.GET("/menu", handlers.GetMenu(feed, catalog))
	r.GET("/menu/stream", handlers.StreamMenu(feed))
	r.POST("/pedidos", handlers.CreatePedido(orders))

	r.POST("/admin/login", handlers.AdminLogin(
		handlers.AdminCredentials{
			Email:        config.AppEnv.AdminEmail,
			PasswordHash: config.AppEnv.AdminPasswordHash,
		},
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
	))

	logger.Info("admin auth", zap.Bool("enabled", config.AppEnv.AuthEnabled()))
	caixa := r.Group("/caixa")
	caixa.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		caixa.POST("/sessions", handlers.OpenSession(checkout))
		caixa.GET("/sessions/:id", handlers.GetSession(checkout))
		caixa.DELETE("/sessions/:id", handlers.ClearSession(checkout))
		caixa.POST("/sessions/:id/items", handlers.AddSessionItem(checkout))
		caixa.PATCH("/sessions/:id/items/:lineId", handlers.ChangeSessionItemQuantity(checkout))
		caixa.DELETE("/sessions/:id/items/:lineId", handlers.RemoveSessionItem(checkout))
		caixa.PUT("/sessions/:id/adjustments", handlers.SetSessionAdjustments(checkout))
		caixa.POST("/sessions/:id/coupon", handlers.ApplySessionCoupon(checkout))
		caixa.POST("/sessions/:id/load/:pedidoId", handlers.LoadSessionOrder(checkout))
		caixa.POST("/sessions/:id/finalize", handlers.FinalizeSession(checkout))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		admin.GET("/categories", handlers.GetAllCategories(catalog))
		admin.POST("/categories", handlers.CreateCategory(catalog))
		admin.PUT("/categories/:id", handlers.UpdateCategory(catalog))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(catalog))

		admin.GET("/products", handlers.GetAllProducts(catalog))
		admin.POST("/products", handlers.CreateProduct(catalog))
		admin.PUT("/products/:id", handlers.UpdateProduct(catalog))
		admin.PATCH("/products/:id/active", handlers.SetProductActive(catalog))
		admin.DELETE("/products/:id", handlers.DeleteProduct(catalog))

		admin.GET("/combos", handlers.GetAllCombos(catalog))
		admin.POST("/combos", handlers.CreateCombo(catalog))
		admin.PUT("/combos/:id", handlers.UpdateCombo(catalog))
		admin.PATCH("/combos/:id/active", handlers.SetComboActive(catalog))
		admin.DELETE("/combos/:id", handlers.DeleteCombo(catalog))

		admin.GET("/pedidos", handlers.GetAllOrders(orders))
		admin.GET("/pedidos/:id", handlers.GetOrder(orders))
		admin.PATCH("/pedidos/:id/status", handlers.UpdateOrderStatus(orders))
		admin.PUT("/pedidos/:id", handlers.EditOrder(orders))
		admin.DELETE("/pedidos/:id", handlers.DeleteOrder(orders))
	}

	srv := &http.Server{
		Addr:    ":" + config.AppEnv.Port,
		Handler: r,
	}
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown failed", zap.Error(err))
	}
}
