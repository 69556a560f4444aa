package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	_ "github.com/vendhub/vending-machine/docs"
	"github.com/vendhub/vending-machine/internal/api/handler"
	"github.com/vendhub/vending-machine/internal/api/middleware"
	"github.com/vendhub/vending-machine/internal/core/domain"
	"github.com/vendhub/vending-machine/internal/core/ports"
	"github.com/vendhub/vending-machine/internal/core/service"
	"github.com/vendhub/vending-machine/internal/infrastructure/db/mongo"
	redisstore "github.com/vendhub/vending-machine/internal/infrastructure/db/redis"
	"github.com/vendhub/vending-machine/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The event publisher is started by the caller; nil disables event fan-out.
func NewRouter(
	cfg *config.Config,
	client *mongodriver.Client,
	db *mongodriver.Database,
	rdb *redis.Client,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("vending"))

	// --- Repositories ---
	userRepo := mongo.NewUserRepository(db)
	productRepo := mongo.NewProductRepository(db)
	eventRepo := mongo.NewProductEventRepository(db)
	uow := mongo.NewUnitOfWork(client)

	// --- Services ---
	calculator := service.NewChangeCalculator()
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, publisher, log)
	productService := service.NewProductService(productRepo, userRepo, eventRepo, uow, publisher, log)
	eventService := service.NewProductEventService(eventRepo)
	vendingService := service.NewVendingService(userRepo, productRepo, eventRepo, calculator, uow, publisher, log)
	idempotencyService := service.NewIdempotencyService(
		redisstore.NewIdempotencyStore(rdb), cfg.IdempotencyTTL, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	eventHandler := handler.NewProductEventHandler(eventService)
	vendingHandler := handler.NewVendingHandler(vendingService)

	auth := middleware.Auth(cfg.JWTSecret)
	buyerOnly := middleware.RBAC(string(domain.RoleBuyer))
	sellerOnly := middleware.RBAC(string(domain.RoleSeller))
	idem := middleware.Idempotency(idempotencyService, log)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- User routes ---
	e.POST("/v1/users", userHandler.Create)
	e.GET("/v1/users/:id", userHandler.Get, auth)

	// --- Vending routes (buyer only) ---
	e.POST("/v1/deposit", vendingHandler.Deposit, auth, buyerOnly, idem)
	e.POST("/v1/reset", vendingHandler.Reset, auth, buyerOnly)
	e.POST("/v1/buy", vendingHandler.Buy, auth, buyerOnly, idem)

	// --- Product routes ---
	e.GET("/v1/products", productHandler.List)
	e.GET("/v1/products/:id", productHandler.Get)
	e.POST("/v1/products", productHandler.Create, auth, sellerOnly, idem)
	e.PUT("/v1/products/:id", productHandler.Update, auth, sellerOnly)
	e.DELETE("/v1/products/:id", productHandler.Delete, auth, sellerOnly)
	e.GET("/v1/products/:id/events", eventHandler.List, auth)
	e.GET("/v1/products/:id/audit", eventHandler.AuditTrail, auth)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
