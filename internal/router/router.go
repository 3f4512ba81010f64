package router

import (
	"time"

	"nelaglow/internal/config"
	"nelaglow/internal/handler"
	"nelaglow/internal/middleware"
	"nelaglow/internal/repository"
	"nelaglow/internal/service"
	"nelaglow/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	clientRepo := repository.NewClientRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	productSvc := service.NewProductService(productRepo)
	clientSvc := service.NewClientService(clientRepo)
	stockSvc := service.NewStockService(productRepo, movementRepo, dispatcher)
	orderSvc := service.NewOrderService(orderRepo, clientRepo, productRepo, stockSvc, dispatcher)
	paymentSvc := service.NewPaymentService(orderRepo)
	reportSvc := service.NewReportService(reportRepo, rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	ordersH := handler.NewOrdersHandler(orderSvc, paymentSvc)
	inventoryH := handler.NewInventoryHandler(stockSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, supervisor, admin — declared per-endpoint
		anyStaff := middleware.RequireRole("vendedor", "supervisor", "admin")
		supervisors := middleware.RequireRole("supervisor", "admin")
		admins := middleware.RequireRole("admin")

		// Pedidos — the core workflow; every seller can operate it
		v1.POST("/pedidos", anyStaff, ordersH.Create)
		v1.GET("/pedidos", anyStaff, ordersH.List)
		v1.GET("/pedidos/:id", anyStaff, ordersH.Get)
		v1.POST("/pedidos/:id/items", anyStaff, ordersH.AddItem)
		v1.POST("/pedidos/:id/pagos", anyStaff, ordersH.AddPayment)
		v1.POST("/pedidos/:id/enviar", anyStaff, ordersH.MarkShipped)
		v1.POST("/pedidos/:id/entregar", anyStaff, ordersH.MarkDelivered)
		// Cancellation restores stock — supervisors up
		v1.DELETE("/pedidos/:id", supervisors, ordersH.Cancel)
		// Historical backfill bypasses the stock ledger — supervisors up
		v1.POST("/pedidos/importar", supervisors, ordersH.ImportHistorical)

		// Catalogo
		v1.GET("/productos", anyStaff, productsH.List)
		v1.GET("/productos/:id", anyStaff, productsH.Get)
		prods := v1.Group("/productos", supervisors)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivar", productsH.Reactivate)
		}

		// Clientes
		v1.GET("/clientes", anyStaff, clientsH.List)
		v1.GET("/clientes/:id", anyStaff, clientsH.Get)
		v1.POST("/clientes", anyStaff, clientsH.Create)
		v1.PUT("/clientes/:id", anyStaff, clientsH.Update)

		// Inventario — stock only ever moves through these plus the order flow
		inv := v1.Group("/inventario", supervisors)
		{
			inv.POST("/ingresos", inventoryH.RegisterEntry)
			inv.POST("/ajustes", inventoryH.Adjust)
		}
		v1.GET("/inventario/movimientos", anyStaff, inventoryH.ListMovements)

		// Reportes
		rep := v1.Group("/reportes", supervisors)
		{
			rep.GET("/finanzas", reportsH.FinanceStats)
			rep.GET("/cierre-diario", reportsH.DailyClose)
			rep.GET("/pagos-pendientes", reportsH.PendingPayments)
			rep.GET("/top-productos", reportsH.TopProducts)
			rep.GET("/reposicion", reportsH.Restock)
		}

		// Usuarios — admin only
		users := v1.Group("/usuarios", admins)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
