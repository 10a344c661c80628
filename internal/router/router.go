package router

import (
	"time"

	"github.com/FelipeGerardo/centenoloyalty/internal/config"
	"github.com/FelipeGerardo/centenoloyalty/internal/handler"
	"github.com/FelipeGerardo/centenoloyalty/internal/loyalty"
	"github.com/FelipeGerardo/centenoloyalty/internal/middleware"
	"github.com/FelipeGerardo/centenoloyalty/internal/repository"
	"github.com/FelipeGerardo/centenoloyalty/internal/service"
	"github.com/FelipeGerardo/centenoloyalty/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
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
	clienteRepo := repository.NewClienteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	visitaRepo := repository.NewVisitaRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	reglas := loyalty.Reglas{
		TasaAcumulacion: cfg.TasaAcumulacion,
		ValorRedencion:  cfg.ValorRedencion,
	}
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	clienteSvc := service.NewClienteService(clienteRepo)
	ventaSvc := service.NewVentaService(clienteRepo, ventaRepo, visitaRepo, reglas, rdb, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)

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
		// Mostrador: cajero y administrador
		mostrador := middleware.RequireRole("cajero", "administrador")

		v1.POST("/clientes", mostrador, clientesH.Crear)
		v1.GET("/clientes", mostrador, clientesH.Listar)
		v1.GET("/clientes/telefono/:telefono", mostrador, clientesH.BuscarPorTelefono)
		v1.GET("/clientes/:id", mostrador, clientesH.ObtenerPorID)
		v1.PUT("/clientes/:id", mostrador, clientesH.Actualizar)
		// Borrado en cascada — solo administrador
		v1.DELETE("/clientes/:id", middleware.RequireRole("administrador"), clientesH.Eliminar)

		v1.POST("/clientes/:id/ventas", mostrador, ventasH.RegistrarVenta)
		v1.GET("/clientes/:id/ventas", mostrador, ventasH.ListarVentas)
		v1.GET("/clientes/:id/visitas", mostrador, ventasH.ListarVisitas)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
