package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/beadworks/storeadmin/internal/auth"
	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/domain/user"
	"github.com/beadworks/storeadmin/internal/http/handlers"
	"github.com/beadworks/storeadmin/internal/http/middlewares"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/beadworks/storeadmin/internal/queue/producer"
	"github.com/beadworks/storeadmin/internal/repo/postgres"
	authsvc "github.com/beadworks/storeadmin/internal/service/auth"
	"github.com/beadworks/storeadmin/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Cfg     config.Config
	Log     *slog.Logger
	Pool    *pgxpool.Pool
	Prom    *observability.Prom
	Store   *storage.Store
	Enqueue *producer.Producer
}

func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Cfg

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	r.Use(otelgin.Middleware("storeadmin"))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if deps.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(deps.Pool, deps.Prom)
	categoriesRepo := postgres.NewCategoriesRepo(deps.Pool, deps.Prom)
	subcategoriesRepo := postgres.NewSubcategoriesRepo(deps.Pool, deps.Prom)
	attributesRepo := postgres.NewAttributesRepo(deps.Pool, deps.Prom)
	productsRepo := postgres.NewProductsRepo(deps.Pool, deps.Prom)

	manager := auth.NewManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	service := authsvc.NewService(usersRepo, manager)

	authHandler := handlers.NewAuthHandler(service, manager, cfg)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo, deps.Store, deps.Enqueue)
	subcategoriesHandler := handlers.NewSubcategoriesHandler(subcategoriesRepo)
	attributesHandler := handlers.NewAttributesHandler(attributesRepo)
	productsHandler := handlers.NewProductsHandler(productsRepo, deps.Store, deps.Enqueue)

	authMW := middlewares.NewAuthMiddleware(manager)

	// unauthenticated auth endpoints get an IP rate limit
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	limit := loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP)

	authGroup := r.Group("/auth", middlewares.MaxBodyBytes(1<<20))
	{
		authGroup.POST("/signup", limit, middlewares.RequireJSON(), authHandler.Signup)
		authGroup.POST("/login", limit, middlewares.RequireJSON(), authHandler.Login)
		authGroup.POST("/refresh", limit, authHandler.Refresh)
		authGroup.POST("/validate-refresh-token", limit, authHandler.ValidateRefreshToken)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/clear-tokens", authHandler.ClearTokens)
		authGroup.GET("/current-user", authMW.RequireAuth(), authHandler.CurrentUser)
	}

	// catalog management: reads and writes for staff, deletes for admins
	staff := authMW.RequireRoles(user.RoleAdmin, user.RoleSubAdmin)
	adminOnly := authMW.RequireRoles(user.RoleAdmin)

	api := r.Group("/", authMW.RequireAuth())
	{
		categories := api.Group("/categories", staff)
		{
			categories.POST("", middlewares.RequireJSON(), categoriesHandler.CreateCategory)
			categories.GET("", categoriesHandler.ListCategories)
			categories.GET("/:id", categoriesHandler.GetCategoryByID)
			categories.PUT("/:id", middlewares.RequireJSON(), categoriesHandler.UpdateCategory)
			categories.POST("/:id/image", categoriesHandler.UploadImage)
			categories.DELETE("/:id/image", categoriesHandler.DeleteImage)
			categories.DELETE("/:id", adminOnly, categoriesHandler.DeleteCategory)
		}

		subcategories := api.Group("/subcategories", staff)
		{
			subcategories.POST("", middlewares.RequireJSON(), subcategoriesHandler.CreateSubcategory)
			subcategories.GET("/by-category/:categoryId", subcategoriesHandler.ListByCategory)
			subcategories.GET("/:id", subcategoriesHandler.GetSubcategoryByID)
			subcategories.PUT("/:id", middlewares.RequireJSON(), subcategoriesHandler.UpdateSubcategory)
			subcategories.DELETE("/:id", adminOnly, subcategoriesHandler.DeleteSubcategory)
		}

		attributes := api.Group("/attributes", staff)
		{
			attributes.POST("", middlewares.RequireJSON(), attributesHandler.CreateAttribute)
			attributes.GET("/by-subcategory/:subcategoryId", attributesHandler.ListBySubcategory)
			attributes.GET("/:id", attributesHandler.GetAttributeByID)
			attributes.PUT("/:id", middlewares.RequireJSON(), attributesHandler.UpdateAttribute)
			attributes.DELETE("/:id", adminOnly, attributesHandler.DeleteAttribute)
		}

		products := api.Group("/products", staff)
		{
			products.POST("", middlewares.RequireJSON(), productsHandler.CreateProduct)
			products.GET("", productsHandler.ListProducts)
			products.GET("/:id", productsHandler.GetProductByID)
			products.PUT("/:id", middlewares.RequireJSON(), productsHandler.UpdateProduct)
			products.POST("/:id/images", productsHandler.UploadImage)
			products.POST("/:id/variants/:variantId/stock", middlewares.RequireJSON(), productsHandler.CorrectVariantStock)
			products.DELETE("/:id", adminOnly, productsHandler.DeleteProduct)
		}
	}

	return r
}
