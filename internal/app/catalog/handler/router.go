package handler

import (
	"net/http"

	"ecomcatalog/pkg/logger"
	"ecomcatalog/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает маршруты Catalog Service
// Чтение доступно любому аутентифицированному пользователю,
// мутации каталога требуют роль admin
func SetupRoutes(catalogHandler *CatalogHandler, authMiddleware *AuthMiddleware, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))

	// CORS для браузерного фронтенда
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	categories := router.Group("/categories")
	categories.Use(authMiddleware.Authenticate())
	{
		categories.GET("", catalogHandler.GetAllCategories) // Список категорий (кеш Redis)

		categories.POST("", authMiddleware.RequireRole("admin"), catalogHandler.CreateCategory)
		categories.DELETE("/:id", authMiddleware.RequireRole("admin"), catalogHandler.DeleteCategory)
	}

	products := router.Group("/products")
	products.Use(authMiddleware.Authenticate())
	{
		products.GET("", catalogHandler.GetAllProducts)
		products.GET("/featured", catalogHandler.GetFeaturedProducts) // Топ-5 по количеству отзывов
		products.GET("/:id", catalogHandler.GetProduct)
		products.POST("/filter", catalogHandler.FilterProducts) // Фильтры + сортировка + пагинация
		products.POST("/:id/reviews", catalogHandler.AddReview)

		products.POST("", authMiddleware.RequireRole("admin"), catalogHandler.CreateProduct)
		products.PUT("/:id", authMiddleware.RequireRole("admin"), catalogHandler.UpdateProduct)
		products.DELETE("/:id", authMiddleware.RequireRole("admin"), catalogHandler.DeleteProduct)
	}

	return router
}
