package http

import (
	"context"
	"net/http"
	"time"

	_ "github.com/DRSN-tech/cashier-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// HealthCheck проверяет доступность зависимостей для /healthz.
type HealthCheck func(ctx context.Context) error

type Router struct {
	router         *chi.Mux
	logger         logger.Logger
	requestTimeout time.Duration
}

func NewRouter(router *chi.Mux, logger logger.Logger, requestTimeout time.Duration) *Router {
	return &Router{router: router, logger: logger, requestTimeout: requestTimeout}
}

func (r *Router) Init(
	authUC usecase.AuthUC,
	categoryUC usecase.CategoryUC,
	productUC usecase.ProductUC,
	orderUC usecase.OrderUC,
	health HealthCheck,
) {
	r.router.Use(middleware.RequestID, middleware.RealIP, AccessLog(r.logger), middleware.Recoverer)
	if r.requestTimeout > 0 {
		r.router.Use(middleware.Timeout(r.requestTimeout))
	}

	r.router.Get("/healthz", healthHandler(health, r.logger))
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		authHandler := NewAuthHandler(authUC, r.logger)
		v1.Post("/login", authHandler.login)

		v1.Group(func(protected chi.Router) {
			protected.Use(AuthMiddleware(authUC, r.logger))

			registerCategoryRoutes(protected, NewCategoryHandler(categoryUC, r.logger))
			registerProductRoutes(protected, NewProductHandler(productUC, r.logger))

			orderHandler := NewOrderHandler(orderUC, r.logger)
			registerOrderRoutes(protected, "/transactions", orderHandler)
			registerOrderRoutes(protected, "/orders", orderHandler)
		})
	})
}

func registerCategoryRoutes(router chi.Router, h *CategoryHandler) {
	router.Route("/categories", func(c chi.Router) {
		c.Get("/", h.listCategories)
		c.Post("/", h.createCategory)
		c.Get("/{id}", h.getCategory)
		c.Put("/{id}", h.updateCategory)
		c.Delete("/{id}", h.deleteCategory)
	})
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Post("/", h.createProduct)
		pr.Get("/{id}", h.getProduct)
		pr.Put("/{id}", h.updateProduct)
		pr.Delete("/{id}", h.deleteProduct)
	})
}

func registerOrderRoutes(router chi.Router, prefix string, h *OrderHandler) {
	router.Route(prefix, func(o chi.Router) {
		o.Get("/", h.listOrders)
		o.Post("/", h.postOrder)
		o.Get("/{id}", h.getOrder)
		o.Delete("/{id}", h.deleteOrder)
	})
}

func healthHandler(check HealthCheck, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				log.Warnf("health check failed: %v", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
