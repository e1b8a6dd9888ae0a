package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type RouterConfig struct {
	AllowedOrigins     []string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	LoginRatePerMinute int
}

type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Cart    *CartHandler
	Orders  *OrdersHandler
	Admin   *AdminHandler
}

func NewRouter(cfg RouterConfig, h Handlers, tokens TokenParser, health ...Pinger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/health", healthHandler(health))

	authenticated := Authenticate(tokens)
	loginLimiter := NewRateLimiter(cfg.LoginRatePerMinute)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Limit).Post("/register", h.Auth.Register)
			r.With(loginLimiter.Limit).Post("/login", h.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Get("/profile", h.Auth.GetProfile)
				r.Put("/profile", h.Auth.UpdateProfile)
				r.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Catalog.ListCategories)
			r.Get("/{id}", h.Catalog.GetCategory)
			r.Get("/{id}/products", h.Catalog.CategoryProducts)
			r.Group(func(r chi.Router) {
				r.Use(authenticated, RequireAdmin)
				r.Post("/", h.Catalog.CreateCategory)
				r.Put("/{id}", h.Catalog.UpdateCategory)
				r.Delete("/{id}", h.Catalog.DeleteCategory)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Catalog.ListProducts)
			r.Get("/featured", h.Catalog.FeaturedProducts)
			r.Get("/{id}", h.Catalog.GetProduct)
			r.Group(func(r chi.Router) {
				r.Use(authenticated, RequireAdmin)
				r.Post("/", h.Catalog.CreateProduct)
				r.Put("/{id}", h.Catalog.UpdateProduct)
				r.Delete("/{id}", h.Catalog.DeleteProduct)
				r.Post("/{id}/deactivate", h.Catalog.DeactivateProduct)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Get("/count", h.Cart.CountItems)
			r.Get("/validate", h.Cart.ValidateCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{itemId}", h.Cart.UpdateQuantity)
			r.Delete("/items/{itemId}", h.Cart.RemoveItem)
			r.Post("/merge", h.Cart.MergeCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", h.Orders.ListOrders)
			r.Post("/", h.Orders.CreateOrder)
			r.Get("/{id}", h.Orders.GetOrder)
			r.Post("/{id}/cancel", h.Orders.CancelOrder)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/{id}/history", h.Orders.StatusHistory)
				r.Put("/{id}/status", h.Orders.UpdateStatus)
				r.Put("/{id}/status/force", h.Orders.ForceStatus)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticated, RequireAdmin)
			r.Get("/dashboard", h.Admin.Dashboard)
			r.Get("/users", h.Admin.ListUsers)
			r.Put("/users/{id}/toggle-status", h.Admin.ToggleUserStatus)
			r.Put("/users/{id}/role", h.Admin.ChangeRole)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Location", "X-Request-Id"},
		AllowCredentials: true,
	})

	return otelhttp.NewHandler(c.Handler(r), "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func healthHandler(deps []Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
