package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/selimbouaziz/ateliera-backend/api/controllers"
	"github.com/selimbouaziz/ateliera-backend/api/middleware"
	"github.com/selimbouaziz/ateliera-backend/internal/auth"
	"github.com/selimbouaziz/ateliera-backend/internal/media"
	"github.com/selimbouaziz/ateliera-backend/internal/orders"
	"github.com/selimbouaziz/ateliera-backend/internal/products"
	"github.com/selimbouaziz/ateliera-backend/internal/promos"
	"github.com/selimbouaziz/ateliera-backend/internal/videos"
	"github.com/selimbouaziz/ateliera-backend/pkg/config"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/metrics"
)

// Deps carries everything the router mounts.
type Deps struct {
	Pingers     map[string]controllers.Pinger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Orders   orders.Service
	Promos   promos.Service
	Media    media.Service
	Videos   videos.Service
	Products products.Service
	Auth     auth.Service

	// AdminRegister backs the dev-only bootstrap route; the route is
	// skipped in production and when the service is nil.
	AdminRegister auth.AdminRegisterService
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	requireAdmin := func(r chi.Router) chi.Router {
		return r.With(middleware.Auth(cfg.JWT, logg), middleware.RequireRole("admin", logg))
	}

	maxUploadMB := cfg.Media.MaxUploadMB

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/create", controllers.CreateOrder(deps.Orders, logg))

		admin := requireAdmin(r)
		admin.Get("/", controllers.ListOrders(deps.Orders, logg))
		admin.Get("/stats/dashboard", controllers.OrderDashboardStats(deps.Orders, logg))
		admin.Get("/status/{status}", controllers.ListOrdersByStatus(deps.Orders, logg))
		admin.Get("/{id}", controllers.GetOrder(deps.Orders, logg))
		admin.Put("/{id}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
		admin.Post("/{id}/contact", controllers.AddOrderContact(deps.Orders, logg))
		admin.Post("/{id}/capture", controllers.CaptureOrderPayment(deps.Orders, logg))
	})

	r.Route("/api/promo", func(r chi.Router) {
		r.Post("/apply", controllers.ApplyPromo(deps.Promos, logg))

		admin := requireAdmin(r)
		admin.Post("/create", controllers.CreatePromo(deps.Promos, logg))
		admin.Get("/list", controllers.ListPromos(deps.Promos, logg))
	})

	r.Route("/api/videos", func(r chi.Router) {
		r.Get("/media-list", controllers.ListMedia(deps.Media, logg))
		r.Get("/list-long", controllers.ListVideos(deps.Videos, logg))

		admin := requireAdmin(r)
		admin.Post("/media", controllers.UploadMedia(deps.Media, logg, maxUploadMB))
		admin.Put("/media/{id}", controllers.UpdateMedia(deps.Media, logg, maxUploadMB))
		admin.Delete("/media/{id}", controllers.DeleteMedia(deps.Media, logg))
		admin.Post("/upload-long", controllers.UploadVideo(deps.Videos, logg, maxUploadMB))
		admin.Put("/longs/{id}", controllers.UpdateVideo(deps.Videos, logg, maxUploadMB))
		admin.Delete("/longs/{id}", controllers.DeleteVideo(deps.Videos, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))

		admin := requireAdmin(r)
		admin.Post("/attach-video", controllers.AttachVideo(deps.Products, logg))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(deps.Auth, logg))
		if !cfg.App.IsProd() && deps.AdminRegister != nil {
			r.Post("/admin-register", controllers.AdminRegister(deps.AdminRegister, logg))
		}
		r.Post("/verify-otp", controllers.VerifyOTP(deps.Auth, logg))
		r.Post("/login", controllers.Login(deps.Auth, logg))
		r.Post("/forgot-password", controllers.ForgotPassword(deps.Auth, logg))
		r.Post("/reset-password", controllers.ResetPassword(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.Me(deps.Auth, logg))
	})

	return r
}
