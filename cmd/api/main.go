package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/selimbouaziz/ateliera-backend/api"
	"github.com/selimbouaziz/ateliera-backend/api/controllers"
	"github.com/selimbouaziz/ateliera-backend/api/routes"
	"github.com/selimbouaziz/ateliera-backend/internal/auth"
	"github.com/selimbouaziz/ateliera-backend/internal/media"
	"github.com/selimbouaziz/ateliera-backend/internal/orders"
	"github.com/selimbouaziz/ateliera-backend/internal/products"
	"github.com/selimbouaziz/ateliera-backend/internal/promos"
	"github.com/selimbouaziz/ateliera-backend/internal/users"
	"github.com/selimbouaziz/ateliera-backend/internal/videos"
	"github.com/selimbouaziz/ateliera-backend/pkg/config"
	"github.com/selimbouaziz/ateliera-backend/pkg/db"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/metrics"
	"github.com/selimbouaziz/ateliera-backend/pkg/migrate"
	"github.com/selimbouaziz/ateliera-backend/pkg/pubsub"
	"github.com/selimbouaziz/ateliera-backend/pkg/redis"
	"github.com/selimbouaziz/ateliera-backend/pkg/sendgrid"
	"github.com/selimbouaziz/ateliera-backend/pkg/square"
	"github.com/selimbouaziz/ateliera-backend/pkg/storage/gcs"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "object storage", err)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	squareClient, err := square.NewClient(ctx, cfg.Square, logg)
	requireResource(ctx, logg, "square", err)

	sendgridClient, err := sendgrid.NewClient(cfg.Sendgrid, logg)
	requireResource(ctx, logg, "sendgrid", err)

	gormDB := dbClient.DB()

	ordersService, err := orders.NewService(orders.NewRepository(gormDB), orders.NewEventPublisher(pubsubClient), squareClient, logg)
	requireResource(ctx, logg, "orders service", err)

	promosService, err := promos.NewService(promos.NewRepository(gormDB))
	requireResource(ctx, logg, "promos service", err)

	mediaService, err := media.NewService(media.NewRepository(gormDB), gcsClient, logg)
	requireResource(ctx, logg, "media service", err)

	videosService, err := videos.NewService(videos.NewRepository(gormDB), gcsClient, logg)
	requireResource(ctx, logg, "videos service", err)

	productsService, err := products.NewService(products.NewRepository(gormDB))
	requireResource(ctx, logg, "products service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		Otp:            redisClient,
		Mailer:         sendgridClient,
		Logger:         logg,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		OtpConfig:      cfg.Otp,
		RateLimit:      cfg.AuthRateLimit,
	})
	requireResource(ctx, logg, "auth service", err)

	adminRegisterService, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "admin register service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(cfg, logg, routes.Deps{
		Pingers: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"storage":  gcsClient,
			"pubsub":   pubsubClient,
		},
		Registry:      registry,
		HTTPMetrics:   httpMetrics,
		Orders:        ordersService,
		Promos:        promosService,
		Media:         mediaService,
		Videos:        videosService,
		Products:      productsService,
		Auth:          authService,
		AdminRegister: adminRegisterService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := api.NewServer(addr, router)
	if err := api.Serve(runCtx, logg, server); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
