package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrimarket/internal/config"
	"agrimarket/internal/database"
	"agrimarket/internal/handlers"
	"agrimarket/internal/middleware"
	"agrimarket/internal/services"
	"agrimarket/pkg/kafka"
	"agrimarket/pkg/metrics"
	"agrimarket/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(cfg.GommonLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Errorf("Error closing store: %v", err)
		}
	}()

	// --- Notifications ---
	notifier, closeNotifier, err := newNotifier(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s notifier: %v", cfg.NotifierDriver, err)
	}
	defer closeNotifier()

	var reg *prometheus.Registry
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	app, err := newApp(ctx, cfg, store, notifier, reg)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	// --- Start HTTP Server ---
	go func() {
		log.Infof("Starting server on %s (store=%s, notifier=%s)", cfg.AppPort, store.Driver, cfg.NotifierDriver)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorf("Error during Fiber shutdown: %v", err)
	}
	log.Info("Server gracefully stopped")
}

// newApp wires services and routes over store. A nil reg disables metrics.
func newApp(ctx context.Context, cfg *config.Config, store *database.Store, notifier services.Notifier, reg *prometheus.Registry) (*fiber.App, error) {
	var orderMetrics *metrics.OrderMetrics
	if reg != nil {
		orderMetrics = metrics.NewOrderMetrics(reg)
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(store.Users, cfg.JWTSecret, cfg.JWTTTL)
	productService := services.NewProductService(store.Products)
	cartService := services.NewCartService(store.Carts, store.Products)
	orderService := services.NewOrderService(store.Orders, store.Carts, store.Products, store.Users, notifier, services.OrderOptions{
		ClearCartOnPlace: cfg.ClearCartOnPlace,
		Metrics:          orderMetrics,
	})
	workflow := services.NewOrderWorkflow(store.Orders, notifier, orderMetrics)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := authService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, err
		}
	}

	// --- Initialize Fiber App ---
	app := fiber.New()
	app.Use(logger.New())
	if reg != nil {
		app.Use(metrics.NewServerMetrics(reg).Middleware())
		app.Get("/metrics", metrics.Handler(reg))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"store":    store.Driver,
			"notifier": cfg.NotifierDriver,
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewProductHandler(productService).RegisterRoutes(protectedRoutes)
	handlers.NewCartHandler(cartService).RegisterRoutes(protectedRoutes)
	handlers.NewOrderHandler(orderService, workflow).RegisterRoutes(protectedRoutes)
	return app, nil
}

// newNotifier returns the configured notifier and a func releasing its
// broker connection.
func newNotifier(ctx context.Context, cfg *config.Config) (services.Notifier, func(), error) {
	switch cfg.NotifierDriver {
	case config.NotifierRabbitMQ:
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			return nil, nil, err
		}
		if err := mqClient.ConsumeOrderEvents(ctx, logOrderEvent); err != nil {
			log.Warnf("Order event consumer not started: %v", err)
		}
		return services.NewBrokerNotifier(mqClient), func() {
			if err := mqClient.Close(); err != nil {
				log.Errorf("Error closing RabbitMQ client: %v", err)
			}
		}, nil
	case config.NotifierKafka:
		client := kafka.NewClient(cfg.KafkaBrokers)
		if !client.Enabled() {
			return nil, nil, fmt.Errorf("KAFKA_BROKERS is required for the kafka notifier")
		}
		publisher := kafka.NewPublisher(client.NewWriter(cfg.KafkaTopic))
		return services.NewBrokerNotifier(publisher), func() {
			if err := publisher.Close(); err != nil {
				log.Errorf("Error closing Kafka writer: %v", err)
			}
		}, nil
	default:
		return services.LogNotifier{}, func() {}, nil
	}
}

func logOrderEvent(msg amqp.Delivery) error {
	log.Infof("Received %s event for order %s: %s", msg.RoutingKey, msg.CorrelationId, string(msg.Body))
	return nil
}
