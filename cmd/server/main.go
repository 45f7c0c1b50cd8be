package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"talent-graph/internal/app"
	"talent-graph/internal/config"
	"talent-graph/internal/domain/fiber/handler"
	"talent-graph/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	srv := fiber.New(fiber.Config{
		AppName: a.Config.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	srv.Use(logger.New())
	srv.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	srv.Use(recover.New(recover.Config{
		EnableStackTrace: config.LoadAppConfig().Env != "production",
	}))
	srv.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	srv.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return config.LoadAppConfig().Env == "production"
		},
	}))
	srv.Use(healthcheck.New())
	srv.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	srv.Use(middleware.RateLimiter(50, 1*time.Minute))

	handler.NewIngestHandler(a.Ingestion).RegisterRoutes(srv)
	handler.NewSearchHandler(a.Search).RegisterRoutes(srv)

	// Prometheus scrapes its own listener so the API rate limiter never
	// throttles it.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(a.Config.MetricsPort, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Warn("metrics listener stopped", zap.Error(err))
		}
	}()

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			a.Log.Debug("goroutine count", zap.Int("count", runtime.NumGoroutine()))
		}
	}()

	go func() {
		<-ctx.Done()
		a.Log.Info("shutdown signal received")
		if err := srv.ShutdownWithTimeout(10 * time.Second); err != nil {
			a.Log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	a.Log.Info("server running", zap.String("port", a.Config.Port))
	if err := srv.Listen(a.Config.Port); err != nil {
		a.Log.Fatal("server stopped", zap.Error(err))
	}
}
