// @title         taskhub API
// @version       1.0
// @description   Task management backend: registration, login, task assignment and status tracking.
// @BasePath      /api
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Token from /auth/login or /auth/register, sent as "Bearer <JWT>".
package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	// internal imports
	apihttp "github.com/taskhub/backend/api/http"
	"github.com/taskhub/backend/api/http/handlers"
	_ "github.com/taskhub/backend/docs"
	"github.com/taskhub/backend/pkg/auth"
	"github.com/taskhub/backend/pkg/config"
	"github.com/taskhub/backend/pkg/health"
	"github.com/taskhub/backend/pkg/security/jwt"
	"github.com/taskhub/backend/pkg/task"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from defaults, optional YAML file and env/.env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("storage (%s): %v", cfg.DBDriver, err)
	}

	// Token service and password hasher are injected, never global.
	tokens := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	authUC := auth.NewAuthService(st.users, hasher, tokens)
	taskUC := task.NewService(st.tasks, st.users)

	if cfg.Admin.Enabled() {
		created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		if created {
			log.Printf("admin user %s created", cfg.Admin.Email)
		}
	}

	app := fiber.New(fiber.Config{AppName: "taskhub"})
	app.Use(recover.New())
	app.Use(logger.New())

	apihttp.Register(app, apihttp.Handlers{
		Auth:   handlers.NewAuthHandler(authUC),
		Tasks:  handlers.NewTaskHandler(taskUC),
		Health: handlers.NewHealthHandler(health.NewService(st.checker)),
	}, jwt.NewGate(tokens), taskUC)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	go func() {
		log.Printf("HTTP server listening on :%s (storage: %s)", cfg.Port, cfg.DBDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			// Drain HTTP first so no request is still using the store when it closes.
			"taskhub": func(ctx context.Context) error {
				log.Println("graceful shutdown initiated...")
				if err := app.ShutdownWithContext(ctx); err != nil {
					return err
				}
				return st.close()
			},
		},
	)

	exitCode := <-wait
	log.Printf("exited with code %d", exitCode)
	os.Exit(exitCode)
}
