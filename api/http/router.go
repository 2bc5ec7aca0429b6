package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskhub/backend/api/http/handlers"
	"github.com/taskhub/backend/pkg/security/jwt"
	"github.com/taskhub/backend/pkg/task"
)

// Handlers groups everything Register needs to mount the API.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Tasks  *handlers.TaskHandler
	Health *handlers.HealthHandler
}

// Register wires all HTTP routes onto given Fiber app.
// Every protected route declares its policy here; the gate evaluates it before the handler runs.
func Register(app *fiber.App, h Handlers, gate *jwt.Gate, ownership task.UseCase) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", h.Health.Health)
	api.Get("/ready", h.Health.Ready)

	a := api.Group("/auth")
	a.Post("/register", h.Auth.Register)
	a.Post("/login", h.Auth.Login)

	t := api.Group("/tasks")
	t.Post("/", gate.Require(jwt.Authenticated), h.Tasks.Create)
	t.Get("/my-tasks", gate.Require(jwt.Authenticated), h.Tasks.ListMine)
	t.Get("/", gate.Require(jwt.AdminOnly), h.Tasks.ListAll)
	t.Patch("/:id/status", gate.Require(jwt.TaskOwner(ownership, "id")), h.Tasks.UpdateStatus)
}
