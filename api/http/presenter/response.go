package presenter

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskhub/backend/pkg/auth"
	"github.com/taskhub/backend/pkg/task"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// TaskView is the wire form of a task.
type TaskView struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	AssignedUserID int64  `json:"assignedUserId"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

func Auth(res auth.AuthResult) AuthResponse {
	return AuthResponse{
		Token: res.Token,
		Email: res.User.Email,
		Name:  res.User.Name,
		Role:  string(res.User.Role),
	}
}

func Task(t task.Task) TaskView {
	return TaskView{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		AssignedUserID: t.AssignedUserID,
	}
}

// Tasks never returns nil so empty lists encode as [].
func Tasks(ts []task.Task) []TaskView {
	out := make([]TaskView, 0, len(ts))
	for _, t := range ts {
		out = append(out, Task(t))
	}
	return out
}
