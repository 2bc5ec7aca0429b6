package task

import (
	"context"
	"errors"
	"time"
)

// Status is the task lifecycle state. There is no enforced transition graph.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ParseStatus matches the wire name exactly (case-sensitive).
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusTodo, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", ErrValidation("status must be one of TODO, IN_PROGRESS, DONE")
}

// Task is assigned to exactly one user, fixed at creation.
type Task struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         Status    `json:"status"`
	AssignedUserID int64     `json:"assignedUserId"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrAssignedUserNotFound = errors.New("assigned user not found")
	ErrUnknownCaller        = errors.New("caller does not resolve to a user")
	ErrForbidden            = errors.New("only the assigned user can update the task status")
)

// ErrValidation простая ошибка валидации.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// Repository — порт для работы с задачами.
type Repository interface {
	// Create fills in ID on success.
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id int64) (Task, error)
	ListByAssignee(ctx context.Context, userID int64) ([]Task, error)
	ListAll(ctx context.Context) ([]Task, error)
	UpdateStatus(ctx context.Context, id int64, status Status, updatedAt time.Time) error
}
