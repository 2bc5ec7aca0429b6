package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskhub/backend/pkg/auth"
)

// CreateInput carries the fields a caller may set on a new task.
type CreateInput struct {
	Title          string
	Description    string
	AssignedUserID *int64
}

// UseCase инкапсулирует сценарии работы с задачами.
type UseCase interface {
	Create(ctx context.Context, in CreateInput, callerEmail string) (Task, error)
	ListMine(ctx context.Context, callerEmail string) ([]Task, error)
	// ListAll performs no authorization; role gating belongs to the request gate.
	ListAll(ctx context.Context) ([]Task, error)
	CheckOwnership(ctx context.Context, taskID int64, callerEmail string) error
	UpdateStatus(ctx context.Context, taskID int64, status Status, callerEmail string) (Task, error)
}

type service struct {
	tasks Repository
	users auth.UserRepository
	now   func() time.Time
}

func NewService(tasks Repository, users auth.UserRepository) UseCase {
	return &service{tasks: tasks, users: users, now: time.Now}
}

func (s *service) Create(ctx context.Context, in CreateInput, callerEmail string) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, ErrValidation("title is required")
	}
	caller, err := s.caller(ctx, callerEmail)
	if err != nil {
		return Task{}, err
	}

	assignee := caller.ID
	if in.AssignedUserID != nil {
		u, err := s.users.GetByID(ctx, *in.AssignedUserID)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				return Task{}, ErrAssignedUserNotFound
			}
			return Task{}, fmt.Errorf("find assigned user: %w", err)
		}
		assignee = u.ID
	}

	now := s.now().UTC()
	t := Task{
		Title:          title,
		Description:    in.Description,
		Status:         StatusTodo,
		AssignedUserID: assignee,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.tasks.Create(ctx, &t); err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *service) ListMine(ctx context.Context, callerEmail string) ([]Task, error) {
	caller, err := s.caller(ctx, callerEmail)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListByAssignee(ctx, caller.ID)
}

func (s *service) ListAll(ctx context.Context) ([]Task, error) {
	return s.tasks.ListAll(ctx)
}

func (s *service) CheckOwnership(ctx context.Context, taskID int64, callerEmail string) error {
	_, err := s.ownedTask(ctx, taskID, callerEmail)
	return err
}

func (s *service) UpdateStatus(ctx context.Context, taskID int64, status Status, callerEmail string) (Task, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Task{}, err
	}
	t, err := s.ownedTask(ctx, taskID, callerEmail)
	if err != nil {
		return Task{}, err
	}
	now := s.now().UTC()
	if err := s.tasks.UpdateStatus(ctx, t.ID, status, now); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return Task{}, err
		}
		return Task{}, fmt.Errorf("update task status: %w", err)
	}
	t.Status = status
	t.UpdatedAt = now
	return t, nil
}

// ownedTask resolves the task and the caller, in that order, and requires an exact
// id match between the caller and the assignee. Admins get no exemption.
func (s *service) ownedTask(ctx context.Context, taskID int64, callerEmail string) (Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	caller, err := s.caller(ctx, callerEmail)
	if err != nil {
		return Task{}, err
	}
	if t.AssignedUserID != caller.ID {
		return Task{}, ErrForbidden
	}
	return t, nil
}

func (s *service) caller(ctx context.Context, email string) (auth.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.User{}, ErrUnknownCaller
		}
		return auth.User{}, fmt.Errorf("find caller: %w", err)
	}
	return u, nil
}
