package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/taskhub/backend/api/http/presenter"
	"github.com/taskhub/backend/pkg/security/jwt"
	"github.com/taskhub/backend/pkg/task"
)

type TaskHandler struct {
	uc task.UseCase
}

func NewTaskHandler(uc task.UseCase) *TaskHandler { return &TaskHandler{uc: uc} }

type createTaskRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	AssignedUserID *int64 `json:"assignedUserId"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// Create creates a task assigned to the caller unless assignedUserId is given.
// @Summary Create task
// @Tags    tasks
// @Accept  json
// @Produce json
// @Param   input body createTaskRequest true "task payload"
// @Security BearerAuth
// @Success 201 {object} presenter.TaskView
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	principal, ok := jwt.PrincipalFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthenticated")
	}
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	t, err := h.uc.Create(c.UserContext(), task.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		AssignedUserID: req.AssignedUserID,
	}, principal.Email)
	if err != nil {
		return taskError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, presenter.Task(t))
}

// ListMine lists tasks assigned to the caller.
// @Summary My tasks
// @Tags    tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} presenter.TaskView
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /tasks/my-tasks [get]
func (h *TaskHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := jwt.PrincipalFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthenticated")
	}
	ts, err := h.uc.ListMine(c.UserContext(), principal.Email)
	if err != nil {
		return taskError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.Tasks(ts))
}

// ListAll lists every task (admin only).
// @Summary All tasks
// @Tags    tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} presenter.TaskView
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /tasks [get]
func (h *TaskHandler) ListAll(c *fiber.Ctx) error {
	ts, err := h.uc.ListAll(c.UserContext())
	if err != nil {
		return taskError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.Tasks(ts))
}

// UpdateStatus changes the status of a task assigned to the caller.
// @Summary Update task status
// @Tags    tasks
// @Accept  json
// @Produce json
// @Param   id path int true "task ID"
// @Param   input body updateStatusRequest true "new status: TODO, IN_PROGRESS or DONE"
// @Security BearerAuth
// @Success 200 {object} presenter.TaskView
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := jwt.PrincipalFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "unauthenticated")
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return presenter.Error(c, http.StatusBadRequest, "invalid task id")
	}
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	status, err := task.ParseStatus(req.Status)
	if err != nil {
		return taskError(c, err)
	}
	t, err := h.uc.UpdateStatus(c.UserContext(), id, status, principal.Email)
	if err != nil {
		return taskError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, presenter.Task(t))
}

func taskError(c *fiber.Ctx, err error) error {
	var verr task.ErrValidation
	switch {
	case errors.As(err, &verr):
		return presenter.Error(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, task.ErrTaskNotFound):
		return presenter.Error(c, http.StatusNotFound, "task not found")
	case errors.Is(err, task.ErrAssignedUserNotFound):
		return presenter.Error(c, http.StatusNotFound, "assigned user not found")
	case errors.Is(err, task.ErrUnknownCaller):
		return presenter.Error(c, http.StatusUnauthorized, "unknown user")
	case errors.Is(err, task.ErrForbidden):
		return presenter.Error(c, http.StatusForbidden, err.Error())
	default:
		log.Printf("[http] task request failed: %v", err)
		return presenter.Error(c, http.StatusInternalServerError, "internal error")
	}
}
