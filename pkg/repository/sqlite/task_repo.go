package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taskhub/backend/pkg/task"
)

// TaskRepository implements task.Repository using GORM.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	rec := taskRecord{
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		AssignedUserID: t.AssignedUserID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	t.ID = rec.ID
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (task.Task, error) {
	var rec taskRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task.Task{}, task.ErrTaskNotFound
		}
		return task.Task{}, fmt.Errorf("failed to find task: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, userID int64) ([]task.Task, error) {
	return r.find(r.db.WithContext(ctx).Where("assigned_user_id = ?", userID))
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]task.Task, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status task.Status, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": updatedAt})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) find(q *gorm.DB) ([]task.Task, error) {
	var recs []taskRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	res := make([]task.Task, 0, len(recs))
	for _, rec := range recs {
		res = append(res, rec.toDomain())
	}
	return res, nil
}
