package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhub/backend/pkg/task"
)

// TaskRepository хранит задачи в PostgreSQL.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, title, description, status, assigned_user_id, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	return r.pool.QueryRow(ctx, `
INSERT INTO tasks (title, description, status, assigned_user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`, t.Title, t.Description, string(t.Status), t.AssignedUserID, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (task.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrTaskNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, userID int64) ([]task.Task, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+taskColumns+` FROM tasks WHERE assigned_user_id = $1 ORDER BY id
`, userID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]task.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status task.Status, updatedAt time.Time) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1
`, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	var status string
	var created, updated time.Time
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.AssignedUserID, &created, &updated); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.CreatedAt = created.UTC()
	t.UpdatedAt = updated.UTC()
	return t, nil
}

func collectTasks(rows pgx.Rows) ([]task.Task, error) {
	defer rows.Close()
	res := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}
