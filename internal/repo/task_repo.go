package repo

import (
	"context"

	dom "planhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo provides task persistence.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id int64) (dom.Task, error)
	List(ctx context.Context, projectID *int64, status string, limit, offset int) ([]dom.Task, error)
	ListByAssigneeAndStatuses(ctx context.Context, userID int64, statuses []string) ([]dom.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]dom.Task, error)
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, id int64) error
}

// PGTaskRepo implements TaskRepo with Postgres.
type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `id, title, description, status, priority, project_id, assignee_id, due_date, completed_at, created_at, updated_at`

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (title, description, status, priority, project_id, assignee_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + taskColumns
	var out dom.Task
	err := r.db.QueryRow(ctx, query,
		t.Title, t.Description, t.Status, t.Priority, t.ProjectID, t.AssigneeID, t.DueDate,
	).Scan(
		&out.ID, &out.Title, &out.Description, &out.Status, &out.Priority, &out.ProjectID,
		&out.AssigneeID, &out.DueDate, &out.CompletedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	var t dom.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.ProjectID,
		&t.AssigneeID, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTaskRepo) List(ctx context.Context, projectID *int64, status string, limit, offset int) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE ($1::bigint IS NULL OR project_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, projectID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *PGTaskRepo) ListByAssigneeAndStatuses(ctx context.Context, userID int64, statuses []string) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE assignee_id = $1 AND status = ANY($2)
		ORDER BY id`
	rows, err := r.db.Query(ctx, query, userID, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *PGTaskRepo) ListByProject(ctx context.Context, projectID int64) ([]dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
		    assignee_id = $6, due_date = $7, completed_at = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns
	var out dom.Task
	err := r.db.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.DueDate, t.CompletedAt,
	).Scan(
		&out.ID, &out.Title, &out.Description, &out.Status, &out.Priority, &out.ProjectID,
		&out.AssigneeID, &out.DueDate, &out.CompletedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGTaskRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func scanTasks(rows pgx.Rows) ([]dom.Task, error) {
	var list []dom.Task
	for rows.Next() {
		var t dom.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.ProjectID,
			&t.AssigneeID, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
