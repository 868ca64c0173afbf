package repo

import (
	"context"

	dom "planhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FeedbackRepo provides feedback persistence.
type FeedbackRepo interface {
	Create(ctx context.Context, f dom.Feedback) (dom.Feedback, error)
	GetByID(ctx context.Context, id int64) (dom.Feedback, error)
	ListByUser(ctx context.Context, userID int64) ([]dom.Feedback, error)
	Update(ctx context.Context, f dom.Feedback) (dom.Feedback, error)
}

// PGFeedbackRepo implements FeedbackRepo with Postgres.
type PGFeedbackRepo struct {
	db *pgxpool.Pool
}

func NewPGFeedbackRepo(db *pgxpool.Pool) *PGFeedbackRepo {
	return &PGFeedbackRepo{db: db}
}

const feedbackColumns = `id, content, feedback_type, project_id, task_id, plan_version_id, user_id, rating, is_resolved, created_at, updated_at`

func (r *PGFeedbackRepo) Create(ctx context.Context, f dom.Feedback) (dom.Feedback, error) {
	query := `
		INSERT INTO feedback (content, feedback_type, project_id, task_id, plan_version_id, user_id, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + feedbackColumns
	var out dom.Feedback
	err := r.db.QueryRow(ctx, query,
		f.Content, f.FeedbackType, f.ProjectID, f.TaskID, f.PlanVersionID, f.UserID, f.Rating,
	).Scan(
		&out.ID, &out.Content, &out.FeedbackType, &out.ProjectID, &out.TaskID, &out.PlanVersionID,
		&out.UserID, &out.Rating, &out.IsResolved, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGFeedbackRepo) GetByID(ctx context.Context, id int64) (dom.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE id = $1`
	var f dom.Feedback
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Content, &f.FeedbackType, &f.ProjectID, &f.TaskID, &f.PlanVersionID,
		&f.UserID, &f.Rating, &f.IsResolved, &f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

func (r *PGFeedbackRepo) ListByUser(ctx context.Context, userID int64) ([]dom.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Feedback
	for rows.Next() {
		var f dom.Feedback
		if err := rows.Scan(&f.ID, &f.Content, &f.FeedbackType, &f.ProjectID, &f.TaskID, &f.PlanVersionID,
			&f.UserID, &f.Rating, &f.IsResolved, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func (r *PGFeedbackRepo) Update(ctx context.Context, f dom.Feedback) (dom.Feedback, error) {
	query := `
		UPDATE feedback SET rating = $2, is_resolved = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + feedbackColumns
	var out dom.Feedback
	err := r.db.QueryRow(ctx, query, f.ID, f.Rating, f.IsResolved).Scan(
		&out.ID, &out.Content, &out.FeedbackType, &out.ProjectID, &out.TaskID, &out.PlanVersionID,
		&out.UserID, &out.Rating, &out.IsResolved, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}
