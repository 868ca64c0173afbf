package repo

import (
	"context"
	"fmt"
	"time"

	dom "planhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanRepo provides daily plan line persistence.
type PlanRepo interface {
	// FindLines returns the lines for (userID, [dayStart, dayEnd]) in creation order.
	FindLines(ctx context.Context, userID int64, dayStart, dayEnd time.Time) ([]dom.DailyPlanLine, error)
	// FindLineForTask returns the line for a task on that day, or pgx.ErrNoRows.
	FindLineForTask(ctx context.Context, userID, taskID int64, dayStart, dayEnd time.Time) (dom.DailyPlanLine, error)
	// InsertLines writes all lines in a single transaction. Either every line
	// is persisted or none is.
	InsertLines(ctx context.Context, lines []dom.DailyPlanLine) ([]dom.DailyPlanLine, error)
	UpdateLine(ctx context.Context, line dom.DailyPlanLine) error
}

// PGPlanRepo implements PlanRepo with Postgres.
type PGPlanRepo struct {
	db *pgxpool.Pool
}

func NewPGPlanRepo(db *pgxpool.Pool) *PGPlanRepo {
	return &PGPlanRepo{db: db}
}

const planLineColumns = `id, date, summary_text, user_id, task_id, tasks_completed, hours_worked, created_at`

func (r *PGPlanRepo) FindLines(ctx context.Context, userID int64, dayStart, dayEnd time.Time) ([]dom.DailyPlanLine, error) {
	query := `
		SELECT ` + planLineColumns + ` FROM daily_summaries
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY id`
	rows, err := r.db.Query(ctx, query, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.DailyPlanLine
	for rows.Next() {
		var l dom.DailyPlanLine
		if err := rows.Scan(&l.ID, &l.Date, &l.SummaryText, &l.UserID, &l.TaskID,
			&l.TasksCompleted, &l.HoursWorked, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *PGPlanRepo) FindLineForTask(ctx context.Context, userID, taskID int64, dayStart, dayEnd time.Time) (dom.DailyPlanLine, error) {
	query := `
		SELECT ` + planLineColumns + ` FROM daily_summaries
		WHERE user_id = $1 AND task_id = $2 AND date >= $3 AND date <= $4`
	var l dom.DailyPlanLine
	err := r.db.QueryRow(ctx, query, userID, taskID, dayStart, dayEnd).Scan(
		&l.ID, &l.Date, &l.SummaryText, &l.UserID, &l.TaskID,
		&l.TasksCompleted, &l.HoursWorked, &l.CreatedAt,
	)
	return l, err
}

func (r *PGPlanRepo) InsertLines(ctx context.Context, lines []dom.DailyPlanLine) ([]dom.DailyPlanLine, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO daily_summaries (date, summary_text, user_id, task_id, tasks_completed, hours_worked)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + planLineColumns
	out := make([]dom.DailyPlanLine, 0, len(lines))
	for _, l := range lines {
		var saved dom.DailyPlanLine
		err := tx.QueryRow(ctx, query,
			l.Date, l.SummaryText, l.UserID, l.TaskID, l.TasksCompleted, l.HoursWorked,
		).Scan(
			&saved.ID, &saved.Date, &saved.SummaryText, &saved.UserID, &saved.TaskID,
			&saved.TasksCompleted, &saved.HoursWorked, &saved.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *PGPlanRepo) UpdateLine(ctx context.Context, line dom.DailyPlanLine) error {
	_, err := r.db.Exec(ctx, `
		UPDATE daily_summaries
		SET summary_text = $2, tasks_completed = $3, hours_worked = $4
		WHERE id = $1`,
		line.ID, line.SummaryText, line.TasksCompleted, line.HoursWorked,
	)
	return err
}
