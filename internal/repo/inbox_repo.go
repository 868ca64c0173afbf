package repo

import (
	"context"

	dom "planhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InboxRepo provides inbox item persistence.
type InboxRepo interface {
	Create(ctx context.Context, item dom.InboxItem) (dom.InboxItem, error)
	GetByID(ctx context.Context, id int64) (dom.InboxItem, error)
	ListByUser(ctx context.Context, userID int64, status string) ([]dom.InboxItem, error)
	Update(ctx context.Context, item dom.InboxItem) (dom.InboxItem, error)
}

// PGInboxRepo implements InboxRepo with Postgres.
type PGInboxRepo struct {
	db *pgxpool.Pool
}

func NewPGInboxRepo(db *pgxpool.Pool) *PGInboxRepo {
	return &PGInboxRepo{db: db}
}

const inboxColumns = `id, content, user_id, project_id, task_id, status, tags, created_at, updated_at`

func (r *PGInboxRepo) Create(ctx context.Context, item dom.InboxItem) (dom.InboxItem, error) {
	query := `
		INSERT INTO inbox_items (content, user_id, status, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + inboxColumns
	var out dom.InboxItem
	err := r.db.QueryRow(ctx, query, item.Content, item.UserID, item.Status, item.Tags).Scan(
		&out.ID, &out.Content, &out.UserID, &out.ProjectID, &out.TaskID,
		&out.Status, &out.Tags, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGInboxRepo) GetByID(ctx context.Context, id int64) (dom.InboxItem, error) {
	query := `SELECT ` + inboxColumns + ` FROM inbox_items WHERE id = $1`
	var item dom.InboxItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Content, &item.UserID, &item.ProjectID, &item.TaskID,
		&item.Status, &item.Tags, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func (r *PGInboxRepo) ListByUser(ctx context.Context, userID int64, status string) ([]dom.InboxItem, error) {
	query := `
		SELECT ` + inboxColumns + ` FROM inbox_items
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.InboxItem
	for rows.Next() {
		var item dom.InboxItem
		if err := rows.Scan(&item.ID, &item.Content, &item.UserID, &item.ProjectID, &item.TaskID,
			&item.Status, &item.Tags, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (r *PGInboxRepo) Update(ctx context.Context, item dom.InboxItem) (dom.InboxItem, error) {
	query := `
		UPDATE inbox_items
		SET content = $2, project_id = $3, task_id = $4, status = $5, tags = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + inboxColumns
	var out dom.InboxItem
	err := r.db.QueryRow(ctx, query,
		item.ID, item.Content, item.ProjectID, item.TaskID, item.Status, item.Tags,
	).Scan(
		&out.ID, &out.Content, &out.UserID, &out.ProjectID, &out.TaskID,
		&out.Status, &out.Tags, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}
