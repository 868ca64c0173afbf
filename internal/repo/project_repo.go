package repo

import (
	"context"

	dom "planhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepo provides project persistence.
type ProjectRepo interface {
	Create(ctx context.Context, p dom.Project) (dom.Project, error)
	GetByID(ctx context.Context, id int64) (dom.Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]dom.Project, error)
	Update(ctx context.Context, p dom.Project) (dom.Project, error)
}

// PGProjectRepo implements ProjectRepo with Postgres.
type PGProjectRepo struct {
	db *pgxpool.Pool
}

func NewPGProjectRepo(db *pgxpool.Pool) *PGProjectRepo {
	return &PGProjectRepo{db: db}
}

const projectColumns = `id, name, description, status, owner_id, created_at, updated_at`

func (r *PGProjectRepo) Create(ctx context.Context, p dom.Project) (dom.Project, error) {
	query := `
		INSERT INTO projects (name, description, status, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + projectColumns
	var out dom.Project
	err := r.db.QueryRow(ctx, query, p.Name, p.Description, p.Status, p.OwnerID).Scan(
		&out.ID, &out.Name, &out.Description, &out.Status, &out.OwnerID, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGProjectRepo) GetByID(ctx context.Context, id int64) (dom.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	var p dom.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *PGProjectRepo) ListByOwner(ctx context.Context, ownerID int64) ([]dom.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Project
	for rows.Next() {
		var p dom.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.OwnerID,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PGProjectRepo) Update(ctx context.Context, p dom.Project) (dom.Project, error) {
	query := `
		UPDATE projects SET name = $2, description = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns
	var out dom.Project
	err := r.db.QueryRow(ctx, query, p.ID, p.Name, p.Description, p.Status).Scan(
		&out.ID, &out.Name, &out.Description, &out.Status, &out.OwnerID, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}
