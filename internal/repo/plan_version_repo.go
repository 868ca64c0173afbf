package repo

import (
	"context"

	dom "planhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanVersionRepo provides project plan version persistence.
type PlanVersionRepo interface {
	// LatestByProject returns the highest-numbered version, or pgx.ErrNoRows.
	LatestByProject(ctx context.Context, projectID int64) (dom.PlanVersion, error)
	Insert(ctx context.Context, pv dom.PlanVersion) (dom.PlanVersion, error)
}

// PGPlanVersionRepo implements PlanVersionRepo with Postgres.
type PGPlanVersionRepo struct {
	db *pgxpool.Pool
}

func NewPGPlanVersionRepo(db *pgxpool.Pool) *PGPlanVersionRepo {
	return &PGPlanVersionRepo{db: db}
}

const planVersionColumns = `id, version_number, content, project_id, created_by, created_at`

func (r *PGPlanVersionRepo) LatestByProject(ctx context.Context, projectID int64) (dom.PlanVersion, error) {
	query := `
		SELECT ` + planVersionColumns + ` FROM plan_versions
		WHERE project_id = $1
		ORDER BY version_number DESC
		LIMIT 1`
	var pv dom.PlanVersion
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&pv.ID, &pv.VersionNumber, &pv.Content, &pv.ProjectID, &pv.CreatedBy, &pv.CreatedAt,
	)
	return pv, err
}

func (r *PGPlanVersionRepo) Insert(ctx context.Context, pv dom.PlanVersion) (dom.PlanVersion, error) {
	query := `
		INSERT INTO plan_versions (version_number, content, project_id, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + planVersionColumns
	var out dom.PlanVersion
	err := r.db.QueryRow(ctx, query, pv.VersionNumber, pv.Content, pv.ProjectID, pv.CreatedBy).Scan(
		&out.ID, &out.VersionNumber, &out.Content, &out.ProjectID, &out.CreatedBy, &out.CreatedAt,
	)
	return out, err
}
