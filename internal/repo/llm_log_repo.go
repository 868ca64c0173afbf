package repo

import (
	"context"

	dom "planhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LLMLogRepo stores audit records of LLM calls.
type LLMLogRepo interface {
	Insert(ctx context.Context, entry dom.LLMCallLog) error
}

// PGLLMLogRepo implements LLMLogRepo with Postgres.
type PGLLMLogRepo struct {
	db *pgxpool.Pool
}

func NewPGLLMLogRepo(db *pgxpool.Pool) *PGLLMLogRepo {
	return &PGLLMLogRepo{db: db}
}

func (r *PGLLMLogRepo) Insert(ctx context.Context, entry dom.LLMCallLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO llm_call_logs (user_id, model_name, prompt, response, tokens_used, execution_time_ms, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.UserID, entry.ModelName, entry.Prompt, entry.Response,
		entry.TokensUsed, entry.ExecutionTimeMS, entry.Status, entry.ErrorMessage,
	)
	return err
}
