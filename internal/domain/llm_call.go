package domain

import "time"

// LLM call statuses.
const (
	LLMCallSuccess = "success"
	LLMCallError   = "error"
	LLMCallTimeout = "timeout"
)

// LLMCallLog is an audit record of one call to the LLM provider.
type LLMCallLog struct {
	ID              int64
	UserID          int64
	ModelName       string
	Prompt          string
	Response        *string
	TokensUsed      *int
	ExecutionTimeMS int
	Status          string
	ErrorMessage    *string
	CreatedAt       time.Time
}
