package domain

import "time"

// Feedback types.
const (
	FeedbackUserInput    = "user_input"
	FeedbackSystemOutput = "system_output"
	FeedbackImprovement  = "improvement"
)

// Feedback captures user or system feedback tied to a project,
// task or plan version.
type Feedback struct {
	ID            int64
	Content       string
	FeedbackType  string
	ProjectID     *int64
	TaskID        *int64
	PlanVersionID *int64
	UserID        int64
	Rating        *int
	IsResolved    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
