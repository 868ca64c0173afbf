package domain

import "time"

// Task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Domain entity: бизнес-объект (истина).
// Не зависит от Gin, Postgres, Redis.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      string
	Priority    string
	ProjectID   int64
	AssigneeID  *int64
	DueDate     *time.Time
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the task still counts as unfinished work.
func (t Task) IsOpen() bool {
	return t.Status == TaskPending || t.Status == TaskInProgress
}

// PriorityRank maps a priority tier to its numeric rank (urgent=4 … low=1).
// Unknown values fall back to 1, same as low.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}
