package domain

import "time"

// Inbox item statuses.
const (
	InboxUnprocessed = "unprocessed"
	InboxProcessed   = "processed"
	InboxArchived    = "archived"
)

// InboxItem is a free-form note captured before it is organized
// into a project or task.
type InboxItem struct {
	ID        int64
	Content   string
	UserID    int64
	ProjectID *int64
	TaskID    *int64
	Status    string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
