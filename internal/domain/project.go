package domain

import "time"

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

// Project groups tasks and plan versions under one owner.
type Project struct {
	ID          int64
	Name        string
	Description string
	Status      string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
