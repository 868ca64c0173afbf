package domain

import "time"

// PlanVersion is one immutable revision of a project's generated plan.
// Content is the raw JSON produced by the planning service.
type PlanVersion struct {
	ID            int64
	VersionNumber int
	Content       string
	ProjectID     int64
	CreatedBy     int64
	CreatedAt     time.Time
}

// DailyPlanLine is one selected task for one user on one calendar day.
// HoursWorked holds minutes; the planner stores the caller's value verbatim.
type DailyPlanLine struct {
	ID             int64
	Date           time.Time
	SummaryText    string
	UserID         int64
	TaskID         *int64
	TasksCompleted int
	HoursWorked    int
	CreatedAt      time.Time
}
