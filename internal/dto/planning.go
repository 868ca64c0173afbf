package dto

import "time"

type GeneratePlanRequest struct {
	ProjectID       int64 `json:"project_id" binding:"required"`
	ForceRegenerate bool  `json:"force_regenerate"`
}

type PlanVersionResponse struct {
	ID            int64     `json:"id"`
	VersionNumber int       `json:"version_number"`
	Content       string    `json:"content"`
	ProjectID     int64     `json:"project_id"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type GenerateDailyPlanRequest struct {
	// TargetDate is "2006-01-02"; empty means today.
	TargetDate string `json:"target_date"`
}

type DailyPlanLineResponse struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	SummaryText string    `json:"summary_text"`
	UserID      int64     `json:"user_id"`
	TaskID      *int64    `json:"task_id"`
	Completed   bool      `json:"completed"`
	HoursWorked int       `json:"hours_worked"`
	CreatedAt   time.Time `json:"created_at"`
}

type DailyPlanResponse struct {
	Items []DailyPlanLineResponse `json:"items"`
}

type MarkTaskCompleteRequest struct {
	TaskID int64 `json:"task_id" binding:"required"`
	// HoursWorked is minutes; stored verbatim.
	HoursWorked *int `json:"hours_worked" binding:"omitempty,min=0"`
}

type MarkTaskCompleteResponse struct {
	TaskID      int64      `json:"task_id"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
}

type DailyPlanSummaryResponse struct {
	Date             string                  `json:"date"`
	TotalTasks       int                     `json:"total_tasks"`
	CompletedTasks   int                     `json:"completed_tasks"`
	CompletionRate   float64                 `json:"completion_rate"`
	TotalHoursWorked int                     `json:"total_hours_worked"`
	Lines            []DailyPlanLineResponse `json:"lines"`
}
