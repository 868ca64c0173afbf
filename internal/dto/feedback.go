package dto

import "time"

type CreateFeedbackRequest struct {
	Content       string `json:"content" binding:"required,min=1,max=4000"`
	FeedbackType  string `json:"feedback_type" binding:"required,oneof=user_input system_output improvement"`
	ProjectID     *int64 `json:"project_id"`
	TaskID        *int64 `json:"task_id"`
	PlanVersionID *int64 `json:"plan_version_id"`
	Rating        *int   `json:"rating" binding:"omitempty,min=1,max=5"`
}

type FeedbackResponse struct {
	ID            int64     `json:"id"`
	Content       string    `json:"content"`
	FeedbackType  string    `json:"feedback_type"`
	ProjectID     *int64    `json:"project_id"`
	TaskID        *int64    `json:"task_id"`
	PlanVersionID *int64    `json:"plan_version_id"`
	UserID        int64     `json:"user_id"`
	Rating        *int      `json:"rating"`
	IsResolved    bool      `json:"is_resolved"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ListFeedbackResponse struct {
	Items []FeedbackResponse `json:"items"`
}
