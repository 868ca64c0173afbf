package dto

import "time"

type CreateInboxItemRequest struct {
	Content string   `json:"content" binding:"required,min=1,max=4000"`
	Tags    []string `json:"tags" binding:"max=20"`
}

type InboxItemResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    int64     `json:"user_id"`
	ProjectID *int64    `json:"project_id"`
	TaskID    *int64    `json:"task_id"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListInboxItemsResponse struct {
	Items []InboxItemResponse `json:"items"`
}

type ClassificationResponse struct {
	Action             string `json:"action"`
	ProjectName        string `json:"project_name,omitempty"`
	ProjectDescription string `json:"project_description,omitempty"`
	TaskTitle          string `json:"task_title,omitempty"`
	TaskDescription    string `json:"task_description,omitempty"`
	TaskPriority       string `json:"task_priority,omitempty"`
	Reasoning          string `json:"reasoning,omitempty"`
}

type ProcessInboxItemResponse struct {
	Status         string                  `json:"status"`
	Item           InboxItemResponse       `json:"item"`
	Classification *ClassificationResponse `json:"classification,omitempty"`
	ProjectID      *int64                  `json:"project_id,omitempty"`
	TaskID         *int64                  `json:"task_id,omitempty"`
}
