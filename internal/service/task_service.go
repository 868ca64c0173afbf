package service

import (
	"context"
	"errors"
	"strings"
	"time"

	dom "planhub/internal/domain"
	"planhub/internal/repo"

	"github.com/jackc/pgx/v5"
)

// TaskService handles task CRUD. Completion goes through the Planner so
// the daily plan is reconciled.
type TaskService struct {
	tasks    repo.TaskRepo
	projects repo.ProjectRepo
}

func NewTaskService(tasks repo.TaskRepo, projects repo.ProjectRepo) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

func (s *TaskService) Create(ctx context.Context, projectID int64, title, description, priority string, assigneeID *int64, dueDate *time.Time) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Task{}, errors.New("title is required")
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrProjectNotFound
		}
		return dom.Task{}, err
	}
	if priority == "" {
		priority = dom.PriorityMedium
	}
	if !validPriority(priority) {
		return dom.Task{}, errors.New("invalid priority")
	}
	return s.tasks.Create(ctx, dom.Task{
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      dom.TaskPending,
		Priority:    priority,
		ProjectID:   projectID,
		AssigneeID:  assigneeID,
		DueDate:     dueDate,
	})
}

func (s *TaskService) List(ctx context.Context, projectID *int64, status string, limit, offset int) ([]dom.Task, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.tasks.List(ctx, projectID, status, limit, offset)
}

func (s *TaskService) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrTaskNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, id int64, title, description, status, priority *string, assigneeID *int64, dueDate *time.Time) (dom.Task, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return dom.Task{}, err
	}
	patch := existing
	if title != nil {
		patch.Title = strings.TrimSpace(*title)
	}
	if description != nil {
		patch.Description = strings.TrimSpace(*description)
	}
	if status != nil {
		if !validStatus(*status) {
			return dom.Task{}, errors.New("invalid status")
		}
		patch.Status = *status
		if *status == dom.TaskCompleted && patch.CompletedAt == nil {
			now := time.Now()
			patch.CompletedAt = &now
		}
	}
	if priority != nil {
		if !validPriority(*priority) {
			return dom.Task{}, errors.New("invalid priority")
		}
		patch.Priority = *priority
	}
	if assigneeID != nil {
		patch.AssigneeID = assigneeID
	}
	if dueDate != nil {
		patch.DueDate = dueDate
	}
	t, err := s.tasks.Update(ctx, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrTaskNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.tasks.Delete(ctx, id)
}

func validStatus(s string) bool {
	switch s {
	case dom.TaskPending, dom.TaskInProgress, dom.TaskCompleted, dom.TaskCancelled:
		return true
	}
	return false
}

func validPriority(p string) bool {
	switch p {
	case dom.PriorityLow, dom.PriorityMedium, dom.PriorityHigh, dom.PriorityUrgent:
		return true
	}
	return false
}
