package service

import (
	"context"
	"errors"
	"strings"

	dom "planhub/internal/domain"
	"planhub/internal/repo"

	"github.com/jackc/pgx/v5"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

// FeedbackService records and resolves feedback on projects, tasks and plans.
type FeedbackService struct {
	repo repo.FeedbackRepo
}

func NewFeedbackService(r repo.FeedbackRepo) *FeedbackService {
	return &FeedbackService{repo: r}
}

func (s *FeedbackService) Create(ctx context.Context, userID int64, content, feedbackType string, projectID, taskID, planVersionID *int64, rating *int) (dom.Feedback, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return dom.Feedback{}, errors.New("content is required")
	}
	switch feedbackType {
	case dom.FeedbackUserInput, dom.FeedbackSystemOutput, dom.FeedbackImprovement:
	default:
		return dom.Feedback{}, errors.New("invalid feedback type")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return dom.Feedback{}, errors.New("rating must be between 1 and 5")
	}
	return s.repo.Create(ctx, dom.Feedback{
		Content:       content,
		FeedbackType:  feedbackType,
		ProjectID:     projectID,
		TaskID:        taskID,
		PlanVersionID: planVersionID,
		UserID:        userID,
		Rating:        rating,
	})
}

func (s *FeedbackService) List(ctx context.Context, userID int64) ([]dom.Feedback, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Resolve marks feedback as handled.
func (s *FeedbackService) Resolve(ctx context.Context, userID, id int64) (dom.Feedback, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Feedback{}, ErrFeedbackNotFound
		}
		return dom.Feedback{}, err
	}
	if f.UserID != userID {
		return dom.Feedback{}, ErrFeedbackNotFound
	}
	f.IsResolved = true
	return s.repo.Update(ctx, f)
}
