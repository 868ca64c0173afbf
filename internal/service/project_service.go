package service

import (
	"context"
	"errors"
	"strings"

	dom "planhub/internal/domain"
	"planhub/internal/repo"

	"github.com/jackc/pgx/v5"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotOwner        = errors.New("project not owned by user")
)

// ProjectService handles project CRUD, scoped to the owning user.
type ProjectService struct {
	repo repo.ProjectRepo
}

func NewProjectService(r repo.ProjectRepo) *ProjectService {
	return &ProjectService{repo: r}
}

func (s *ProjectService) Create(ctx context.Context, ownerID int64, name, description string) (dom.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return dom.Project{}, errors.New("name is required")
	}
	return s.repo.Create(ctx, dom.Project{
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      dom.ProjectActive,
		OwnerID:     ownerID,
	})
}

func (s *ProjectService) List(ctx context.Context, ownerID int64) ([]dom.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *ProjectService) GetByID(ctx context.Context, ownerID, id int64) (dom.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Project{}, ErrProjectNotFound
		}
		return dom.Project{}, err
	}
	if p.OwnerID != ownerID {
		return dom.Project{}, ErrNotOwner
	}
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, ownerID, id int64, name, description, status *string) (dom.Project, error) {
	existing, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return dom.Project{}, err
	}
	patch := existing
	if name != nil {
		patch.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		patch.Description = strings.TrimSpace(*description)
	}
	if status != nil {
		switch *status {
		case dom.ProjectActive, dom.ProjectCompleted, dom.ProjectArchived:
			patch.Status = *status
		default:
			return dom.Project{}, errors.New("invalid project status")
		}
	}
	return s.repo.Update(ctx, patch)
}

// Archive moves a project out of the active set without deleting its tasks.
func (s *ProjectService) Archive(ctx context.Context, ownerID, id int64) (dom.Project, error) {
	existing, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return dom.Project{}, err
	}
	existing.Status = dom.ProjectArchived
	return s.repo.Update(ctx, existing)
}
