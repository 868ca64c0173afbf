package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	dom "planhub/internal/domain"
	"planhub/internal/llm"
	"planhub/internal/repo"

	"github.com/jackc/pgx/v5"
)

var ErrPlanNotFound = errors.New("plan not found")

// PlanContent is the structured body of a generated project plan.
type PlanContent struct {
	Summary      string        `json:"summary"`
	Goals        []string      `json:"goals"`
	RoadmapSteps []RoadmapStep `json:"roadmap_steps"`
	Milestones   []Milestone   `json:"milestones"`
	Risks        []string      `json:"risks"`
	NextSteps    []string      `json:"next_steps"`
}

type RoadmapStep struct {
	StepNumber        int      `json:"step_number"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	EstimatedDuration string   `json:"estimated_duration"`
	Dependencies      []string `json:"dependencies"`
}

type Milestone struct {
	Title        string   `json:"title"`
	TargetDate   string   `json:"target_date"`
	Deliverables []string `json:"deliverables"`
}

// PlanningService generates versioned project plans with the LLM.
type PlanningService struct {
	projects repo.ProjectRepo
	tasks    repo.TaskRepo
	versions repo.PlanVersionRepo
	logs     repo.LLMLogRepo
	llm      llm.Client
	retries  int
}

// NewPlanningService creates a PlanningService. client may be nil, which
// disables generation but keeps reads working.
func NewPlanningService(projects repo.ProjectRepo, tasks repo.TaskRepo, versions repo.PlanVersionRepo, logs repo.LLMLogRepo, client llm.Client, retries int) *PlanningService {
	if retries <= 0 {
		retries = 3
	}
	return &PlanningService{projects: projects, tasks: tasks, versions: versions, logs: logs, llm: client, retries: retries}
}

// GenerateProjectPlan produces the next plan version for a project. Without
// forceRegenerate an existing plan is returned as-is.
func (s *PlanningService) GenerateProjectPlan(ctx context.Context, projectID, userID int64, forceRegenerate bool) (dom.PlanVersion, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.PlanVersion{}, ErrProjectNotFound
		}
		return dom.PlanVersion{}, err
	}

	latest, err := s.versions.LatestByProject(ctx, projectID)
	haveLatest := err == nil
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return dom.PlanVersion{}, err
	}
	if haveLatest && !forceRegenerate {
		return latest, nil
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return dom.PlanVersion{}, err
	}

	content, err := s.generateWithLLM(ctx, project, tasks, userID)
	if err != nil {
		return dom.PlanVersion{}, err
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return dom.PlanVersion{}, err
	}

	next := 1
	if haveLatest {
		next = latest.VersionNumber + 1
	}
	return s.versions.Insert(ctx, dom.PlanVersion{
		VersionNumber: next,
		Content:       string(raw),
		ProjectID:     projectID,
		CreatedBy:     userID,
	})
}

// LatestPlan returns the newest plan version for a project.
func (s *PlanningService) LatestPlan(ctx context.Context, projectID int64) (dom.PlanVersion, error) {
	pv, err := s.versions.LatestByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.PlanVersion{}, ErrPlanNotFound
		}
		return dom.PlanVersion{}, err
	}
	return pv, nil
}

// LatestPlanContent returns the newest plan's parsed content.
func (s *PlanningService) LatestPlanContent(ctx context.Context, projectID int64) (PlanContent, error) {
	pv, err := s.LatestPlan(ctx, projectID)
	if err != nil {
		return PlanContent{}, err
	}
	var content PlanContent
	if err := json.Unmarshal([]byte(pv.Content), &content); err != nil {
		return PlanContent{}, fmt.Errorf("invalid plan content: %w", err)
	}
	return content, nil
}

func (s *PlanningService) generateWithLLM(ctx context.Context, project dom.Project, tasks []dom.Task, userID int64) (PlanContent, error) {
	if s.llm == nil {
		return PlanContent{}, ErrLLMUnavailable
	}
	prompt := buildPlanningPrompt(project, tasks)

	var lastErr error
	backoff := 2 * time.Second
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return PlanContent{}, ctx.Err()
			}
			if backoff *= 2; backoff > 10*time.Second {
				backoff = 10 * time.Second
			}
		}

		start := time.Now()
		resp, err := s.llm.Complete(ctx, prompt, llm.Options{Temperature: 0.5, MaxTokens: 1500})
		elapsed := int(time.Since(start).Milliseconds())
		if err != nil {
			lastErr = err
			s.logCall(ctx, userID, "", prompt, nil, nil, elapsed, err)
			continue
		}
		s.logCall(ctx, userID, resp.Model, prompt, &resp.Content, resp.TokensUsed, elapsed, nil)
		return parsePlanContent(resp.Content), nil
	}
	return PlanContent{}, fmt.Errorf("generate project plan: %w", lastErr)
}

func (s *PlanningService) logCall(ctx context.Context, userID int64, model, prompt string, response *string, tokens *int, elapsedMS int, callErr error) {
	entry := dom.LLMCallLog{
		UserID:          userID,
		ModelName:       model,
		Prompt:          prompt,
		Response:        response,
		TokensUsed:      tokens,
		ExecutionTimeMS: elapsedMS,
		Status:          dom.LLMCallSuccess,
	}
	if callErr != nil {
		entry.Status = dom.LLMCallError
		msg := callErr.Error()
		entry.ErrorMessage = &msg
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		log.Printf("llm call log insert failed: %v", err)
	}
}

func buildPlanningPrompt(project dom.Project, tasks []dom.Task) string {
	var b strings.Builder
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s (priority: %s, status: %s)\n", t.Title, t.Priority, t.Status)
	}
	tasksSummary := strings.TrimRight(b.String(), "\n")
	if tasksSummary == "" {
		tasksSummary = "No tasks yet"
	}
	description := project.Description
	if description == "" {
		description = "No description"
	}

	return fmt.Sprintf(`Create a project plan and roadmap for the following project.

Project: %s
Description: %s
Status: %s

Current tasks:
%s

Generate a comprehensive project plan with the following structure as JSON:
{
    "summary": "Brief summary of the project plan",
    "goals": ["goal1", "goal2", "goal3"],
    "roadmap_steps": [
        {
            "step_number": 1,
            "title": "Step title",
            "description": "What needs to be done",
            "estimated_duration": "1 week",
            "dependencies": []
        }
    ],
    "milestones": [
        {
            "title": "Milestone name",
            "target_date": "relative time like 'end of month 1'",
            "deliverables": ["deliverable1", "deliverable2"]
        }
    ],
    "risks": ["risk1", "risk2"],
    "next_steps": ["action1", "action2", "action3"]
}

Guidelines:
- Break down the project into 3-7 major roadmap steps
- Identify key milestones and deliverables
- Consider potential risks and mitigation strategies
- Provide specific, actionable next steps
- Base recommendations on the current task list and project status

Respond only with valid JSON, no additional text.`, project.Name, description, project.Status, tasksSummary)
}

// parsePlanContent tolerates ```json fences; an unparseable response
// degrades to an empty plan with an explanatory summary.
func parsePlanContent(response string) PlanContent {
	clean := strings.TrimSpace(response)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var content PlanContent
	if err := json.Unmarshal([]byte(clean), &content); err != nil {
		log.Printf("failed to parse LLM plan: %v", err)
		return PlanContent{Summary: "Failed to generate plan"}
	}
	if content.Summary == "" {
		content.Summary = "Project plan"
	}
	return content
}
