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

var (
	ErrInboxItemNotFound = errors.New("inbox item not found")
	ErrLLMUnavailable    = errors.New("llm client is not configured")
)

// Classification actions.
const (
	ActionCreateProject = "create_project"
	ActionCreateTask    = "create_task"
	ActionAttach        = "attach_to_existing"
	ActionNone          = "no_action"
)

// Classification is the parsed LLM verdict for one inbox item.
type Classification struct {
	Action             string `json:"action"`
	ProjectName        string `json:"project_name,omitempty"`
	ProjectDescription string `json:"project_description,omitempty"`
	TaskTitle          string `json:"task_title,omitempty"`
	TaskDescription    string `json:"task_description,omitempty"`
	TaskPriority       string `json:"task_priority,omitempty"`
	Reasoning          string `json:"reasoning,omitempty"`
}

// ProcessResult reports what routing an inbox item produced.
type ProcessResult struct {
	Status         string
	Item           dom.InboxItem
	Classification *Classification
	ProjectID      *int64
	TaskID         *int64
}

// InboxService captures free-form notes and routes them into projects and
// tasks via LLM classification.
type InboxService struct {
	items    repo.InboxRepo
	projects repo.ProjectRepo
	tasks    repo.TaskRepo
	logs     repo.LLMLogRepo
	llm      llm.Client
	retries  int
}

// NewInboxService creates an InboxService. client may be nil, which disables
// classification but keeps capture working.
func NewInboxService(items repo.InboxRepo, projects repo.ProjectRepo, tasks repo.TaskRepo, logs repo.LLMLogRepo, client llm.Client, retries int) *InboxService {
	if retries <= 0 {
		retries = 3
	}
	return &InboxService{items: items, projects: projects, tasks: tasks, logs: logs, llm: client, retries: retries}
}

func (s *InboxService) Create(ctx context.Context, userID int64, content string, tags []string) (dom.InboxItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return dom.InboxItem{}, errors.New("content is required")
	}
	return s.items.Create(ctx, dom.InboxItem{
		Content: content,
		UserID:  userID,
		Status:  dom.InboxUnprocessed,
		Tags:    tags,
	})
}

func (s *InboxService) List(ctx context.Context, userID int64, status string) ([]dom.InboxItem, error) {
	return s.items.ListByUser(ctx, userID, status)
}

func (s *InboxService) Archive(ctx context.Context, userID, itemID int64) (dom.InboxItem, error) {
	item, err := s.getOwned(ctx, userID, itemID)
	if err != nil {
		return dom.InboxItem{}, err
	}
	item.Status = dom.InboxArchived
	return s.items.Update(ctx, item)
}

// Process classifies an unprocessed item and routes it: a new project, a new
// project+task, or nothing. Already processed items are returned untouched.
func (s *InboxService) Process(ctx context.Context, userID, itemID int64) (ProcessResult, error) {
	item, err := s.getOwned(ctx, userID, itemID)
	if err != nil {
		return ProcessResult{}, err
	}
	if item.Status != dom.InboxUnprocessed {
		return ProcessResult{Status: "already_processed", Item: item}, nil
	}

	classification, err := s.classify(ctx, item.Content, userID)
	if err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{Status: "processed", Classification: &classification}

	switch classification.Action {
	case ActionCreateProject:
		project, err := s.createProject(ctx, classification, userID)
		if err != nil {
			return ProcessResult{}, err
		}
		result.ProjectID = &project.ID
		item.ProjectID = &project.ID

	case ActionCreateTask:
		if classification.ProjectName == "" {
			log.Printf("inbox item %d: create_task without a project name, skipping", itemID)
			break
		}
		project, err := s.createProject(ctx, classification, userID)
		if err != nil {
			return ProcessResult{}, err
		}
		title := classification.TaskTitle
		if title == "" {
			title = "Untitled Task"
		}
		priority := classification.TaskPriority
		if !validPriority(priority) {
			priority = dom.PriorityMedium
		}
		task, err := s.tasks.Create(ctx, dom.Task{
			Title:       title,
			Description: classification.TaskDescription,
			Status:      dom.TaskPending,
			Priority:    priority,
			ProjectID:   project.ID,
			AssigneeID:  &userID,
		})
		if err != nil {
			return ProcessResult{}, err
		}
		result.ProjectID = &project.ID
		result.TaskID = &task.ID
		item.ProjectID = &project.ID
		item.TaskID = &task.ID
	}

	item.Status = dom.InboxProcessed
	item, err = s.items.Update(ctx, item)
	if err != nil {
		return ProcessResult{}, err
	}
	result.Item = item
	return result, nil
}

func (s *InboxService) createProject(ctx context.Context, c Classification, ownerID int64) (dom.Project, error) {
	name := c.ProjectName
	if name == "" {
		name = "Untitled Project"
	}
	return s.projects.Create(ctx, dom.Project{
		Name:        name,
		Description: c.ProjectDescription,
		Status:      dom.ProjectActive,
		OwnerID:     ownerID,
	})
}

// classify calls the LLM with retries and writes an audit row per attempt
// outcome. Backoff doubles from 2s, capped at 10s.
func (s *InboxService) classify(ctx context.Context, content string, userID int64) (Classification, error) {
	if s.llm == nil {
		return Classification{}, ErrLLMUnavailable
	}
	prompt := buildClassificationPrompt(content)

	var lastErr error
	backoff := 2 * time.Second
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return Classification{}, ctx.Err()
			}
			if backoff *= 2; backoff > 10*time.Second {
				backoff = 10 * time.Second
			}
		}

		start := time.Now()
		resp, err := s.llm.Complete(ctx, prompt, llm.Options{Temperature: 0.3, MaxTokens: 500})
		elapsed := int(time.Since(start).Milliseconds())
		if err != nil {
			lastErr = err
			s.logCall(ctx, userID, "", prompt, nil, nil, elapsed, err)
			continue
		}
		s.logCall(ctx, userID, resp.Model, prompt, &resp.Content, resp.TokensUsed, elapsed, nil)
		return parseClassification(resp.Content), nil
	}
	return Classification{}, fmt.Errorf("classify inbox item: %w", lastErr)
}

func (s *InboxService) logCall(ctx context.Context, userID int64, model, prompt string, response *string, tokens *int, elapsedMS int, callErr error) {
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

func (s *InboxService) getOwned(ctx context.Context, userID, itemID int64) (dom.InboxItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.InboxItem{}, ErrInboxItemNotFound
		}
		return dom.InboxItem{}, err
	}
	if item.UserID != userID {
		return dom.InboxItem{}, ErrInboxItemNotFound
	}
	return item, nil
}

func buildClassificationPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following inbox item and determine the best action to take.

Inbox item: %q

Respond with a JSON object with the following structure:
{
    "action": "create_project" | "create_task" | "attach_to_existing" | "no_action",
    "project_name": "optional project name if action is create_project",
    "project_description": "optional project description",
    "task_title": "optional task title if action is create_task",
    "task_description": "optional task description",
    "task_priority": "low" | "medium" | "high" | "urgent",
    "reasoning": "brief explanation of your decision"
}

Guidelines:
- Use "create_project" if the item describes a large initiative or goal
- Use "create_task" if the item is a specific actionable task
- Use "no_action" if the item is just a note or doesn't require action
- Keep names and descriptions concise and clear
- Infer appropriate priority based on urgency indicators in the text

Respond only with valid JSON, no additional text.`, content)
}

// parseClassification tolerates ```json fences around the payload. Anything
// unparseable degrades to no_action rather than failing the request.
func parseClassification(response string) Classification {
	clean := strings.TrimSpace(response)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var c Classification
	if err := json.Unmarshal([]byte(clean), &c); err != nil {
		log.Printf("failed to parse LLM classification: %v", err)
		return Classification{Action: ActionNone, Reasoning: "Failed to parse LLM response"}
	}
	return c
}
