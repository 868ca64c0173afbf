package service

import (
	"context"
	"errors"
	"testing"

	dom "planhub/internal/domain"
	"planhub/internal/llm"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// llmStub returns canned responses in order; once exhausted it repeats the
// last one. Errors are returned verbatim.
type llmStub struct {
	responses []string
	errs      []error
	calls     int
}

func (s *llmStub) Complete(_ context.Context, _ string, _ llm.Options) (llm.Response, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return llm.Response{}, s.errs[i]
	}
	if len(s.responses) == 0 {
		return llm.Response{}, errors.New("no canned response")
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return llm.Response{Content: s.responses[i], Model: "stub-model"}, nil
}

func (s *llmStub) ProviderName() string { return "stub" }

type inboxRepoStub struct {
	items []dom.InboxItem
}

func (s *inboxRepoStub) Create(_ context.Context, item dom.InboxItem) (dom.InboxItem, error) {
	item.ID = int64(len(s.items) + 1)
	s.items = append(s.items, item)
	return item, nil
}

func (s *inboxRepoStub) GetByID(_ context.Context, id int64) (dom.InboxItem, error) {
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return dom.InboxItem{}, pgx.ErrNoRows
}

func (s *inboxRepoStub) ListByUser(_ context.Context, userID int64, status string) ([]dom.InboxItem, error) {
	var out []dom.InboxItem
	for _, it := range s.items {
		if it.UserID == userID && (status == "" || it.Status == status) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *inboxRepoStub) Update(_ context.Context, item dom.InboxItem) (dom.InboxItem, error) {
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			return item, nil
		}
	}
	return dom.InboxItem{}, pgx.ErrNoRows
}

type projectRepoStub struct {
	projects []dom.Project
}

func (s *projectRepoStub) Create(_ context.Context, p dom.Project) (dom.Project, error) {
	p.ID = int64(len(s.projects) + 1)
	s.projects = append(s.projects, p)
	return p, nil
}

func (s *projectRepoStub) GetByID(_ context.Context, id int64) (dom.Project, error) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return dom.Project{}, pgx.ErrNoRows
}

func (s *projectRepoStub) ListByOwner(_ context.Context, ownerID int64) ([]dom.Project, error) {
	var out []dom.Project
	for _, p := range s.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *projectRepoStub) Update(_ context.Context, p dom.Project) (dom.Project, error) {
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			return p, nil
		}
	}
	return dom.Project{}, pgx.ErrNoRows
}

type llmLogStub struct {
	entries []dom.LLMCallLog
}

func (s *llmLogStub) Insert(_ context.Context, entry dom.LLMCallLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Classification
	}{
		{
			name:     "plain json",
			response: `{"action": "create_task", "project_name": "Website", "task_title": "Fix header", "task_priority": "high"}`,
			want:     Classification{Action: ActionCreateTask, ProjectName: "Website", TaskTitle: "Fix header", TaskPriority: "high"},
		},
		{
			name: "json fenced",
			response: "```json\n" +
				`{"action": "create_project", "project_name": "Migration"}` +
				"\n```",
			want: Classification{Action: ActionCreateProject, ProjectName: "Migration"},
		},
		{
			name:     "bare fence",
			response: "```\n{\"action\": \"no_action\", \"reasoning\": \"just a note\"}\n```",
			want:     Classification{Action: ActionNone, Reasoning: "just a note"},
		},
		{
			name:     "garbage degrades to no_action",
			response: "Sorry, I can't help with that.",
			want:     Classification{Action: ActionNone, Reasoning: "Failed to parse LLM response"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseClassification(tt.response))
		})
	}
}

func TestInboxCreate(t *testing.T) {
	svc := NewInboxService(&inboxRepoStub{}, &projectRepoStub{}, &taskRepoStub{}, &llmLogStub{}, nil, 1)

	item, err := svc.Create(context.Background(), 7, "  call the dentist  ", []string{"personal"})
	require.NoError(t, err)
	assert.Equal(t, "call the dentist", item.Content)
	assert.Equal(t, dom.InboxUnprocessed, item.Status)
	assert.Equal(t, []string{"personal"}, item.Tags)

	_, err = svc.Create(context.Background(), 7, "   ", nil)
	assert.Error(t, err)
}

func TestInboxProcess_CreateTask(t *testing.T) {
	const userID = 7
	items := &inboxRepoStub{}
	projects := &projectRepoStub{}
	tasks := &taskRepoStub{}
	logs := &llmLogStub{}
	client := &llmStub{responses: []string{
		`{"action": "create_task", "project_name": "Website", "task_title": "Fix header", "task_description": "Logo is cropped", "task_priority": "high"}`,
	}}
	svc := NewInboxService(items, projects, tasks, logs, client, 1)

	item, err := svc.Create(context.Background(), userID, "fix the cropped logo on the site", nil)
	require.NoError(t, err)

	result, err := svc.Process(context.Background(), userID, item.ID)
	require.NoError(t, err)

	assert.Equal(t, "processed", result.Status)
	require.NotNil(t, result.ProjectID)
	require.NotNil(t, result.TaskID)
	assert.Equal(t, dom.InboxProcessed, result.Item.Status)

	require.Len(t, projects.projects, 1)
	assert.Equal(t, "Website", projects.projects[0].Name)

	require.Len(t, tasks.tasks, 1)
	created := tasks.tasks[0]
	assert.Equal(t, "Fix header", created.Title)
	assert.Equal(t, dom.PriorityHigh, created.Priority)
	assert.Equal(t, dom.TaskPending, created.Status)
	require.NotNil(t, created.AssigneeID)
	assert.Equal(t, int64(userID), *created.AssigneeID)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, dom.LLMCallSuccess, logs.entries[0].Status)
}

func TestInboxProcess_CreateProject(t *testing.T) {
	const userID = 7
	items := &inboxRepoStub{}
	projects := &projectRepoStub{}
	client := &llmStub{responses: []string{
		`{"action": "create_project", "project_name": "Home renovation", "project_description": "Kitchen and bathroom"}`,
	}}
	svc := NewInboxService(items, projects, &taskRepoStub{}, &llmLogStub{}, client, 1)

	item, err := svc.Create(context.Background(), userID, "renovate the kitchen this year", nil)
	require.NoError(t, err)

	result, err := svc.Process(context.Background(), userID, item.ID)
	require.NoError(t, err)

	require.NotNil(t, result.ProjectID)
	assert.Nil(t, result.TaskID)
	require.Len(t, projects.projects, 1)
	assert.Equal(t, "Home renovation", projects.projects[0].Name)
	assert.Equal(t, dom.ProjectActive, projects.projects[0].Status)
}

func TestInboxProcess_NoAction(t *testing.T) {
	const userID = 7
	items := &inboxRepoStub{}
	projects := &projectRepoStub{}
	tasks := &taskRepoStub{}
	client := &llmStub{responses: []string{`{"action": "no_action", "reasoning": "just a thought"}`}}
	svc := NewInboxService(items, projects, tasks, &llmLogStub{}, client, 1)

	item, err := svc.Create(context.Background(), userID, "interesting article about planning", nil)
	require.NoError(t, err)

	result, err := svc.Process(context.Background(), userID, item.ID)
	require.NoError(t, err)

	assert.Nil(t, result.ProjectID)
	assert.Nil(t, result.TaskID)
	assert.Empty(t, projects.projects)
	assert.Empty(t, tasks.tasks)
	assert.Equal(t, dom.InboxProcessed, result.Item.Status)
}

func TestInboxProcess_CreateTaskWithoutProjectName(t *testing.T) {
	const userID = 7
	items := &inboxRepoStub{}
	projects := &projectRepoStub{}
	tasks := &taskRepoStub{}
	client := &llmStub{responses: []string{`{"action": "create_task", "task_title": "Orphan task"}`}}
	svc := NewInboxService(items, projects, tasks, &llmLogStub{}, client, 1)

	item, err := svc.Create(context.Background(), userID, "do the thing", nil)
	require.NoError(t, err)

	result, err := svc.Process(context.Background(), userID, item.ID)
	require.NoError(t, err)

	assert.Nil(t, result.ProjectID)
	assert.Nil(t, result.TaskID)
	assert.Empty(t, tasks.tasks)
	assert.Equal(t, dom.InboxProcessed, result.Item.Status)
}

func TestInboxProcess_AlreadyProcessed(t *testing.T) {
	const userID = 7
	items := &inboxRepoStub{}
	client := &llmStub{responses: []string{`{"action": "no_action"}`}}
	svc := NewInboxService(items, &projectRepoStub{}, &taskRepoStub{}, &llmLogStub{}, client, 1)

	item, err := svc.Create(context.Background(), userID, "note", nil)
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), userID, item.ID)
	require.NoError(t, err)
	result, err := svc.Process(context.Background(), userID, item.ID)
	require.NoError(t, err)

	assert.Equal(t, "already_processed", result.Status)
	assert.Equal(t, 1, client.calls)
}

func TestInboxProcess_RetriesThenSucceeds(t *testing.T) {
	const userID = 7
	items := &inboxRepoStub{}
	logs := &llmLogStub{}
	client := &llmStub{
		errs:      []error{errors.New("rate limited"), nil},
		responses: []string{"", `{"action": "no_action"}`},
	}
	svc := NewInboxService(items, &projectRepoStub{}, &taskRepoStub{}, logs, client, 3)

	item, err := svc.Create(context.Background(), userID, "note", nil)
	require.NoError(t, err)

	result, err := svc.Process(context.Background(), userID, item.ID)
	require.NoError(t, err)

	assert.Equal(t, "processed", result.Status)
	assert.Equal(t, 2, client.calls)
	require.Len(t, logs.entries, 2)
	assert.Equal(t, dom.LLMCallError, logs.entries[0].Status)
	assert.Equal(t, dom.LLMCallSuccess, logs.entries[1].Status)
}

func TestInboxProcess_NoClient(t *testing.T) {
	items := &inboxRepoStub{}
	svc := NewInboxService(items, &projectRepoStub{}, &taskRepoStub{}, &llmLogStub{}, nil, 1)

	item, err := svc.Create(context.Background(), 7, "note", nil)
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), 7, item.ID)
	assert.ErrorIs(t, err, ErrLLMUnavailable)
}

func TestInboxOwnership(t *testing.T) {
	items := &inboxRepoStub{}
	svc := NewInboxService(items, &projectRepoStub{}, &taskRepoStub{}, &llmLogStub{}, nil, 1)

	item, err := svc.Create(context.Background(), 7, "private note", nil)
	require.NoError(t, err)

	_, err = svc.Archive(context.Background(), 99, item.ID)
	assert.ErrorIs(t, err, ErrInboxItemNotFound)

	archived, err := svc.Archive(context.Background(), 7, item.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.InboxArchived, archived.Status)
}
