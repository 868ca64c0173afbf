package service

import (
	"context"
	"testing"
	"time"

	dom "planhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskFixture() (*TaskService, *taskRepoStub, *projectRepoStub) {
	projects := &projectRepoStub{projects: []dom.Project{
		{ID: 1, Name: "MVP", Status: dom.ProjectActive, OwnerID: 7},
	}}
	tasks := &taskRepoStub{}
	return NewTaskService(tasks, projects), tasks, projects
}

func TestTaskCreate(t *testing.T) {
	svc, _, _ := newTaskFixture()

	task, err := svc.Create(context.Background(), 1, "  Design schema  ", "tables and indexes", "", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "Design schema", task.Title)
	assert.Equal(t, dom.TaskPending, task.Status)
	assert.Equal(t, dom.PriorityMedium, task.Priority)
}

func TestTaskCreate_Validation(t *testing.T) {
	svc, _, _ := newTaskFixture()

	_, err := svc.Create(context.Background(), 1, "   ", "", "", nil, nil)
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), 404, "valid title", "", "", nil, nil)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.Create(context.Background(), 1, "valid title", "", "asap", nil, nil)
	assert.Error(t, err)
}

func TestTaskUpdate(t *testing.T) {
	svc, _, _ := newTaskFixture()
	task, err := svc.Create(context.Background(), 1, "Old title", "", dom.PriorityLow, nil, nil)
	require.NoError(t, err)

	title := "New title"
	status := dom.TaskInProgress
	priority := dom.PriorityUrgent
	got, err := svc.Update(context.Background(), task.ID, &title, nil, &status, &priority, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, dom.TaskInProgress, got.Status)
	assert.Equal(t, dom.PriorityUrgent, got.Priority)
	assert.Nil(t, got.CompletedAt)
}

func TestTaskUpdate_CompletionSetsTimestamp(t *testing.T) {
	svc, _, _ := newTaskFixture()
	task, err := svc.Create(context.Background(), 1, "Finish me", "", "", nil, nil)
	require.NoError(t, err)

	status := dom.TaskCompleted
	got, err := svc.Update(context.Background(), task.ID, nil, nil, &status, nil, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, time.Now(), *got.CompletedAt, time.Minute)
}

func TestTaskUpdate_InvalidStatus(t *testing.T) {
	svc, _, _ := newTaskFixture()
	task, err := svc.Create(context.Background(), 1, "Task", "", "", nil, nil)
	require.NoError(t, err)

	status := "done"
	_, err = svc.Update(context.Background(), task.ID, nil, nil, &status, nil, nil, nil)
	assert.Error(t, err)

	_, err = svc.Update(context.Background(), 404, nil, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestProjectOwnership(t *testing.T) {
	projects := &projectRepoStub{}
	svc := NewProjectService(projects)

	created, err := svc.Create(context.Background(), 7, "Mine", "")
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 99, created.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.GetByID(context.Background(), 7, 404)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	got, err := svc.GetByID(context.Background(), 7, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Name)
}

func TestProjectArchive(t *testing.T) {
	projects := &projectRepoStub{}
	svc := NewProjectService(projects)

	created, err := svc.Create(context.Background(), 7, "Old initiative", "")
	require.NoError(t, err)

	archived, err := svc.Archive(context.Background(), 7, created.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.ProjectArchived, archived.Status)
}

func TestProjectUpdate_InvalidStatus(t *testing.T) {
	projects := &projectRepoStub{}
	svc := NewProjectService(projects)

	created, err := svc.Create(context.Background(), 7, "Project", "")
	require.NoError(t, err)

	bad := "paused"
	_, err = svc.Update(context.Background(), 7, created.ID, nil, nil, &bad)
	assert.Error(t, err)
}
