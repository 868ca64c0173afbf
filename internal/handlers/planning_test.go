package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dom "planhub/internal/domain"
	"planhub/internal/dto"
	"planhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID int64 = 7

type fakeTaskRepo struct {
	tasks []dom.Task
}

func (s *fakeTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	t.ID = int64(len(s.tasks) + 1)
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *fakeTaskRepo) GetByID(_ context.Context, id int64) (dom.Task, error) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (s *fakeTaskRepo) List(_ context.Context, _ *int64, _ string, _, _ int) ([]dom.Task, error) {
	return s.tasks, nil
}

func (s *fakeTaskRepo) ListByAssigneeAndStatuses(_ context.Context, userID int64, statuses []string) ([]dom.Task, error) {
	want := map[string]bool{}
	for _, st := range statuses {
		want[st] = true
	}
	var out []dom.Task
	for _, t := range s.tasks {
		if t.AssigneeID != nil && *t.AssigneeID == userID && want[t.Status] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTaskRepo) ListByProject(_ context.Context, projectID int64) ([]dom.Task, error) {
	var out []dom.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTaskRepo) Update(_ context.Context, t dom.Task) (dom.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return t, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (s *fakeTaskRepo) Delete(_ context.Context, id int64) error {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePlanRepo struct {
	lines  []dom.DailyPlanLine
	nextID int64
}

func lineInDay(l dom.DailyPlanLine, start, end time.Time) bool {
	return !l.Date.Before(start) && !l.Date.After(end)
}

func (s *fakePlanRepo) FindLines(_ context.Context, userID int64, dayStart, dayEnd time.Time) ([]dom.DailyPlanLine, error) {
	var out []dom.DailyPlanLine
	for _, l := range s.lines {
		if l.UserID == userID && lineInDay(l, dayStart, dayEnd) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakePlanRepo) FindLineForTask(_ context.Context, userID, taskID int64, dayStart, dayEnd time.Time) (dom.DailyPlanLine, error) {
	for _, l := range s.lines {
		if l.UserID == userID && l.TaskID != nil && *l.TaskID == taskID && lineInDay(l, dayStart, dayEnd) {
			return l, nil
		}
	}
	return dom.DailyPlanLine{}, pgx.ErrNoRows
}

func (s *fakePlanRepo) InsertLines(_ context.Context, lines []dom.DailyPlanLine) ([]dom.DailyPlanLine, error) {
	saved := make([]dom.DailyPlanLine, 0, len(lines))
	for _, l := range lines {
		s.nextID++
		l.ID = s.nextID
		s.lines = append(s.lines, l)
		saved = append(saved, l)
	}
	return saved, nil
}

func (s *fakePlanRepo) UpdateLine(_ context.Context, line dom.DailyPlanLine) error {
	for i := range s.lines {
		if s.lines[i].ID == line.ID {
			s.lines[i] = line
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newPlanningRouter(tasks *fakeTaskRepo, plans *fakePlanRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	planner := service.NewPlannerService(tasks, plans, nil)
	h := NewPlanningHandler(planner, nil)

	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("user_id", testUserID)
	})
	api.GET("/planning/daily/today", h.TodayPlan)
	api.POST("/planning/daily/generate", h.GenerateDailyPlan)
	api.POST("/planning/tasks/complete", h.CompleteTask)
	api.GET("/planning/daily/summary", h.DailySummary)
	return r
}

func assignedTask(id int64, priority, status string) dom.Task {
	uid := testUserID
	return dom.Task{
		ID: id, Title: "Task", Status: status, Priority: priority,
		ProjectID: 1, AssigneeID: &uid, CreatedAt: time.Now().AddDate(0, 0, -1),
	}
}

func TestTodayPlanEndpoint(t *testing.T) {
	tasks := &fakeTaskRepo{tasks: []dom.Task{
		assignedTask(1, dom.PriorityUrgent, dom.TaskPending),
		assignedTask(2, dom.PriorityLow, dom.TaskPending),
	}}
	r := newPlanningRouter(tasks, &fakePlanRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/planning/daily/today", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.DailyPlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Contains(t, resp.Items[0].SummaryText, "🔥")
	assert.False(t, resp.Items[0].Completed)
}

func TestGenerateDailyPlanEndpoint_BadDate(t *testing.T) {
	r := newPlanningRouter(&fakeTaskRepo{}, &fakePlanRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/planning/daily/generate",
		strings.NewReader(`{"target_date": "15.06.2025"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteTaskEndpoint(t *testing.T) {
	tasks := &fakeTaskRepo{tasks: []dom.Task{
		assignedTask(1, dom.PriorityHigh, dom.TaskInProgress),
	}}
	plans := &fakePlanRepo{}
	r := newPlanningRouter(tasks, plans)

	// Сначала план, потом завершение.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/planning/daily/today", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/planning/tasks/complete",
		strings.NewReader(`{"task_id": 1, "hours_worked": 90}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.MarkTaskCompleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.TaskID)
	assert.Equal(t, dom.TaskCompleted, resp.Status)
	require.NotNil(t, resp.CompletedAt)

	require.Len(t, plans.lines, 1)
	assert.Equal(t, 1, plans.lines[0].TasksCompleted)
	assert.Equal(t, 90, plans.lines[0].HoursWorked)
	assert.Contains(t, plans.lines[0].SummaryText, "✅ COMPLETED")
}

func TestCompleteTaskEndpoint_Errors(t *testing.T) {
	other := int64(99)
	foreign := assignedTask(2, dom.PriorityLow, dom.TaskPending)
	foreign.AssigneeID = &other
	tasks := &fakeTaskRepo{tasks: []dom.Task{foreign}}
	r := newPlanningRouter(tasks, &fakePlanRepo{})

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "missing task", body: `{"task_id": 404}`, wantCode: http.StatusNotFound},
		{name: "foreign task", body: `{"task_id": 2}`, wantCode: http.StatusForbidden},
		{name: "invalid body", body: `{}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/planning/tasks/complete", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestDailySummaryEndpoint(t *testing.T) {
	tasks := &fakeTaskRepo{tasks: []dom.Task{
		assignedTask(1, dom.PriorityUrgent, dom.TaskPending),
		assignedTask(2, dom.PriorityHigh, dom.TaskPending),
		assignedTask(3, dom.PriorityMedium, dom.TaskPending),
	}}
	plans := &fakePlanRepo{}
	r := newPlanningRouter(tasks, plans)

	day := time.Now().Format("2006-01-02")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/planning/daily/today", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/planning/tasks/complete",
		strings.NewReader(`{"task_id": 1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/planning/daily/summary", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.DailyPlanSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, day, resp.Date)
	assert.Equal(t, 3, resp.TotalTasks)
	assert.Equal(t, 1, resp.CompletedTasks)
	assert.InDelta(t, 33.33, resp.CompletionRate, 0.01)
	require.Len(t, resp.Lines, 3)
}
