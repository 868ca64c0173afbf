package handlers

import (
	"errors"
	"net/http"
	"time"

	"planhub/internal/auth"
	dom "planhub/internal/domain"
	"planhub/internal/dto"
	"planhub/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanningHandler exposes the daily planner and project plan generation.
type PlanningHandler struct {
	planner  *service.PlannerService
	planning *service.PlanningService
}

func NewPlanningHandler(planner *service.PlannerService, planning *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{planner: planner, planning: planning}
}

// GeneratePlan godoc
// @Summary      Generate a project plan version
// @Tags         planning
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.GeneratePlanRequest  true  "Generation request"
// @Success      201   {object}  dto.PlanVersionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /planning/generate [post]
func (h *PlanningHandler) GeneratePlan(c *gin.Context) {
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pv, err := h.planning.GenerateProjectPlan(c.Request.Context(), req.ProjectID,
		auth.UserIDFromContext(c), req.ForceRegenerate)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, planVersionToResponse(pv))
}

// LatestPlan godoc
// @Summary      Get the latest plan version for a project
// @Tags         planning
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  dto.PlanVersionResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /planning/projects/{id}/latest [get]
func (h *PlanningHandler) LatestPlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pv, err := h.planning.LatestPlan(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no plan found for this project"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, planVersionToResponse(pv))
}

// PlanContent godoc
// @Summary      Get the parsed content of the latest plan
// @Tags         planning
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  service.PlanContent
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /planning/projects/{id}/content [get]
func (h *PlanningHandler) PlanContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	content, err := h.planning.LatestPlanContent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no plan found for this project"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, content)
}

// TodayPlan godoc
// @Summary      Get today's daily plan, generating it if absent
// @Tags         planning
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.DailyPlanResponse
// @Failure      500  {object}  map[string]string
// @Router       /planning/daily/today [get]
func (h *PlanningHandler) TodayPlan(c *gin.Context) {
	lines, err := h.planner.GetOrGeneratePlan(c.Request.Context(), auth.UserIDFromContext(c), time.Time{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.DailyPlanResponse{Items: linesToResponses(lines)})
}

// GenerateDailyPlan godoc
// @Summary      Generate the daily plan for a given date
// @Tags         planning
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.GenerateDailyPlanRequest  true  "Target date"
// @Success      200   {object}  dto.DailyPlanResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /planning/daily/generate [post]
func (h *PlanningHandler) GenerateDailyPlan(c *gin.Context) {
	var req dto.GenerateDailyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var target time.Time
	if req.TargetDate != "" {
		parsed, err := time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target_date: use YYYY-MM-DD"})
			return
		}
		target = parsed
	}
	lines, err := h.planner.GetOrGeneratePlan(c.Request.Context(), auth.UserIDFromContext(c), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.DailyPlanResponse{Items: linesToResponses(lines)})
}

// CompleteTask godoc
// @Summary      Mark a task complete and reconcile today's plan
// @Tags         planning
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.MarkTaskCompleteRequest  true  "Completion"
// @Success      200   {object}  dto.MarkTaskCompleteResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /planning/tasks/complete [post]
func (h *PlanningHandler) CompleteTask(c *gin.Context) {
	var req dto.MarkTaskCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.planner.MarkTaskComplete(c.Request.Context(), req.TaskID,
		auth.UserIDFromContext(c), req.HoursWorked)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, service.ErrNotAssignee):
			c.JSON(http.StatusForbidden, gin.H{"error": "task not assigned to you"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, dto.MarkTaskCompleteResponse{
		TaskID:      t.ID,
		Status:      t.Status,
		CompletedAt: t.CompletedAt,
	})
}

// DailySummary godoc
// @Summary      Get the daily plan summary for a date
// @Tags         planning
// @Produce      json
// @Security     CookieAuth
// @Param        date  query     string  false  "Date (YYYY-MM-DD), default today"
// @Success      200   {object}  dto.DailyPlanSummaryResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /planning/daily/summary [get]
func (h *PlanningHandler) DailySummary(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date: use YYYY-MM-DD"})
			return
		}
		date = parsed
	}
	summary, err := h.planner.GetPlanSummary(c.Request.Context(), auth.UserIDFromContext(c), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.DailyPlanSummaryResponse{
		Date:             summary.Date.Format("2006-01-02"),
		TotalTasks:       summary.TotalTasks,
		CompletedTasks:   summary.CompletedTasks,
		CompletionRate:   summary.CompletionRate,
		TotalHoursWorked: summary.TotalHoursWorked,
		Lines:            linesToResponses(summary.Lines),
	})
}

func planVersionToResponse(pv dom.PlanVersion) dto.PlanVersionResponse {
	return dto.PlanVersionResponse{
		ID:            pv.ID,
		VersionNumber: pv.VersionNumber,
		Content:       pv.Content,
		ProjectID:     pv.ProjectID,
		CreatedBy:     pv.CreatedBy,
		CreatedAt:     pv.CreatedAt,
	}
}

func linesToResponses(lines []dom.DailyPlanLine) []dto.DailyPlanLineResponse {
	out := make([]dto.DailyPlanLineResponse, len(lines))
	for i, l := range lines {
		out[i] = dto.DailyPlanLineResponse{
			ID:          l.ID,
			Date:        l.Date,
			SummaryText: l.SummaryText,
			UserID:      l.UserID,
			TaskID:      l.TaskID,
			Completed:   l.TasksCompleted > 0,
			HoursWorked: l.HoursWorked,
			CreatedAt:   l.CreatedAt,
		}
	}
	return out
}
