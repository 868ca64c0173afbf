package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"planhub/internal/auth"
	dom "planhub/internal/domain"
	"planhub/internal/dto"
	"planhub/internal/service"

	"github.com/gin-gonic/gin"
)

// InboxHandler handles inbox capture and classification.
type InboxHandler struct {
	svc      *service.InboxService
	planning *service.PlanningService
}

func NewInboxHandler(svc *service.InboxService, planning *service.PlanningService) *InboxHandler {
	return &InboxHandler{svc: svc, planning: planning}
}

// Create godoc
// @Summary      Capture an inbox item
// @Tags         inbox
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateInboxItemRequest  true  "Item body"
// @Success      201   {object}  dto.InboxItemResponse
// @Failure      400   {object}  map[string]string
// @Router       /inbox [post]
func (h *InboxHandler) Create(c *gin.Context) {
	var req dto.CreateInboxItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Content, req.Tags)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, inboxItemToResponse(item))
}

// List godoc
// @Summary      List inbox items
// @Tags         inbox
// @Produce      json
// @Security     CookieAuth
// @Param        status  query     string  false  "Filter by status"
// @Success      200  {object}  dto.ListInboxItemsResponse
// @Failure      500  {object}  map[string]string
// @Router       /inbox [get]
func (h *InboxHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.InboxItemResponse, len(list))
	for i := range list {
		out[i] = inboxItemToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListInboxItemsResponse{Items: out})
}

// Classify godoc
// @Summary      Classify and route an inbox item via the LLM
// @Tags         inbox
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Inbox item ID"
// @Success      200  {object}  dto.ProcessInboxItemResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /inbox/{id}/classify [post]
func (h *InboxHandler) Classify(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(c)
	result, err := h.svc.Process(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInboxItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, service.ErrLLMUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classification is not configured"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// Freshly created projects get an initial plan in the background.
	if result.ProjectID != nil {
		projectID := *result.ProjectID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := h.planning.GenerateProjectPlan(ctx, projectID, userID, false); err != nil {
				log.Printf("auto-generate plan for project %d: %v", projectID, err)
			}
		}()
	}

	c.JSON(http.StatusOK, processResultToResponse(result))
}

// Archive godoc
// @Summary      Archive an inbox item
// @Tags         inbox
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Inbox item ID"
// @Success      200  {object}  dto.InboxItemResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /inbox/{id}/archive [post]
func (h *InboxHandler) Archive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.Archive(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrInboxItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inboxItemToResponse(item))
}

func inboxItemToResponse(item dom.InboxItem) dto.InboxItemResponse {
	return dto.InboxItemResponse{
		ID:        item.ID,
		Content:   item.Content,
		UserID:    item.UserID,
		ProjectID: item.ProjectID,
		TaskID:    item.TaskID,
		Status:    item.Status,
		Tags:      item.Tags,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func processResultToResponse(r service.ProcessResult) dto.ProcessInboxItemResponse {
	resp := dto.ProcessInboxItemResponse{
		Status:    r.Status,
		Item:      inboxItemToResponse(r.Item),
		ProjectID: r.ProjectID,
		TaskID:    r.TaskID,
	}
	if r.Classification != nil {
		resp.Classification = &dto.ClassificationResponse{
			Action:             r.Classification.Action,
			ProjectName:        r.Classification.ProjectName,
			ProjectDescription: r.Classification.ProjectDescription,
			TaskTitle:          r.Classification.TaskTitle,
			TaskDescription:    r.Classification.TaskDescription,
			TaskPriority:       r.Classification.TaskPriority,
			Reasoning:          r.Classification.Reasoning,
		}
	}
	return resp
}
