package handlers

import (
	"errors"
	"net/http"

	"planhub/internal/auth"
	dom "planhub/internal/domain"
	"planhub/internal/dto"
	"planhub/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// Create godoc
// @Summary      Submit feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateFeedbackRequest  true  "Feedback body"
// @Success      201   {object}  dto.FeedbackResponse
// @Failure      400   {object}  map[string]string
// @Router       /feedback [post]
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Content,
		req.FeedbackType, req.ProjectID, req.TaskID, req.PlanVersionID, req.Rating)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, feedbackToResponse(f))
}

// List godoc
// @Summary      List own feedback
// @Tags         feedback
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListFeedbackResponse
// @Failure      500  {object}  map[string]string
// @Router       /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.FeedbackResponse, len(list))
	for i := range list {
		out[i] = feedbackToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListFeedbackResponse{Items: out})
}

// Resolve godoc
// @Summary      Mark feedback as resolved
// @Tags         feedback
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Feedback ID"
// @Success      200  {object}  dto.FeedbackResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /feedback/{id}/resolve [post]
func (h *FeedbackHandler) Resolve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	f, err := h.svc.Resolve(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrFeedbackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, feedbackToResponse(f))
}

func feedbackToResponse(f dom.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:            f.ID,
		Content:       f.Content,
		FeedbackType:  f.FeedbackType,
		ProjectID:     f.ProjectID,
		TaskID:        f.TaskID,
		PlanVersionID: f.PlanVersionID,
		UserID:        f.UserID,
		Rating:        f.Rating,
		IsResolved:    f.IsResolved,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}
