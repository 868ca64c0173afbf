package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"planhub/internal/auth"
	dom "planhub/internal/domain"
	"planhub/internal/dto"
	"planhub/internal/service"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateProjectRequest  true  "Project body"
// @Success      201   {object}  dto.ProjectResponse
// @Failure      400   {object}  map[string]string
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, projectToResponse(p))
}

// List godoc
// @Summary      List own projects
// @Tags         projects
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListProjectsResponse
// @Failure      500  {object}  map[string]string
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.ProjectResponse, len(list))
	for i := range list {
		out[i] = projectToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListProjectsResponse{Items: out})
}

// GetByID godoc
// @Summary      Get a project by ID
// @Tags         projects
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  dto.ProjectResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetByID(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondProjectErr(c, err)
		return
	}
	c.JSON(http.StatusOK, projectToResponse(p))
}

// Update godoc
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Project ID"
// @Param        body  body      dto.UpdateProjectRequest  true  "Partial update"
// @Success      200   {object}  dto.ProjectResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, req.Name, req.Description, req.Status)
	if err != nil {
		respondProjectErr(c, err)
		return
	}
	c.JSON(http.StatusOK, projectToResponse(p))
}

// Archive godoc
// @Summary      Archive a project
// @Tags         projects
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  dto.ProjectResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /projects/{id}/archive [post]
func (h *ProjectHandler) Archive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Archive(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondProjectErr(c, err)
		return
	}
	c.JSON(http.StatusOK, projectToResponse(p))
}

func respondProjectErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound), errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func projectToResponse(p dom.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
