package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-app/colegio-api/internal/service"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/response"
)

// CurriculumHandler exposes malla endpoints.
type CurriculumHandler struct {
	service *service.CurriculumService
}

func NewCurriculumHandler(svc *service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{service: svc}
}

// List godoc
// @Summary List curricula
// @Tags Curricula
// @Produce json
// @Security BearerAuth
// @Param q query string false "Free text"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Page
// @Router /mallas [get]
func (h *CurriculumHandler) List(c *gin.Context) {
	mallas, meta, err := h.service.List(c.Request.Context(), parsePageRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, mallas, meta)
}

// Get godoc
// @Summary Get one curriculum
// @Tags Curricula
// @Produce json
// @Security BearerAuth
// @Param id path string true "Curriculum ID"
// @Success 200 {object} response.Envelope
// @Router /mallas/{id} [get]
func (h *CurriculumHandler) Get(c *gin.Context) {
	malla, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, malla)
}

// Create godoc
// @Summary Create a curriculum
// @Tags Curricula
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateCurriculumRequest true "Curriculum payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mallas [post]
func (h *CurriculumHandler) Create(c *gin.Context) {
	var req service.CreateCurriculumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	malla, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, malla)
}

// Update godoc
// @Summary Update a curriculum
// @Tags Curricula
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Curriculum ID"
// @Param payload body service.UpdateCurriculumRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Router /mallas/{id} [put]
func (h *CurriculumHandler) Update(c *gin.Context) {
	var req service.UpdateCurriculumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	malla, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, malla)
}

// Delete godoc
// @Summary Remove an unreferenced curriculum
// @Tags Curricula
// @Security BearerAuth
// @Param id path string true "Curriculum ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /mallas/{id} [delete]
func (h *CurriculumHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
