package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-app/colegio-api/internal/service"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/response"
)

// StudentHandler exposes roster endpoints. All of them are admin-only.
type StudentHandler struct {
	service *service.StudentService
}

func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param nivel query string false "Education level"
// @Param grado query string false "Grade label"
// @Param turno query string false "Shift"
// @Param paralelo query string false "Parallel letter"
// @Param q query string false "Free text (names or rude)"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Page
// @Router /estudiantes [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, meta, err := h.service.List(c.Request.Context(), parsePageRequest(c), parseAcademicFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, students, meta)
}

// Get godoc
// @Summary Get one student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /estudiantes/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Enrol a student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /estudiantes [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Router /estudiantes/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Remove a student
// @Tags Students
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 204
// @Router /estudiantes/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Bulk-enrol students from a spreadsheet
// @Tags Students
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "xlsx with rude | nombres | apellidos"
// @Success 200 {object} response.Envelope
// @Router /estudiantes/import [post]
func (h *StudentHandler) Import(c *gin.Context) {
	data, _, _, err := readUpload(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(data) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	result, err := h.service.ImportXLSX(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// BulkDelete godoc
// @Summary Bulk-remove students listed in a spreadsheet
// @Tags Students
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "xlsx with rude in the first column"
// @Success 200 {object} response.Envelope
// @Router /estudiantes/bulk-delete [post]
func (h *StudentHandler) BulkDelete(c *gin.Context) {
	data, _, _, err := readUpload(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(data) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	result, err := h.service.BulkDeleteXLSX(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
