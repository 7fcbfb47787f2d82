package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/modules/teacher/dto"
	"anoa.com/learnhub/internal/modules/teacher/service"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/response"
	"anoa.com/learnhub/pkg/validator"
)

type TeacherHandler struct {
	service service.TeacherService
}

func NewTeacherHandler(service service.TeacherService) *TeacherHandler {
	return &TeacherHandler{service: service}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("Invalid teacher id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *TeacherHandler) List(c *gin.Context) {
	var filter dto.TeacherFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}
	viewer, _ := middleware.CurrentAccount(c)

	page, err := h.service.List(c.Request.Context(), viewer, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", page)
}

func (h *TeacherHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	viewer, _ := middleware.CurrentAccount(c)

	teacher, err := h.service.Get(c.Request.Context(), viewer, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", teacher)
}

func (h *TeacherHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentAccount(c)

	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	teacher, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Teacher profile updated successfully", teacher)
}

func (h *TeacherHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentAccount(c)

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Teacher deleted successfully", nil)
}
