package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/modules/course/dto"
	"anoa.com/learnhub/internal/modules/course/service"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/response"
	"anoa.com/learnhub/pkg/validator"
)

type CourseHandler struct {
	service service.CourseService
}

func NewCourseHandler(service service.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("Invalid course id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}
	actor, _ := middleware.CurrentAccount(c)

	course, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Course created successfully. Awaiting admin approval.", course)
}

func (h *CourseHandler) List(c *gin.Context) {
	var filter dto.CourseFilter
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

func (h *CourseHandler) Search(c *gin.Context) {
	var req dto.SearchCourseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	page, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", page)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	viewer, _ := middleware.CurrentAccount(c)

	course, err := h.service.Get(c.Request.Context(), viewer, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}
	actor, _ := middleware.CurrentAccount(c)

	course, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Course updated successfully", course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentAccount(c)

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Course deleted successfully", nil)
}

func (h *CourseHandler) Approve(c *gin.Context) {
	h.moderate(c, approval.ActionApprove, "Course approved successfully")
}

func (h *CourseHandler) Reject(c *gin.Context) {
	h.moderate(c, approval.ActionReject, "Course rejected")
}

func (h *CourseHandler) Suspend(c *gin.Context) {
	h.moderate(c, approval.ActionSuspend, "Course suspended")
}

func (h *CourseHandler) moderate(c *gin.Context, action approval.Action, message string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req commonDto.ReasonRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ResponseError(c, validator.FormatValidationError(err))
			return
		}
	}
	actor, _ := middleware.CurrentAccount(c)

	course, err := h.service.Moderate(c.Request.Context(), actor, id, action, req.Reason)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, message, course)
}
