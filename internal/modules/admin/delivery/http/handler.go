package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/modules/admin/dto"
	adminService "anoa.com/learnhub/internal/modules/admin/service"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/response"
	"anoa.com/learnhub/pkg/validator"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// moderationRequest parses the id and the optional reason body shared by
// every approve, reject and suspend route.
func moderationRequest(c *gin.Context) (uuid.UUID, string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("Invalid id"))
		return uuid.Nil, "", false
	}

	var req commonDto.ReasonRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ResponseError(c, validator.FormatValidationError(err))
			return uuid.Nil, "", false
		}
	}
	return id, req.Reason, true
}

var (
	studentMessages = map[approval.Action]string{
		approval.ActionApprove: "Student approved successfully",
		approval.ActionReject:  "Student rejected",
		approval.ActionSuspend: "Student suspended",
	}
	teacherMessages = map[approval.Action]string{
		approval.ActionApprove: "Teacher approved successfully",
		approval.ActionReject:  "Teacher rejected",
		approval.ActionSuspend: "Teacher suspended",
	}
	transactionMessages = map[approval.Action]string{
		approval.ActionApprove: "Transaction approved successfully",
		approval.ActionReject:  "Transaction rejected",
	}
)

// ModerateStudent serves PATCH /admin/students/:id/{approve|reject|suspend}.
func (h *AdminHandler) ModerateStudent(action approval.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, reason, ok := moderationRequest(c)
		if !ok {
			return
		}
		actor, _ := middleware.CurrentAccount(c)

		student, err := h.adminService.ModerateStudent(c.Request.Context(), actor, id, action, reason)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		response.Success(c, http.StatusOK, studentMessages[action], student)
	}
}

func (h *AdminHandler) ModerateTeacher(action approval.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, reason, ok := moderationRequest(c)
		if !ok {
			return
		}
		actor, _ := middleware.CurrentAccount(c)

		teacher, err := h.adminService.ModerateTeacher(c.Request.Context(), actor, id, action, reason)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		response.Success(c, http.StatusOK, teacherMessages[action], teacher)
	}
}

func (h *AdminHandler) ModerateTransaction(action approval.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, reason, ok := moderationRequest(c)
		if !ok {
			return
		}
		actor, _ := middleware.CurrentAccount(c)

		tx, err := h.adminService.ModerateTransaction(c.Request.Context(), actor, id, action, reason)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		response.Success(c, http.StatusOK, transactionMessages[action], tx)
	}
}

func (h *AdminHandler) GetPending(c *gin.Context) {
	queue, err := h.adminService.Pending(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", queue)
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	var filter dto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	users, err := h.adminService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", users)
}

func (h *AdminHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true, "User activated successfully")
}

func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false, "User deactivated successfully")
}

func (h *AdminHandler) setActive(c *gin.Context, active bool, message string) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("Invalid user id"))
		return
	}
	actor, _ := middleware.CurrentAccount(c)

	user, err := h.adminService.SetActive(c.Request.Context(), actor, id, active)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, message, user)
}
