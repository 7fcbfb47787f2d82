package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/modules/user/dto"
	"anoa.com/learnhub/internal/modules/user/service"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/response"
	"anoa.com/learnhub/pkg/validator"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.RegisterStudent(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Student registration successful. Awaiting admin approval.", res)
}

func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	var req dto.RegisterTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.RegisterTeacher(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Teacher registration successful. Awaiting admin approval.", res)
}

func (h *AuthHandler) RegisterReview(c *gin.Context) {
	var req dto.RegisterReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.RegisterReview(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Review user registration successful.", res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	req.ClientIP = c.ClientIP()
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Login successful", res)
}

func (h *AuthHandler) Me(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		response.ResponseError(c, apperror.Unauthorized("Authentication required"))
		return
	}

	res, err := h.service.Me(c.Request.Context(), account)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", res)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		response.ResponseError(c, apperror.Unauthorized("Authentication required"))
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), account, req); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password updated successfully", nil)
}
