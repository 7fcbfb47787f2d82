package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/modules/attachment/service"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/response"
)

type AttachmentHandler struct {
	service service.AttachmentService
}

func NewAttachmentHandler(service service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, apperror.Invalid("file", "file is required"))
		return
	}
	actor, _ := middleware.CurrentAccount(c)

	resp, err := h.service.UploadAttachment(c.Request.Context(), actor, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "File uploaded successfully", resp)
}
