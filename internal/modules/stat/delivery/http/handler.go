package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	statService "anoa.com/learnhub/internal/modules/stat/service"
	"anoa.com/learnhub/pkg/response"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

func (h *StatHandler) Health(c *gin.Context) {
	report, ok := h.statService.Health(c.Request.Context())
	code := http.StatusOK
	if !ok {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

func (h *StatHandler) Overview(c *gin.Context) {
	overview, err := h.statService.Overview(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", overview)
}
