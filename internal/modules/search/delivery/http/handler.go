package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	searchDto "github.com/workbridge-app/workbridge/internal/modules/search/dto"
	search "github.com/workbridge-app/workbridge/internal/modules/search/service"
	"github.com/workbridge-app/workbridge/pkg/response"
	"github.com/workbridge-app/workbridge/pkg/validator"
)

type SearchHandler struct {
	service search.Service
}

func NewSearchHandler(service search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var query searchDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
