package handlers

import (
	"net/http"

	"bakai-assistant/web/services"
	"bakai-assistant/web/types"

	"github.com/gin-gonic/gin"
)

type QueryHandler struct {
	service *services.QueryService
}

func NewQueryHandler(service *services.QueryService) *QueryHandler {
	return &QueryHandler{service: service}
}

// Resolve handles POST /api/query.
func (h *QueryHandler) Resolve(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request")
		return
	}

	resp, err := h.service.Answer(c.Request.Context(), req.Query)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Categorize handles POST /api/categorize.
func (h *QueryHandler) Categorize(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request")
		return
	}

	resp, err := h.service.Categorize(req.Query)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
