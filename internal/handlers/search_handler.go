package handlers

import (
	"net/http"

	"portal_backend/internal/regions"

	"github.com/gin-gonic/gin"
)

// SearchHandler answers region autocomplete queries from the in-memory index.
type SearchHandler struct {
	*BaseHandler
	regions *regions.Index
}

func NewSearchHandler(base *BaseHandler, index *regions.Index) *SearchHandler {
	return &SearchHandler{
		BaseHandler: base,
		regions:     index,
	}
}

func (h *SearchHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/regions/search", h.SearchRegions)
}

// SearchRegions godoc
// @Summary Fuzzy search over provinces, regencies, districts and villages
// @Tags regions
// @Produce json
// @Param q query string true "Query"
// @Param limit query int false "Max results (default 10, max 50)"
// @Success 200 {object} map[string]interface{}
// @Router /regions/search [get]
func (h *SearchHandler) SearchRegions(c *gin.Context) {
	query := c.Query("q")
	limit := ParseQueryInt(c, "limit", regions.DefaultLimit)

	results := h.regions.Search(query, limit)
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
