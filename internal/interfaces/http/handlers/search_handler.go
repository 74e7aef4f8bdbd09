package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// BusinessSearcher queries indexed businesses.
type BusinessSearcher interface {
	SearchBusinesses(ctx context.Context, q opensearch.BusinessQuery) (*opensearch.BusinessSearchResult, error)
}

// SearchHandler serves GET /api/v1/businesses/search.
type SearchHandler struct {
	searcher BusinessSearcher
}

func NewSearchHandler(s BusinessSearcher) *SearchHandler {
	return &SearchHandler{searcher: s}
}

// Search accepts q, industry, location, min_lead_score, offset and limit.
func (h *SearchHandler) Search(c *gin.Context) {
	offset, limit := parsePagination(c)
	q := opensearch.BusinessQuery{
		Text:     c.Query("q"),
		Industry: c.Query("industry"),
		Location: c.Query("location"),
		From:     offset,
		Size:     limit,
	}
	if v := c.Query("min_lead_score"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 100 {
			WriteError(c, errors.InvalidParam("min_lead_score must be within [0,100]").WithDetail(v))
			return
		}
		q.MinLeadScore = f
	}

	res, err := h.searcher.SearchBusinesses(c.Request.Context(), q)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

//Personal.AI order the ending
