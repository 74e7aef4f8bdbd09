package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
)

// BatchSubmitter queues a batch for asynchronous analysis.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, key string, batch interface{}) (string, error)
}

// ObservationHandler accepts observation batches for the worker.
type ObservationHandler struct {
	submitter BatchSubmitter
}

func NewObservationHandler(s BatchSubmitter) *ObservationHandler {
	return &ObservationHandler{submitter: s}
}

// BatchAccepted is the 202 body of a queued batch.
type BatchAccepted struct {
	EventID string `json:"event_id"`
	Cohort  string `json:"cohort"`
}

// SubmitBatch handles POST /api/v1/observations/batches.  The batch is
// validated before it is queued.
func (h *ObservationHandler) SubmitBatch(c *gin.Context) {
	var req analysis.MarketRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(c, err)
		return
	}
	key := req.CohortKey()
	id, err := h.submitter.SubmitBatch(c.Request.Context(), key, req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, BatchAccepted{EventID: id, Cohort: key})
}

//Personal.AI order the ending
