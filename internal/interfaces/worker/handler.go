// Package worker turns observation batches from the message bus into market
// reports.
package worker

import (
	"context"
	"time"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// Analyzer is the slice of the analysis service the worker needs.
type Analyzer interface {
	AnalyzeMarket(ctx context.Context, req analysis.MarketRequest) (*report.MarketReport, error)
}

// Subscriber registers topic handlers.
type Subscriber interface {
	Subscribe(topic string, handler kafka.MessageHandler)
}

// BatchHandler consumes observation batch envelopes.
type BatchHandler struct {
	analyzer Analyzer
	logger   logging.Logger
	timeout  time.Duration
}

// NewBatchHandler bounds each analysis by timeout; zero means no bound.
func NewBatchHandler(a Analyzer, log logging.Logger, timeout time.Duration) *BatchHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &BatchHandler{analyzer: a, logger: log.Named("worker"), timeout: timeout}
}

// Register subscribes h to topic.
func (h *BatchHandler) Register(s Subscriber, topic string) {
	if topic == "" {
		topic = kafka.TopicObservationBatch
	}
	s.Subscribe(topic, h.Handle)
}

// Handle analyses one batch.  Malformed or invalid batches fail permanently
// so the consumer dead-letters them without retrying.
func (h *BatchHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return kafka.Permanent(err)
	}
	if env.EventType != kafka.EventObservationBatch {
		return kafka.Permanent(errors.New(errors.ErrCodeObservationDecode, "unexpected event type").WithDetail(env.EventType))
	}

	var req analysis.MarketRequest
	if err := env.DecodePayload(&req); err != nil {
		return kafka.Permanent(err)
	}
	if err := req.Validate(); err != nil {
		return kafka.Permanent(err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	r, err := h.analyzer.AnalyzeMarket(ctx, req)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeMarketRequestInvalid) {
			return kafka.Permanent(err)
		}
		h.logger.Warn("batch analysis failed",
			logging.String("event_id", env.EventID),
			logging.String("cohort", req.CohortKey()),
			logging.Err(err))
		return err
	}

	h.logger.Info("batch analysed",
		logging.String("event_id", env.EventID),
		logging.ReportID(r.ID),
		logging.String("cohort", req.CohortKey()),
		logging.Int64("offset", msg.Offset),
		logging.Int("observations", len(req.Observations)))
	return nil
}

//Personal.AI order the ending
