package kafka

import (
	"context"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
)

// ReportEventPublisher announces persisted reports.
type ReportEventPublisher struct {
	events *EventPublisher
}

// NewReportEventPublisher publishes to topic, TopicReportCompleted when empty.
func NewReportEventPublisher(p Publisher, topic string) *ReportEventPublisher {
	if topic == "" {
		topic = TopicReportCompleted
	}
	return &ReportEventPublisher{events: NewEventPublisher(p, topic, EventReportCompleted)}
}

// PublishReportCompleted keys the event by report id so that events for one
// report stay ordered on a partition.
func (p *ReportEventPublisher) PublishReportCompleted(ctx context.Context, e report.CompletedEvent) error {
	_, err := p.events.Publish(ctx, e.ReportID.String(), e)
	return err
}

// BatchSubmitter queues observation batches for the worker.
type BatchSubmitter struct {
	events *EventPublisher
}

// NewBatchSubmitter publishes to topic, TopicObservationBatch when empty.
func NewBatchSubmitter(p Publisher, topic string) *BatchSubmitter {
	if topic == "" {
		topic = TopicObservationBatch
	}
	return &BatchSubmitter{events: NewEventPublisher(p, topic, EventObservationBatch)}
}

// SubmitBatch publishes batch keyed by key and returns the event id.  Batches
// for one cohort share a key and are therefore consumed in order.
func (s *BatchSubmitter) SubmitBatch(ctx context.Context, key string, batch interface{}) (string, error) {
	return s.events.Publish(ctx, key, batch)
}

//Personal.AI order the ending
