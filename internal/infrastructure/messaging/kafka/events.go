package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/minhaarvore/arvore/internal/application/consistency"
	"github.com/minhaarvore/arvore/internal/application/dedup"
	appsubfamily "github.com/minhaarvore/arvore/internal/application/subfamily"
	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// Envelope is the wire shape of every published event.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventPublisher adapts the producer to the event contracts of the
// application services.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher wraps a producer.
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishReport emits a reconciliation report.
func (p *EventPublisher) PublishReport(ctx context.Context, report *consistency.Report) error {
	return p.publish(ctx, TopicReconciliationReports, EventTypeReconciliationReport, nil, report)
}

// PublishMerge emits a merge-completed event keyed by the canonical id so
// consumers see merges of the same person in order.
func (p *EventPublisher) PublishMerge(ctx context.Context, result *dedup.MergeResult) error {
	var key []byte
	if result.Merged != nil {
		key = []byte(result.Merged.ID)
	}
	return p.publish(ctx, TopicMergeEvents, EventTypeMergeCompleted, key, result)
}

// PublishSuggestions emits the subfamily suggestions of one detection run.
func (p *EventPublisher) PublishSuggestions(ctx context.Context, suggestions []appsubfamily.Suggestion) error {
	return p.publish(ctx, TopicSubfamilySuggestions, EventTypeSubfamilySuggested, nil, suggestions)
}

// BirthdayPayload is the birthday event body.
type BirthdayPayload struct {
	Day     string   `json:"day"` // YYYY-MM-DD
	Persons []Person `json:"persons"`
}

// Person is the trimmed projection carried in birthday events.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// PublishBirthdays emits the persons celebrating on day.
func (p *EventPublisher) PublishBirthdays(ctx context.Context, day time.Time, celebrating []*person.Person, ages []int) error {
	payload := BirthdayPayload{Day: day.Format("2006-01-02")}
	for i, pr := range celebrating {
		entry := Person{ID: pr.ID, Name: pr.Name}
		if i < len(ages) {
			entry.Age = ages[i]
		}
		payload.Persons = append(payload.Persons, entry)
	}
	return p.publish(ctx, TopicBirthdayEvents, EventTypeBirthdays, []byte(payload.Day), payload)
}

func (p *EventPublisher) publish(ctx context.Context, topic, eventType string, key []byte, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event payload")
	}
	envelope, err := json.Marshal(Envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}
	return p.producer.Publish(ctx, topic, key, envelope)
}
