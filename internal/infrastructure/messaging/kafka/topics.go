// Package kafka publishes engine outcomes as events for downstream consumers
// (notification pipeline, audit).  Only producing is owned here; consumers
// live at the boundary of other systems.
package kafka

// Topics carrying engine events.
const (
	TopicReconciliationReports = "arvore.reconciliation.reports"
	TopicMergeEvents           = "arvore.merge.events"
	TopicBirthdayEvents        = "arvore.birthday.events"
	TopicSubfamilySuggestions  = "arvore.subfamily.suggestions"
)

// Event types carried in the envelope.
const (
	EventTypeReconciliationReport = "reconciliation.report"
	EventTypeMergeCompleted       = "merge.completed"
	EventTypeBirthdays            = "birthdays.today"
	EventTypeSubfamilySuggested   = "subfamily.suggested"
)
