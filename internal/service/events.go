package service

// Event names pushed to dashboard clients.
const (
	EventStateChanged      = "state_changed"
	EventWeekClosed        = "week_closed"
	EventCostsRecalculated = "costs_recalculated"
	EventDistributionPaid  = "distribution_paid"
)

// EventPublisher fans job-costing events out to connected clients. A nil
// publisher is allowed everywhere; emit() guards it.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

func emit(p EventPublisher, event string, payload interface{}) {
	if p != nil {
		p.Publish(event, payload)
	}
}
