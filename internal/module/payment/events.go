package payment

// EventType enumerates the gateway webhook event types this pipeline
// knows how to route. Anything else maps to EventUnknown, which is
// acknowledged and annotated but never processed.
type EventType string

const (
	EventPaymentCaptured       EventType = "payment.captured"
	EventPaymentFailed         EventType = "payment.failed"
	EventPaymentAuthorized     EventType = "payment.authorized"
	EventRefundCreated         EventType = "refund.created"
	EventOrderPaid             EventType = "order.paid"
	EventDisputeCreated        EventType = "payment.dispute.created"
	EventDisputeWon            EventType = "payment.dispute.won"
	EventDisputeLost           EventType = "payment.dispute.lost"
	EventDisputeClosed         EventType = "payment.dispute.closed"
	EventSubscriptionActivated EventType = "subscription.activated"
	EventSubscriptionCancelled EventType = "subscription.cancelled"
	EventUnknown               EventType = "unknown"
)

var knownEventTypes = map[string]EventType{
	string(EventPaymentCaptured):       EventPaymentCaptured,
	string(EventPaymentFailed):         EventPaymentFailed,
	string(EventPaymentAuthorized):     EventPaymentAuthorized,
	string(EventRefundCreated):         EventRefundCreated,
	string(EventOrderPaid):             EventOrderPaid,
	string(EventDisputeCreated):        EventDisputeCreated,
	string(EventDisputeWon):            EventDisputeWon,
	string(EventDisputeLost):           EventDisputeLost,
	string(EventDisputeClosed):         EventDisputeClosed,
	string(EventSubscriptionActivated): EventSubscriptionActivated,
	string(EventSubscriptionCancelled): EventSubscriptionCancelled,
}

// ParseEventType maps a raw event type string to the closed enum.
func ParseEventType(raw string) EventType {
	if t, ok := knownEventTypes[raw]; ok {
		return t
	}
	return EventUnknown
}

// MutatesOrderState reports whether the event type can transition an
// order. Dispute and subscription events are informational only.
func (t EventType) MutatesOrderState() bool {
	switch t {
	case EventPaymentCaptured, EventPaymentFailed, EventPaymentAuthorized,
		EventRefundCreated, EventOrderPaid:
		return true
	default:
		return false
	}
}
