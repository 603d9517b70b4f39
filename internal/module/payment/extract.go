package payment

import "encoding/json"

// Envelope is the decoded webhook body. RawType keeps the gateway's
// literal event string even when it maps to EventUnknown. EventID is
// filled only for gateways that embed a delivery id in the body itself.
type Envelope struct {
	EventID string
	RawType string
	Type    EventType
	Fields  ExtractedFields
}

// ExtractedFields are the correlating identifiers pulled from the
// payload. Extraction is best effort: any field the payload lacks stays
// zero-valued, it never fails the request.
type ExtractedFields struct {
	PaymentID      string
	GatewayOrderID string
	RefundID       string
	Amount         int64
	Currency       string
	Email          string
	Contact        string
}

// DecodeEnvelope picks the envelope format for the gateway that
// delivered the body. Razorpay's shape is the default.
func DecodeEnvelope(gatewayName string, body []byte) (*Envelope, error) {
	if gatewayName == "stripe" {
		return ParseStripeEnvelope(body)
	}
	return ParseEnvelope(body)
}

// ParseEnvelope decodes a Razorpay webhook body. Only a top-level
// object with an "event" string is required; everything below is
// optional.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var raw struct {
		Event   string                     `json:"event"`
		Payload map[string]json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrMalformedPayload
	}
	if raw.Event == "" {
		return nil, ErrMalformedPayload
	}

	env := &Envelope{
		RawType: raw.Event,
		Type:    ParseEventType(raw.Event),
	}
	env.Fields = extractFields(raw.Payload)
	return env, nil
}

type entityWrapper struct {
	Entity json.RawMessage `json:"entity"`
}

type paymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

type refundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type orderEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func extractFields(payload map[string]json.RawMessage) ExtractedFields {
	var f ExtractedFields
	if payload == nil {
		return f
	}

	if raw, ok := unwrapEntity(payload, "payment"); ok {
		var p paymentEntity
		if json.Unmarshal(raw, &p) == nil {
			f.PaymentID = p.ID
			f.GatewayOrderID = p.OrderID
			f.Amount = p.Amount
			f.Currency = p.Currency
			f.Email = p.Email
			f.Contact = p.Contact
		}
	}

	if raw, ok := unwrapEntity(payload, "refund"); ok {
		var r refundEntity
		if json.Unmarshal(raw, &r) == nil {
			f.RefundID = r.ID
			if f.PaymentID == "" {
				f.PaymentID = r.PaymentID
			}
			if f.Amount == 0 {
				f.Amount = r.Amount
			}
			if f.Currency == "" {
				f.Currency = r.Currency
			}
		}
	}

	if raw, ok := unwrapEntity(payload, "order"); ok {
		var o orderEntity
		if json.Unmarshal(raw, &o) == nil {
			if f.GatewayOrderID == "" {
				f.GatewayOrderID = o.ID
			}
			if f.Amount == 0 {
				f.Amount = o.Amount
			}
			if f.Currency == "" {
				f.Currency = o.Currency
			}
		}
	}

	return f
}

func unwrapEntity(payload map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := payload[key]
	if !ok {
		return nil, false
	}
	var w entityWrapper
	if err := json.Unmarshal(raw, &w); err != nil || len(w.Entity) == 0 {
		return nil, false
	}
	return w.Entity, true
}

// EventIDUnknown is stored when no stable identifier could be derived
// from the delivery. Such events bypass deduplication entirely and rely
// on the order state machine to absorb replays.
const EventIDUnknown = "unknown"

// StableEventID derives a deduplication key for a delivery. The gateway
// header wins, then an id embedded in the envelope itself; otherwise a
// composite of the primary entity id and event type is close enough for
// the retry window. Deliveries with none of those are flagged unknown.
func StableEventID(headerID string, env *Envelope) string {
	if headerID != "" {
		return headerID
	}
	if env.EventID != "" {
		return env.EventID
	}
	entityID := env.Fields.PaymentID
	if entityID == "" {
		entityID = env.Fields.RefundID
	}
	if entityID == "" {
		entityID = env.Fields.GatewayOrderID
	}
	if entityID == "" {
		return EventIDUnknown
	}
	return entityID + ":" + env.RawType
}
