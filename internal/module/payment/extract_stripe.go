package payment

import "encoding/json"

// Stripe event types folded into the shared enum. Orders map to payment
// intents, so the intent id doubles as the gateway order reference.
var stripeEventTypes = map[string]EventType{
	"payment_intent.succeeded":        EventPaymentCaptured,
	"payment_intent.processing":       EventPaymentAuthorized,
	"payment_intent.payment_failed":   EventPaymentFailed,
	"refund.created":                  EventRefundCreated,
	"charge.refunded":                 EventRefundCreated,
	"charge.dispute.created":          EventDisputeCreated,
	"charge.dispute.closed":           EventDisputeClosed,
	"charge.dispute.funds_withdrawn":  EventDisputeLost,
	"charge.dispute.funds_reinstated": EventDisputeWon,
}

// ParseStripeEnvelope decodes a Stripe webhook body: a top-level event
// with "id", "type" and the affected object under data.object. The
// event's own id feeds deduplication, so no header fallback is needed.
func ParseStripeEnvelope(body []byte) (*Envelope, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrMalformedPayload
	}
	if raw.Type == "" {
		return nil, ErrMalformedPayload
	}

	env := &Envelope{
		EventID: raw.ID,
		RawType: raw.Type,
		Type:    EventUnknown,
	}
	if t, ok := stripeEventTypes[raw.Type]; ok {
		env.Type = t
	}
	env.Fields = extractStripeFields(raw.Data.Object)
	return env, nil
}

type stripeIntentObject struct {
	Object       string `json:"object"`
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ReceiptEmail string `json:"receipt_email"`
}

type stripeRefundObject struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type stripeChargeObject struct {
	PaymentIntent string `json:"payment_intent"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

func extractStripeFields(object json.RawMessage) ExtractedFields {
	var f ExtractedFields
	if len(object) == 0 {
		return f
	}

	var kind struct {
		Object string `json:"object"`
	}
	if json.Unmarshal(object, &kind) != nil {
		return f
	}

	switch kind.Object {
	case "payment_intent":
		var pi stripeIntentObject
		if json.Unmarshal(object, &pi) == nil {
			// The intent id is both the order reference handed out at
			// checkout and the payment identifier stored on capture.
			f.GatewayOrderID = pi.ID
			f.PaymentID = pi.ID
			f.Amount = pi.Amount
			f.Currency = pi.Currency
			f.Email = pi.ReceiptEmail
		}
	case "refund":
		var re stripeRefundObject
		if json.Unmarshal(object, &re) == nil {
			f.RefundID = re.ID
			f.PaymentID = re.PaymentIntent
			f.Amount = re.Amount
			f.Currency = re.Currency
		}
	case "charge", "dispute":
		var ch stripeChargeObject
		if json.Unmarshal(object, &ch) == nil {
			f.PaymentID = ch.PaymentIntent
			f.Amount = ch.Amount
			f.Currency = ch.Currency
		}
	}

	return f
}
