package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	t.Run("payment capture payload", func(t *testing.T) {
		body := []byte(`{
			"event": "payment.captured",
			"payload": {
				"payment": {
					"entity": {
						"id": "pay_123",
						"order_id": "order_456",
						"amount": 49900,
						"currency": "INR",
						"email": "buyer@example.com",
						"contact": "+919999999999"
					}
				}
			}
		}`)

		env, err := ParseEnvelope(body)
		require.NoError(t, err)
		assert.Equal(t, "payment.captured", env.RawType)
		assert.Equal(t, EventPaymentCaptured, env.Type)
		assert.Equal(t, "pay_123", env.Fields.PaymentID)
		assert.Equal(t, "order_456", env.Fields.GatewayOrderID)
		assert.Equal(t, int64(49900), env.Fields.Amount)
		assert.Equal(t, "INR", env.Fields.Currency)
		assert.Equal(t, "buyer@example.com", env.Fields.Email)
	})

	t.Run("refund payload fills payment id from refund entity", func(t *testing.T) {
		body := []byte(`{
			"event": "refund.created",
			"payload": {
				"refund": {
					"entity": {"id": "rfnd_789", "payment_id": "pay_123", "amount": 49900, "currency": "INR"}
				}
			}
		}`)

		env, err := ParseEnvelope(body)
		require.NoError(t, err)
		assert.Equal(t, EventRefundCreated, env.Type)
		assert.Equal(t, "rfnd_789", env.Fields.RefundID)
		assert.Equal(t, "pay_123", env.Fields.PaymentID)
		assert.Equal(t, int64(49900), env.Fields.Amount)
	})

	t.Run("order entity fills gateway order id when payment lacks it", func(t *testing.T) {
		body := []byte(`{
			"event": "order.paid",
			"payload": {
				"order": {"entity": {"id": "order_456", "amount": 49900, "currency": "INR"}}
			}
		}`)

		env, err := ParseEnvelope(body)
		require.NoError(t, err)
		assert.Equal(t, "order_456", env.Fields.GatewayOrderID)
	})

	t.Run("missing fields stay zero valued", func(t *testing.T) {
		env, err := ParseEnvelope([]byte(`{"event": "payment.captured", "payload": {}}`))
		require.NoError(t, err)
		assert.Empty(t, env.Fields.PaymentID)
		assert.Empty(t, env.Fields.GatewayOrderID)
		assert.Zero(t, env.Fields.Amount)
	})

	t.Run("unknown event type maps to EventUnknown but keeps the raw string", func(t *testing.T) {
		env, err := ParseEnvelope([]byte(`{"event": "invoice.paid"}`))
		require.NoError(t, err)
		assert.Equal(t, EventUnknown, env.Type)
		assert.Equal(t, "invoice.paid", env.RawType)
	})

	t.Run("rejects non-JSON body", func(t *testing.T) {
		_, err := ParseEnvelope([]byte("not json"))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("rejects envelope without an event string", func(t *testing.T) {
		_, err := ParseEnvelope([]byte(`{"payload": {}}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestStableEventID(t *testing.T) {
	env := &Envelope{
		RawType: "payment.captured",
		Type:    EventPaymentCaptured,
		Fields:  ExtractedFields{PaymentID: "pay_123", GatewayOrderID: "order_456"},
	}

	t.Run("gateway header wins", func(t *testing.T) {
		assert.Equal(t, "evt_abc", StableEventID("evt_abc", env))
	})

	t.Run("composite fallback uses payment id and raw type", func(t *testing.T) {
		assert.Equal(t, "pay_123:payment.captured", StableEventID("", env))
	})

	t.Run("falls through refund then order ids", func(t *testing.T) {
		refundEnv := &Envelope{RawType: "refund.created", Fields: ExtractedFields{RefundID: "rfnd_789"}}
		assert.Equal(t, "rfnd_789:refund.created", StableEventID("", refundEnv))

		orderEnv := &Envelope{RawType: "order.paid", Fields: ExtractedFields{GatewayOrderID: "order_456"}}
		assert.Equal(t, "order_456:order.paid", StableEventID("", orderEnv))
	})

	t.Run("no identifiers at all flags unknown", func(t *testing.T) {
		empty := &Envelope{RawType: "payment.captured"}
		assert.Equal(t, EventIDUnknown, StableEventID("", empty))
	})
}

func TestParseEventType(t *testing.T) {
	assert.Equal(t, EventPaymentCaptured, ParseEventType("payment.captured"))
	assert.Equal(t, EventRefundCreated, ParseEventType("refund.created"))
	assert.Equal(t, EventUnknown, ParseEventType("something.else"))

	assert.True(t, EventPaymentCaptured.MutatesOrderState())
	assert.True(t, EventRefundCreated.MutatesOrderState())
	assert.False(t, EventDisputeCreated.MutatesOrderState())
	assert.False(t, EventUnknown.MutatesOrderState())
}
