package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStripeEnvelope(t *testing.T) {
	t.Run("decodes a succeeded payment intent", func(t *testing.T) {
		body := []byte(`{
			"id": "evt_1",
			"type": "payment_intent.succeeded",
			"data": {"object": {
				"object": "payment_intent",
				"id": "pi_123",
				"amount": 49900,
				"currency": "inr",
				"receipt_email": "buyer@example.com"
			}}
		}`)

		env, err := ParseStripeEnvelope(body)
		require.NoError(t, err)

		assert.Equal(t, "evt_1", env.EventID)
		assert.Equal(t, "payment_intent.succeeded", env.RawType)
		assert.Equal(t, EventPaymentCaptured, env.Type)
		assert.Equal(t, "pi_123", env.Fields.GatewayOrderID)
		assert.Equal(t, "pi_123", env.Fields.PaymentID)
		assert.Equal(t, int64(49900), env.Fields.Amount)
		assert.Equal(t, "inr", env.Fields.Currency)
		assert.Equal(t, "buyer@example.com", env.Fields.Email)
	})

	t.Run("decodes a refund with its intent reference", func(t *testing.T) {
		body := []byte(`{
			"id": "evt_2",
			"type": "refund.created",
			"data": {"object": {
				"object": "refund",
				"id": "re_456",
				"payment_intent": "pi_123",
				"amount": 49900,
				"currency": "inr"
			}}
		}`)

		env, err := ParseStripeEnvelope(body)
		require.NoError(t, err)

		assert.Equal(t, EventRefundCreated, env.Type)
		assert.Equal(t, "re_456", env.Fields.RefundID)
		assert.Equal(t, "pi_123", env.Fields.PaymentID)
	})

	t.Run("decodes a dispute through its intent reference", func(t *testing.T) {
		body := []byte(`{
			"id": "evt_3",
			"type": "charge.dispute.created",
			"data": {"object": {
				"object": "dispute",
				"id": "dp_789",
				"payment_intent": "pi_123",
				"amount": 49900,
				"currency": "inr"
			}}
		}`)

		env, err := ParseStripeEnvelope(body)
		require.NoError(t, err)

		assert.Equal(t, EventDisputeCreated, env.Type)
		assert.Equal(t, "pi_123", env.Fields.PaymentID)
	})

	t.Run("unmapped types keep the literal string", func(t *testing.T) {
		body := []byte(`{"id": "evt_4", "type": "invoice.paid", "data": {"object": {"object": "invoice"}}}`)

		env, err := ParseStripeEnvelope(body)
		require.NoError(t, err)

		assert.Equal(t, EventUnknown, env.Type)
		assert.Equal(t, "invoice.paid", env.RawType)
	})

	t.Run("missing type is malformed", func(t *testing.T) {
		_, err := ParseStripeEnvelope([]byte(`{"id": "evt_5", "data": {}}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("non-JSON is malformed", func(t *testing.T) {
		_, err := ParseStripeEnvelope([]byte(`not json`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestDecodeEnvelope(t *testing.T) {
	stripeBody := []byte(`{"id": "evt_1", "type": "payment_intent.succeeded", "data": {"object": {"object": "payment_intent", "id": "pi_123"}}}`)
	razorpayBody := []byte(`{"event": "payment.captured", "payload": {"payment": {"entity": {"id": "pay_123"}}}}`)

	t.Run("routes by gateway name", func(t *testing.T) {
		env, err := DecodeEnvelope("stripe", stripeBody)
		require.NoError(t, err)
		assert.Equal(t, EventPaymentCaptured, env.Type)
		assert.Equal(t, "evt_1", env.EventID)

		env, err = DecodeEnvelope("razorpay", razorpayBody)
		require.NoError(t, err)
		assert.Equal(t, EventPaymentCaptured, env.Type)
		assert.Empty(t, env.EventID)
	})

	t.Run("stripe bodies do not parse as the default shape", func(t *testing.T) {
		_, err := DecodeEnvelope("razorpay", stripeBody)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestStableEventIDPrefersEnvelope(t *testing.T) {
	env := &Envelope{
		EventID: "evt_1",
		RawType: "payment_intent.succeeded",
		Fields:  ExtractedFields{PaymentID: "pi_123"},
	}

	assert.Equal(t, "hdr_1", StableEventID("hdr_1", env))
	assert.Equal(t, "evt_1", StableEventID("", env))
}
