package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRazorpay() *Razorpay {
	return NewRazorpay(&RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     "test_key_secret",
		WebhookSecret: "test_webhook_secret",
	})
}

func TestVerifyWebhookSignature(t *testing.T) {
	rz := newTestRazorpay()
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_123","order_id":"order_456","amount":49900}}}}`)

	t.Run("accepts its own signature", func(t *testing.T) {
		sig := rz.SignBody(body)
		assert.True(t, rz.VerifyWebhookSignature(body, sig))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		sig := rz.SignBody(body)
		tampered := make([]byte, len(body))
		copy(tampered, body)
		tampered[len(tampered)/2] ^= 0x01
		assert.False(t, rz.VerifyWebhookSignature(tampered, sig))
	})

	t.Run("rejects tampered signature", func(t *testing.T) {
		sig := rz.SignBody(body)
		bad := []byte(sig)
		if bad[0] == 'a' {
			bad[0] = 'b'
		} else {
			bad[0] = 'a'
		}
		assert.False(t, rz.VerifyWebhookSignature(body, string(bad)))
	})

	t.Run("rejects non-hex signature", func(t *testing.T) {
		assert.False(t, rz.VerifyWebhookSignature(body, "not-hex!"))
	})

	t.Run("rejects empty body", func(t *testing.T) {
		assert.False(t, rz.VerifyWebhookSignature(nil, rz.SignBody(nil)))
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		assert.False(t, rz.VerifyWebhookSignature(body, ""))
	})

	t.Run("fails closed without a configured secret", func(t *testing.T) {
		unconfigured := NewRazorpay(&RazorpayConfig{KeyID: "rzp_test_key"})
		assert.False(t, unconfigured.VerifyWebhookSignature(body, unconfigured.SignBody(body)))
	})

	t.Run("re-serialized body does not verify", func(t *testing.T) {
		// Equal JSON with reordered keys is a different byte sequence.
		// The signature must be computed over the wire bytes only.
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &decoded))
		reserialized, err := json.Marshal(decoded)
		require.NoError(t, err)
		require.NotEqual(t, body, reserialized)

		sig := rz.SignBody(body)
		assert.False(t, rz.VerifyWebhookSignature(reserialized, sig))
	})
}

func TestVerifyPaymentSignature(t *testing.T) {
	rz := newTestRazorpay()
	sign := func(payload string) string {
		withSecret := NewRazorpay(&RazorpayConfig{WebhookSecret: "test_key_secret"})
		return withSecret.SignBody([]byte(payload))
	}

	t.Run("accepts the order|payment digest", func(t *testing.T) {
		sig := sign("order_456|pay_123")
		assert.True(t, rz.VerifyPaymentSignature("order_456", "pay_123", sig))
	})

	t.Run("rejects a digest over swapped ids", func(t *testing.T) {
		sig := sign("pay_123|order_456")
		assert.False(t, rz.VerifyPaymentSignature("order_456", "pay_123", sig))
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		sig := sign("order_456|pay_123")
		assert.False(t, rz.VerifyPaymentSignature("", "pay_123", sig))
		assert.False(t, rz.VerifyPaymentSignature("order_456", "", sig))
		assert.False(t, rz.VerifyPaymentSignature("order_456", "pay_123", ""))
	})
}

func TestRazorpayDefaults(t *testing.T) {
	rz := NewRazorpay(&RazorpayConfig{KeyID: "rzp_test_key"})
	assert.Equal(t, "razorpay", rz.Name())
	assert.Equal(t, "rzp_test_key", rz.KeyID())
	assert.Equal(t, "https://api.razorpay.com/v1", rz.baseURL)
}
