package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"testing"

	"nextfunnel-checkout/internal/config"
)

func newTestRazorpayClient() RazorpayClient {
	return NewRazorpayClient(&config.Razorpay{
		KeyID:         "rzp_test_key",
		KeySecret:     "key-secret",
		WebhookSecret: "webhook-secret",
	})
}

func signHex(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	c := newTestRazorpayClient()

	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"
	valid := signHex([]byte(orderID+"|"+paymentID), "key-secret")

	if !c.VerifyPaymentSignature(orderID, paymentID, valid) {
		t.Fatalf("expected valid signature to verify")
	}
	if c.VerifyPaymentSignature(orderID, "pay_other", valid) {
		t.Fatalf("expected signature for different payment id to fail")
	}
	if c.VerifyPaymentSignature(orderID, paymentID, "") {
		t.Fatalf("expected empty signature to fail")
	}
}

func TestVerifyPaymentSignatureRejectsMutations(t *testing.T) {
	c := newTestRazorpayClient()

	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"
	valid := signHex([]byte(orderID+"|"+paymentID), "key-secret")

	rng := rand.New(rand.NewSource(1))
	hexDigits := "0123456789abcdef"

	// Flip one hex digit at a random position, many times over. Every
	// mutated signature must be rejected.
	for i := 0; i < 256; i++ {
		pos := rng.Intn(len(valid))
		mutated := []byte(valid)
		for {
			d := hexDigits[rng.Intn(len(hexDigits))]
			if d != mutated[pos] {
				mutated[pos] = d
				break
			}
		}
		if c.VerifyPaymentSignature(orderID, paymentID, string(mutated)) {
			t.Fatalf("mutated signature %s verified", mutated)
		}
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := newTestRazorpayClient()

	body := []byte(`{"type":"payment.captured"}`)
	valid := signHex(body, "webhook-secret")

	if !c.VerifyWebhookSignature(body, valid) {
		t.Fatalf("expected valid webhook signature to verify")
	}

	// The HMAC covers the exact raw bytes: a single trailing whitespace
	// byte must break verification.
	if c.VerifyWebhookSignature(append(body, ' '), valid) {
		t.Fatalf("expected modified body to fail verification")
	}

	// Payment secret must not verify webhook payloads.
	if c.VerifyWebhookSignature(body, signHex(body, "key-secret")) {
		t.Fatalf("expected signature from wrong secret to fail")
	}
}
