package razorpay

import (
	"strings"
	"testing"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	secret := "rzp_test_secret"
	sig := SignPayment("order_abc", "pay_xyz", secret)

	if !VerifySignature("order_abc", "pay_xyz", sig, secret) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	secret := "rzp_test_secret"
	sig := SignPayment("order_abc", "pay_xyz", secret)

	if VerifySignature("order_abc", "pay_other", sig, secret) {
		t.Fatal("signature for a different payment should not verify")
	}
	if VerifySignature("order_other", "pay_xyz", sig, secret) {
		t.Fatal("signature for a different order should not verify")
	}
	if VerifySignature("order_abc", "pay_xyz", sig, "wrong_secret") {
		t.Fatal("signature with the wrong secret should not verify")
	}

	flipped := sig[:len(sig)-1]
	if sig[len(sig)-1] == 'a' {
		flipped += "b"
	} else {
		flipped += "a"
	}
	if VerifySignature("order_abc", "pay_xyz", flipped, secret) {
		t.Fatal("mutated signature should not verify")
	}
}

func TestVerifySignatureRejectsMalformedHex(t *testing.T) {
	if VerifySignature("order_abc", "pay_xyz", "not-hex!", "secret") {
		t.Fatal("malformed hex should not verify")
	}
	if VerifySignature("order_abc", "pay_xyz", "", "secret") {
		t.Fatal("empty signature should not verify")
	}
}

func TestSignPaymentIsLowercaseHex(t *testing.T) {
	sig := SignPayment("order_abc", "pay_xyz", "secret")
	if len(sig) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(sig))
	}
	if sig != strings.ToLower(sig) {
		t.Fatal("expected lowercase hex encoding")
	}
}
