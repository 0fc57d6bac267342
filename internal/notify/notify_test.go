package notify

import (
	"encoding/base64"
	"testing"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}
	if pub == "" || priv == "" {
		t.Fatal("expected non-empty key pair")
	}

	// Public key decodes to an uncompressed P-256 point (65 bytes).
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}
	if pubBytes[0] != 0x04 {
		t.Errorf("public key prefix = %#x, want 0x04 (uncompressed point)", pubBytes[0])
	}

	// Private key decodes to the 32-byte P-256 scalar.
	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}
}

func TestGenerateVAPIDKeysUnique(t *testing.T) {
	pub1, _, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate first pair: %v", err)
	}
	pub2, _, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate second pair: %v", err)
	}
	if pub1 == pub2 {
		t.Error("two generated key pairs should differ")
	}
}

func TestServiceEnabled(t *testing.T) {
	s := NewService(Config{}, nil, nil, nil)
	if s.Enabled() {
		t.Error("service without VAPID keys should be disabled")
	}

	s = NewService(Config{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv"}, nil, nil, nil)
	if !s.Enabled() {
		t.Error("service with both VAPID keys should be enabled")
	}
}
