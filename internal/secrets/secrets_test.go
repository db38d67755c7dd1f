package secrets

import (
	"bytes"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("0123456789abcdef0123456789abcdef"))
	box := NewBox(key)

	sealed, err := box.Seal("feed-password")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	opened, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "feed-password" {
		t.Fatalf("expected round-tripped password, got %q", opened)
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	var key [32]byte
	box := NewBox(key)

	a, err := box.Seal("same")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	b, err := box.Seal("same")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("expected distinct ciphertexts for repeated seals")
	}
}

func TestOpenRejectsTamperedValue(t *testing.T) {
	var key [32]byte
	box := NewBox(key)

	sealed, err := box.Seal("secret")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := box.Open(sealed); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}

	if _, err := box.Open([]byte("short")); err == nil {
		t.Fatal("expected error for truncated value")
	}
}
