package fieldcrypt

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsBadKey(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil key")
	}
	if _, err := New(bytes.Repeat([]byte{1}, 16)); err == nil {
		t.Fatalf("expected error for short key")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := testCodec(t)
	for _, sin := range []string{"046454286", "000000000", "999 999 999", ""} {
		blob, err := c.Encrypt(sin)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", sin, err)
		}
		got, ok := c.Decrypt(blob)
		if !ok {
			t.Fatalf("Decrypt(%q blob) not ok", sin)
		}
		if got != sin {
			t.Fatalf("round trip mismatch: got %q want %q", got, sin)
		}
	}
}

func TestEncryptIsProbabilistic(t *testing.T) {
	c := testCodec(t)
	a, err := c.Encrypt("046454286")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := c.Encrypt("046454286")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if a == b {
		t.Fatalf("two encryptions of the same plaintext produced identical blobs")
	}
}

func TestDecryptMalformedInput(t *testing.T) {
	c := testCodec(t)
	cases := []string{
		"not-base64!!!",
		"",
		base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for _, blob := range cases {
		if _, ok := c.Decrypt(blob); ok {
			t.Fatalf("Decrypt(%q) unexpectedly ok", blob)
		}
	}
}

func TestDecryptTamperedBlob(t *testing.T) {
	c := testCodec(t)
	blob, err := c.Encrypt("046454286")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(blob)
	raw[len(raw)-1] ^= 0x01
	if _, ok := c.Decrypt(base64.StdEncoding.EncodeToString(raw)); ok {
		t.Fatalf("tampered blob decrypted")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	c := testCodec(t)
	other, err := New(bytes.Repeat([]byte{0x24}, 32))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	blob, err := c.Encrypt("046454286")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, ok := other.Decrypt(blob); ok {
		t.Fatalf("blob decrypted under the wrong key")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	c := testCodec(t)
	a := c.Fingerprint("046454286")
	b := c.Fingerprint("046454286")
	if a != b {
		t.Fatalf("fingerprint not deterministic: %q vs %q", a, b)
	}
	if a == c.Fingerprint("046454287") {
		t.Fatalf("different inputs share a fingerprint")
	}
	if strings.TrimSpace(a) == "" {
		t.Fatalf("empty fingerprint")
	}
}

func TestFingerprintDiffersAcrossKeys(t *testing.T) {
	c := testCodec(t)
	other, err := New(bytes.Repeat([]byte{0x24}, 32))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Fingerprint("046454286") == other.Fingerprint("046454286") {
		t.Fatalf("fingerprint does not depend on the key")
	}
}
