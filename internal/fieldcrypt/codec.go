// Package fieldcrypt encrypts and fingerprints single sensitive fields (the
// social insurance number) before they reach the database. Encryption is
// probabilistic AES-256-GCM; the fingerprint is a deterministic HMAC so
// equality lookups never need decryption.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Codec holds the derived subkeys. Construct once at startup and share.
type Codec struct {
	aead    cipher.AEAD
	hmacKey []byte
}

// New derives independent encryption and fingerprint subkeys from the
// process-wide master key. The master key must be 32 bytes.
func New(masterKey []byte) (*Codec, error) {
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("fieldcrypt: master key must be 32 bytes, got %d", len(masterKey))
	}

	encKey := make([]byte, 32)
	macKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte("sin-encrypt")), encKey); err != nil {
		return nil, fmt.Errorf("fieldcrypt: derive encryption key: %w", err)
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte("sin-fingerprint")), macKey); err != nil {
		return nil, fmt.Errorf("fieldcrypt: derive fingerprint key: %w", err)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: init gcm: %w", err)
	}

	return &Codec{aead: aead, hmacKey: macKey}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns
// base64(nonce || ciphertext || tag). Two calls on the same plaintext never
// produce the same blob.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("fieldcrypt: read nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It reports ok=false on malformed input, a
// truncated blob or an authentication failure; it never returns an error so
// read paths can degrade a bad field to null instead of failing the row.
func (c *Codec) Decrypt(blob string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", false
	}
	if len(raw) < c.aead.NonceSize() {
		return "", false
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", false
	}
	return string(plain), true
}

// Fingerprint returns a deterministic one-way hash of plaintext, used as the
// lookup and uniqueness key stored next to the ciphertext.
func (c *Codec) Fingerprint(plaintext string) string {
	mac := hmac.New(sha256.New, c.hmacKey)
	mac.Write([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
