package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"golang.org/x/crypto/chacha20poly1305"
)

// Codec encrypts and decrypts credential payloads with XChaCha20-Poly1305.
// The output is URL-safe base64 of nonce||ciphertext, ready to embed in a QR
// image. No plaintext identifier ever leaves this package unencrypted.
type Codec struct {
	key []byte
}

func NewCodec(secret string) *Codec {
	key := sha256.Sum256([]byte(secret))
	return &Codec{key: key[:]}
}

func (c *Codec) Encrypt(p Payload) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	plain, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Codec) Decrypt(opaque string) (Payload, error) {
	var p Payload
	raw, err := base64.RawURLEncoding.DecodeString(opaque)
	if err != nil {
		return p, ErrMalformedCredential
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return p, err
	}
	if len(raw) < aead.NonceSize() {
		return p, ErrMalformedCredential
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return p, ErrMalformedCredential
	}
	if err := json.Unmarshal(plain, &p); err != nil {
		return p, ErrMalformedCredential
	}
	return p, nil
}
