package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// ErrCiphertext is returned when a sealed value cannot be opened.
var ErrCiphertext = errors.New("invalid ciphertext")

// Sealer encrypts small opaque values (cursor tokens) with AES-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 32 byte AES key from key. An empty key gets a random
// one, so sealed values do not survive a restart.
func NewSealer(key string) (*Sealer, error) {
	var k [32]byte
	if key == "" {
		if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
			return nil, err
		}
	} else {
		k = sha256.Sum256([]byte(key))
	}

	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: gcm}, nil
}

// Seal encrypts plaintext into a URL-safe string.
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrCiphertext
	}

	if len(ciphertext) < s.aead.NonceSize() {
		return nil, ErrCiphertext
	}

	nonce := ciphertext[:s.aead.NonceSize()]
	ciphertext = ciphertext[s.aead.NonceSize():]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrCiphertext
	}
	return plaintext, nil
}
