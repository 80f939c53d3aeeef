// Package crypto implements the symmetric cipher used for API key storage
// and the one-way password hashing used for credentials.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/saas-backend/internal/config"
)

// AlgorithmAES256CBC is the only cipher the service accepts.
const AlgorithmAES256CBC = "aes-256-cbc"

var (
	// ErrMalformedCiphertext reports undecryptable input.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// Service performs symmetric encryption with a fixed key and IV so the
// same plaintext always yields the same ciphertext. That determinism is
// what makes encrypted API keys searchable by exact match.
type Service struct {
	block      cipher.Block
	iv         []byte
	bcryptCost int
}

// New validates the configuration and builds the service. Missing or
// malformed key material is a construction error, not a runtime fallback.
func New(cfg config.CryptoConfig) (*Service, error) {
	if cfg.Algorithm != AlgorithmAES256CBC {
		return nil, fmt.Errorf("unsupported encryption algorithm %q", cfg.Algorithm)
	}

	key, err := hex.DecodeString(cfg.KeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	iv, err := hex.DecodeString(cfg.IVHex)
	if err != nil {
		return nil, fmt.Errorf("decode encryption iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("encryption iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Service{block: block, iv: iv, bcryptCost: cost}, nil
}

// Encrypt returns the hex-encoded AES-CBC ciphertext of plaintext.
func (s *Service) Encrypt(plaintext string) string {
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(s.block, s.iv).CryptBlocks(out, padded)
	return hex.EncodeToString(out)
}

// Decrypt reverses Encrypt.
func (s *Service) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrMalformedCiphertext
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(s.block, s.iv).CryptBlocks(out, raw)

	unpadded, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	return string(unpadded), nil
}

// HashPassword hashes a plaintext password with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePasswords reports whether plaintext matches the stored hash. A
// mismatch is a false return, never an error.
func (s *Service) ComparePasswords(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, errors.New("invalid padding length")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("invalid padding byte")
		}
	}
	return data[:len(data)-padLen], nil
}
