package auth

import (
	"crypto/rand"
	"fmt"
)

const (
	apiKeyPrefix    = "dev_"
	apiKeyRandomLen = 32
	apiKeyCharset   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateAPIKey returns a new plaintext API key. The plaintext form is
// shown to the caller exactly once; only its encrypted form is stored.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, apiKeyRandomLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	for i, b := range buf {
		buf[i] = apiKeyCharset[int(b)%len(apiKeyCharset)]
	}
	return apiKeyPrefix + string(buf), nil
}
