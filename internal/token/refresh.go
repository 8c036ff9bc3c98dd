package token

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	refreshRandomLength = 35
	alphanumeric        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewRefreshToken returns an opaque refresh token: a random alphanumeric run
// followed by a UUID.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshRandomLength)
	limit := big.NewInt(int64(len(alphanumeric)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = alphanumeric[n.Int64()]
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}

	return string(buf) + id.String(), nil
}
