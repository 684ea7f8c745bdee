package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MagicDigits is the length of a session magic token. 20 decimal digits carry ~66 bits of entropy.
const MagicDigits = 20

// ErrInvalidFormat is returned for a token GenerateMagic could not have produced
var ErrInvalidFormat = errors.New("invalid token format")

// GenerateMagic returns a fresh numeric token of MagicDigits digits with no leading zero.
func GenerateMagic() (string, error) {
	return randomDigits(MagicDigits)
}

// randomDigits draws a uniformly random n-digit decimal number from crypto/rand.
func randomDigits(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("digit count must be positive, got %d", n)
	}
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(low, big.NewInt(10)), low)

	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return v.Add(v, low).String(), nil
}

// ValidateMagicFormat checks that a presented token could have been issued by GenerateMagic.
func ValidateMagicFormat(magic string) error {
	magic = strings.TrimSpace(magic)
	if len(magic) != MagicDigits {
		return ErrInvalidFormat
	}
	for _, r := range magic {
		if r < '0' || r > '9' {
			return ErrInvalidFormat
		}
	}
	if magic[0] == '0' {
		return ErrInvalidFormat
	}
	return nil
}
