package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode draws uniformly from [0, 10^length) and left-pads the result with zeros.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 || length > 18 {
		return "", fmt.Errorf("invalid code length %d", length)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
