package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	leadingZero := false

	for i := 0; i < 2000; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
		if code[0] == '0' {
			leadingZero = true
		}
	}
	// roughly one draw in ten lands below 100000
	assert.True(t, leadingZero, "expected at least one zero-padded code")
}

func TestGenerateNumericCode_InvalidLength(t *testing.T) {
	for _, n := range []int{0, -1, 19} {
		_, err := GenerateNumericCode(n)
		assert.Error(t, err, "length %d", n)
	}
}
