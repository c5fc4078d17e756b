package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureOTP(t *testing.T) {
	sixDigits := regexp.MustCompile(`^\d{6}$`)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		otp, err := GenerateSecureOTP()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, otp)
		seen[otp] = true
	}
	// 50 draws from a million values colliding down to a handful would mean
	// a broken generator.
	assert.Greater(t, len(seen), 40)
}
