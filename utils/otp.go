// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

// GenerateSecureOTP generates a 6-digit numeric OTP for staff onboarding.
func GenerateSecureOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ValidateOTPAttempts rate-limits OTP verification per user via Redis.
// Limit is 5 attempts per hour.
func ValidateOTPAttempts(userID string, redis *redis.Client) error {
	key := "otp_attempts:" + userID
	attempts, err := redis.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	if attempts == 1 {
		redis.Expire(context.Background(), key, 1*time.Hour)
	}

	if attempts > 5 {
		return errors.New("too many OTP attempts")
	}

	return nil
}
