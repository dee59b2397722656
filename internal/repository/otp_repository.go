package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRepository is a redis-backed keyed store for one-time passcodes. Codes
// expire via redis TTL and are consumed on successful verification, which
// keeps the store safe to share across processes.
type OTPRepository struct {
	client *redis.Client
}

// NewOTPRepository constructs the store.
func NewOTPRepository(client *redis.Client) *OTPRepository {
	return &OTPRepository{client: client}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

// Store saves a passcode for the email with the given TTL, replacing any
// previous code.
func (r *OTPRepository) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := r.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Verify checks the passcode for the email and deletes it when it matches.
// A missing or expired code simply fails verification.
func (r *OTPRepository) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := r.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("load otp: %w", err)
	}
	if stored != code {
		return false, nil
	}
	if err := r.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return true, nil
}
