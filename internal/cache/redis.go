package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is what handlers depend on, so tests can swap in a fake without
// a running redis.
type Store interface {
	SetVerificationOTP(email, otp string) error
	GetVerificationOTP(email string) (string, bool, error)
	DeleteVerificationOTP(email string) error

	SetPasswordResetToken(token, userID string) error
	ConsumePasswordResetToken(token string) (string, bool, error)

	Close() error
}

type Cache struct {
	client *redis.Client
	ctx    context.Context
}

func New(redisAddr string, db int) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   db,
	})

	return &Cache{
		client: client,
		ctx:    context.Background(),
	}
}

const (
	// Verification codes live for 10 minutes, reset tokens for an hour.
	// Expiry is enforced by the key TTL: an expired credential simply
	// isn't there anymore, which keeps "wrong" and "expired" externally
	// identical.
	otpTTL        = 10 * time.Minute
	resetTokenTTL = time.Hour
)

func otpKey(email string) string {
	return "otp:" + email
}

func resetKey(token string) string {
	return "pwdreset:" + token
}

func (c *Cache) SetVerificationOTP(email, otp string) error {
	return c.client.Set(c.ctx, otpKey(email), otp, otpTTL).Err()
}

func (c *Cache) GetVerificationOTP(email string) (string, bool, error) {
	otp, err := c.client.Get(c.ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return otp, true, nil
}

func (c *Cache) DeleteVerificationOTP(email string) error {
	return c.client.Del(c.ctx, otpKey(email)).Err()
}

func (c *Cache) SetPasswordResetToken(token, userID string) error {
	return c.client.Set(c.ctx, resetKey(token), userID, resetTokenTTL).Err()
}

// ConsumePasswordResetToken atomically fetches and deletes the token, so
// it can never be redeemed twice.
func (c *Cache) ConsumePasswordResetToken(token string) (string, bool, error) {
	userID, err := c.client.GetDel(c.ctx, resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return userID, true, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
