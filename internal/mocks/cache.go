package mocks

import (
	"sync"
)

// MockCache is an in-memory cache.Store: good enough to exercise the
// single-use and overwrite semantics without a running redis. TTLs are
// not simulated.
type MockCache struct {
	mu     sync.Mutex
	otps   map[string]string
	resets map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{
		otps:   make(map[string]string),
		resets: make(map[string]string),
	}
}

func (c *MockCache) SetVerificationOTP(email, otp string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.otps[email] = otp
	return nil
}

func (c *MockCache) GetVerificationOTP(email string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	otp, ok := c.otps[email]
	return otp, ok, nil
}

func (c *MockCache) DeleteVerificationOTP(email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.otps, email)
	return nil
}

func (c *MockCache) SetPasswordResetToken(token, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets[token] = userID
	return nil
}

func (c *MockCache) ConsumePasswordResetToken(token string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	userID, ok := c.resets[token]
	delete(c.resets, token)
	return userID, ok, nil
}

func (c *MockCache) Close() error { return nil }
