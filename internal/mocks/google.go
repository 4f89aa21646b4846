package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/prodyhq/prody/internal/google"
)

type MockGoogleVerifier struct {
	mock.Mock
}

func (m *MockGoogleVerifier) Verify(ctx context.Context, idToken string) (*google.Identity, error) {
	args := m.Called(ctx, idToken)
	identity, _ := args.Get(0).(*google.Identity)
	return identity, args.Error(1)
}
