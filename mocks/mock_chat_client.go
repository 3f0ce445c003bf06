package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invois/internal/port"
)

// MockChatClient is a mock implementation of port.ChatClient.
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Complete(ctx context.Context, input port.ChatInput) (*port.ChatOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ChatOutput), args.Error(1)
}
