package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyUser(ctx context.Context, userID, orderID, message string) {
	m.Called(ctx, userID, orderID, message)
}

func (m *MockNotifier) NotifyAdmins(ctx context.Context, orderID, message string) {
	m.Called(ctx, orderID, message)
}
