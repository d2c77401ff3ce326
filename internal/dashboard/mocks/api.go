// Package mocks provides testify mocks for dashboard dependencies.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/crucial707/fpadmin/internal/models"
)

// MockAPI is a mock implementation of dashboard.API.
type MockAPI struct {
	mock.Mock
}

// NewMockAPI creates a MockAPI whose expectations are asserted at test cleanup.
func NewMockAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAPI {
	m := &MockAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAPI) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) ListLogs(ctx context.Context, token string) ([]models.LogEntry, error) {
	args := m.Called(ctx, token)
	rows, _ := args.Get(0).([]models.LogEntry)
	return rows, args.Error(1)
}

func (m *MockAPI) CreateMapping(ctx context.Context, token string, mapping models.Mapping) error {
	args := m.Called(ctx, token, mapping)
	return args.Error(0)
}

func (m *MockAPI) DeleteLog(ctx context.Context, token, recordID string) error {
	args := m.Called(ctx, token, recordID)
	return args.Error(0)
}
