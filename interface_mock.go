package gocontent

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStrategy is a testify.Mock implementation of Strategy.
type MockStrategy struct {
	mock.Mock
}

var _ Strategy = (*MockStrategy)(nil)

func (m *MockStrategy) Capabilities() Capabilities {
	args := m.Called()
	if caps, ok := args.Get(0).(Capabilities); ok {
		return caps
	}
	return Capabilities{}
}

func (m *MockStrategy) Save(ctx context.Context, content string, name string) error {
	args := m.Called(ctx, content, name)
	return args.Error(0)
}

func (m *MockStrategy) Load(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockStrategy) Download(ctx context.Context, name string, destination string) error {
	args := m.Called(ctx, name, destination)
	return args.Error(0)
}

// MockRecencyStrategy additionally implements RecencyLoader and WebhookSaver.
type MockRecencyStrategy struct {
	MockStrategy
}

var (
	_ RecencyLoader = (*MockRecencyStrategy)(nil)
	_ WebhookSaver  = (*MockRecencyStrategy)(nil)
)

func (m *MockRecencyStrategy) LoadByRecencyIndex(ctx context.Context, n int) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *MockRecencyStrategy) SaveWebhook(ctx context.Context, content string, name string) error {
	args := m.Called(ctx, content, name)
	return args.Error(0)
}
