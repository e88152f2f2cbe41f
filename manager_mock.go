package gocontent

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockManager is a testify mock implementing gocontent.Manager
type MockManager struct {
	mock.Mock
}

var _ Manager = (*MockManager)(nil)

func (m *MockManager) Storage(alias string) Manager {
	args := m.Called(alias)
	if mgr, ok := args.Get(0).(Manager); ok {
		return mgr
	}
	return nil
}

func (m *MockManager) Capabilities() Capabilities {
	args := m.Called()
	if caps, ok := args.Get(0).(Capabilities); ok {
		return caps
	}
	return Capabilities{}
}

func (m *MockManager) Supports(op Operation) bool {
	args := m.Called(op)
	return args.Bool(0)
}

func (m *MockManager) Save(ctx context.Context, content string, name string) error {
	args := m.Called(ctx, content, name)
	return args.Error(0)
}

func (m *MockManager) Load(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockManager) Download(ctx context.Context, name string, destination string) error {
	args := m.Called(ctx, name, destination)
	return args.Error(0)
}

func (m *MockManager) LoadMany(ctx context.Context, names ...string) ([]string, error) {
	callArgs := append([]any{ctx}, stringSliceToInterface(names)...)
	args := m.Called(callArgs...)
	if contents, ok := args.Get(0).([]string); ok {
		return contents, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockManager) SaveMany(ctx context.Context, files map[string]string) error {
	args := m.Called(ctx, files)
	return args.Error(0)
}

func (m *MockManager) LoadByRecencyIndex(ctx context.Context, n int) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *MockManager) SaveWebhook(ctx context.Context, content string, name string) error {
	args := m.Called(ctx, content, name)
	return args.Error(0)
}

func stringSliceToInterface(slice []string) []any {
	res := make([]any, len(slice))
	for i, v := range slice {
		res[i] = v
	}
	return res
}
