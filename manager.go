package gocontent

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Manager is the main entry point for applications that work with several
// storages at once. It is itself a Strategy that delegates to a default storage.
type Manager interface {
	Strategy

	// Storage returns a new Manager that uses the storage alias provided.
	// Useful when you have multiple storage backends and need to switch dynamically.
	Storage(alias string) Manager

	// Supports reports whether the selected storage supports op.
	Supports(op Operation) bool

	// LoadMany loads multiple files concurrently, preserving the order of names.
	LoadMany(ctx context.Context, names ...string) ([]string, error)

	// SaveMany saves multiple files concurrently. Keys are names, values are content.
	SaveMany(ctx context.Context, files map[string]string) error

	// LoadByRecencyIndex forwards to the selected storage when it is a RecencyLoader.
	LoadByRecencyIndex(ctx context.Context, n int) (string, error)

	// SaveWebhook forwards to the selected storage when it is a WebhookSaver.
	SaveWebhook(ctx context.Context, content string, name string) error
}

// managerImpl is the concrete implementation of Manager.
// It delegates calls to defaultStorage or a selected storage from storageMap.
type managerImpl struct {
	storageMap     map[string]Strategy // all available storages by alias
	defaultStorage Strategy            // the currently selected storage
}

// NewManager creates a new Manager with a default storage alias.
// Returns ErrInvalidDefaultStorage if the alias does not exist in the provided storage map.
func NewManager(defaultStorageAlias string, storage map[string]Strategy) (Manager, error) {
	defaultStorage, exists := storage[defaultStorageAlias]
	if !exists || defaultStorage == nil {
		return nil, ErrInvalidDefaultStorage
	}

	return &managerImpl{
		storageMap:     storage,
		defaultStorage: defaultStorage,
	}, nil
}

// Storage returns a new Manager using the given alias as its default storage.
// If alias is not found, every call on the returned Manager fails with ErrInvalidDefaultStorage.
func (m *managerImpl) Storage(alias string) Manager {
	return &managerImpl{
		storageMap:     m.storageMap,
		defaultStorage: m.storageMap[alias],
	}
}

// Capabilities returns the capabilities of the selected storage.
func (m *managerImpl) Capabilities() Capabilities {
	if m.defaultStorage == nil {
		return Capabilities{}
	}
	return m.defaultStorage.Capabilities()
}

// Supports reports whether the selected storage supports op.
func (m *managerImpl) Supports(op Operation) bool {
	if m.defaultStorage == nil {
		return false
	}
	return m.Capabilities().Supports(op)
}

// Save stores content in the selected storage.
func (m *managerImpl) Save(ctx context.Context, content string, name string) error {
	if m.defaultStorage == nil {
		return ErrInvalidDefaultStorage
	}
	return m.defaultStorage.Save(ctx, content, name)
}

// Load reads a file from the selected storage.
func (m *managerImpl) Load(ctx context.Context, name string) (string, error) {
	if m.defaultStorage == nil {
		return "", ErrInvalidDefaultStorage
	}
	return m.defaultStorage.Load(ctx, name)
}

// Download copies a file from the selected storage to a local destination.
func (m *managerImpl) Download(ctx context.Context, name string, destination string) error {
	if m.defaultStorage == nil {
		return ErrInvalidDefaultStorage
	}
	return m.defaultStorage.Download(ctx, name, destination)
}

// LoadMany loads multiple files concurrently.
// Uses errgroup to run loads in parallel and return the first error encountered.
func (m *managerImpl) LoadMany(ctx context.Context, names ...string) ([]string, error) {
	contents := make([]string, len(names))
	g, ctx := errgroup.WithContext(ctx)

	for i, name := range names {
		g.Go(func() error {
			content, err := m.Load(ctx, name)
			if err != nil {
				return err
			}

			contents[i] = content
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return contents, nil
}

// SaveMany saves multiple files concurrently.
func (m *managerImpl) SaveMany(ctx context.Context, files map[string]string) error {
	g, ctx := errgroup.WithContext(ctx)

	for name, content := range files {
		g.Go(func() error {
			return m.Save(ctx, content, name)
		})
	}

	return g.Wait()
}

// LoadByRecencyIndex returns the n-th most recent file of the selected storage.
func (m *managerImpl) LoadByRecencyIndex(ctx context.Context, n int) (string, error) {
	if m.defaultStorage == nil {
		return "", ErrInvalidDefaultStorage
	}

	loader, ok := m.defaultStorage.(RecencyLoader)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCapability, OpRecency)
	}
	return loader.LoadByRecencyIndex(ctx, n)
}

// SaveWebhook saves through the webhook path of the selected storage.
func (m *managerImpl) SaveWebhook(ctx context.Context, content string, name string) error {
	if m.defaultStorage == nil {
		return ErrInvalidDefaultStorage
	}

	saver, ok := m.defaultStorage.(WebhookSaver)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCapability, OpWebhook)
	}
	return saver.SaveWebhook(ctx, content, name)
}
