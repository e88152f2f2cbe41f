package gocontent

import "context"

// Strategy defines the contract every storage backend (local disk, Google Drive,
// Discord, Telegram, S3) implements. Callers depend only on this interface and
// can swap backends without touching call sites.
type Strategy interface {
	// Capabilities returns the static description of supported operations.
	// Usage: Branch on it before calling Load or Download on an unknown backend.
	Capabilities() Capabilities

	// Save stores content under name.
	// Whether an existing file is replaced or a second one is created depends on the backend.
	Save(ctx context.Context, content string, name string) error

	// Load resolves name and returns the full content.
	// Returns ErrNotFound when nothing matches and ErrCapability when the backend
	// cannot look files up by name.
	Load(ctx context.Context, name string) (content string, err error)

	// Download resolves name like Load and writes the content to destination,
	// creating missing parent directories.
	// Returns ErrIO when the destination cannot be written.
	Download(ctx context.Context, name string, destination string) error
}

// RecencyLoader is implemented by backends that keep an ordered history,
// such as a chat channel.
type RecencyLoader interface {
	// LoadByRecencyIndex returns the n-th most recent file, 0 being the newest.
	LoadByRecencyIndex(ctx context.Context, n int) (content string, err error)
}

// WebhookSaver is implemented by backends with a second, unauthenticated upload path.
// Files saved this way may not be visible to Load.
type WebhookSaver interface {
	SaveWebhook(ctx context.Context, content string, name string) error
}
