package gocontent

import "context"

// defaultStrategy returns s, or a LocalStorage rooted at the working directory when s is nil.
func defaultStrategy(s Strategy) Strategy {
	if s == nil {
		return NewLocalStorage(LocalRoot{})
	}
	return s
}

// SaveContent saves content under name using strategy, or the working directory when strategy is nil.
func SaveContent(ctx context.Context, content string, name string, strategy Strategy) error {
	return defaultStrategy(strategy).Save(ctx, content, name)
}

// LoadContent loads name using strategy, or the working directory when strategy is nil.
func LoadContent(ctx context.Context, name string, strategy Strategy) (string, error) {
	return defaultStrategy(strategy).Load(ctx, name)
}

// DownloadContent copies name to destination using strategy, or the working directory when strategy is nil.
func DownloadContent(ctx context.Context, name string, destination string, strategy Strategy) error {
	return defaultStrategy(strategy).Download(ctx, name, destination)
}
