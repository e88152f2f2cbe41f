package gocontent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// LocalStorage is the Strategy for the local filesystem.
// Save overwrites; every saved name is immediately loadable.
type LocalStorage struct {
	root string
}

// NewLocalStorage returns a LocalStorage rooted at cred.Path.
// An empty path resolves names against the process working directory.
func NewLocalStorage(cred LocalRoot) *LocalStorage {
	return &LocalStorage{root: cred.Path}
}

// Capabilities reports full support with no history window.
func (s *LocalStorage) Capabilities() Capabilities {
	return Capabilities{
		Searchable: true,
		LoadByName: true,
		Download:   true,
	}
}

func (s *LocalStorage) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Save writes content to root/name, creating parent directories as needed.
func (s *LocalStorage) Save(ctx context.Context, content string, name string) error {
	if name == "" {
		return ErrInvalidName
	}

	target := s.path(name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to create parent directories")
		return fmt.Errorf("%w: mkdir %s: %v", ErrTransport, filepath.Dir(target), err)
	}

	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to write local file")
		return fmt.Errorf("%w: write %s: %v", ErrTransport, name, err)
	}

	return nil
}

// Load reads root/name in full.
func (s *LocalStorage) Load(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		log.Error().Err(err).Str("name", name).Msg("failed to read local file")
		return "", fmt.Errorf("%w: read %s: %v", ErrTransport, name, err)
	}

	return string(data), nil
}

// Download copies root/name to destination. The destination is not resolved against root.
func (s *LocalStorage) Download(ctx context.Context, name string, destination string) error {
	if name == "" {
		return ErrInvalidName
	}

	src, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		log.Error().Err(err).Str("name", name).Msg("failed to open local file")
		return fmt.Errorf("%w: open %s: %v", ErrTransport, name, err)
	}
	defer src.Close()

	if sameFile(src, destination) {
		return fmt.Errorf("%w: %s and %s are the same file", ErrIO, name, destination)
	}

	return WriteDestination(destination, src)
}

func sameFile(src *os.File, destination string) bool {
	srcInfo, err := src.Stat()
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(destination)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, dstInfo)
}

// WriteDestination copies r into destination, creating missing parent directories.
// The content is staged in a temporary file next to destination and renamed into
// place once complete, so a failed copy leaves any existing destination untouched.
// Failures are reported as ErrIO.
func WriteDestination(destination string, r io.Reader) error {
	if destination == "" {
		return fmt.Errorf("%w: empty destination", ErrIO)
	}

	dir := filepath.Dir(destination)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error().Err(err).Str("destination", destination).Msg("failed to create destination directories")
		return fmt.Errorf("%w: mkdir %s: %v", ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destination)+".*.tmp")
	if err != nil {
		log.Error().Err(err).Str("destination", destination).Msg("failed to create destination")
		return fmt.Errorf("%w: create %s: %v", ErrIO, destination, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return classifyCopyError(destination, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrIO, destination, err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: chmod %s: %v", ErrIO, destination, err)
	}

	if err := os.Rename(tmpName, destination); err != nil {
		os.Remove(tmpName)
		log.Error().Err(err).Str("destination", destination).Msg("failed to move file into place")
		return fmt.Errorf("%w: rename %s: %v", ErrIO, destination, err)
	}

	return nil
}

// classifyCopyError keeps taxonomy errors raised by the source reader and
// reports anything else as a destination failure.
func classifyCopyError(destination string, err error) error {
	for _, known := range []error{ErrTransport, ErrAuth, ErrNotFound} {
		if errors.Is(err, known) {
			return err
		}
	}
	log.Error().Err(err).Str("destination", destination).Msg("failed to write destination")
	return fmt.Errorf("%w: write %s: %v", ErrIO, destination, err)
}
