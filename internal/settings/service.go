// Package settings serves runtime-tunable values from a key=value file.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Service holds the current snapshot of the settings file.
type Service struct {
	path   string
	logger *slog.Logger

	writeMu sync.Mutex
	mu      sync.RWMutex
	values  map[string]string
}

// Open loads the settings file at path.
func Open(path string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{path: filepath.Clean(path), logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// All returns a copy of every setting.
func (s *Service) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Get returns one value.
func (s *Service) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Int returns key as an integer, or fallback when it is missing or malformed.
func (s *Service) Int(key string, fallback int) int {
	raw, ok := s.Get(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("settings value is not an integer", slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return n
}

// Update rewrites one existing key and returns the new snapshot.
func (s *Service) Update(ctx context.Context, key, value string) (map[string]string, error) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || strings.ContainsAny(key, "=#\n") {
		return nil, fmt.Errorf("%w: invalid settings key %q", shared.ErrInvalidInput, key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return nil, fmt.Errorf("%w: settings value must be a single line", shared.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	updated, found := rewrite(raw, key, value)
	if !found {
		return nil, fmt.Errorf("%w: %s not found in settings", shared.ErrNotFound, key)
	}
	if err := writeAtomic(s.path, updated); err != nil {
		return nil, err
	}
	values, err := parse(updated)
	if err != nil {
		return nil, fmt.Errorf("settings: parse: %w", err)
	}
	s.swap(values)
	s.logger.Info("settings updated", slog.String("key", key))
	return maps.Clone(values), nil
}

// Reload re-reads the file.
func (s *Service) Reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	values, err := parse(raw)
	if err != nil {
		return fmt.Errorf("settings: parse %s: %w", s.path, err)
	}
	s.swap(values)
	return nil
}

func (s *Service) swap(values map[string]string) {
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
}

// Watch reloads the snapshot whenever the file changes, until ctx ends.
// The directory is watched so atomic renames are seen.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("settings: watch %s: %w", s.path, err)
	}
	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path || (!event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create)) {
					continue
				}
				if err := s.Reload(); err != nil {
					s.logger.Warn("settings reload", slog.Any("error", err))
					continue
				}
				s.logger.Info("settings reloaded", slog.String("path", s.path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("settings watcher", slog.Any("error", err))
			}
		}
	}()
	return nil
}
