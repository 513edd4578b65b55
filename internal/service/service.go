// Package service ties the remote client, the file cache and the
// metadata store together. Each public operation follows the same
// sequence: ensure client, call remote, persist the audio file, persist
// the metadata record, return the combined result.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/franz/voice-vault/internal/cache"
	"github.com/franz/voice-vault/internal/elevenlabs"
	"github.com/franz/voice-vault/internal/report"
	"github.com/franz/voice-vault/internal/store"
	"github.com/franz/voice-vault/internal/util"
)

// Service owns the lazily constructed client and cache handles.
// The mutex guards only initialization and reference fetch, not the
// network or disk work itself, so synthesis requests run concurrently
// once each holds its own reference.
type Service struct {
	store    *store.Store
	cacheDir string
	baseURL  string
	audit    *report.EventLogger // nil disables auditing

	mu         sync.Mutex
	client     *elevenlabs.Client
	audioCache *cache.Cache
}

// New creates a service over an open store. An empty baseURL targets
// the production API; tests point it at a local server.
func New(st *store.Store, cacheDir, baseURL string) *Service {
	if baseURL == "" {
		baseURL = elevenlabs.BaseURL
	}
	return &Service{
		store:    st,
		cacheDir: cacheDir,
		baseURL:  baseURL,
	}
}

// SetAuditLog attaches an audit logger. Quota-consuming and destructive
// operations are recorded through it; a nil logger disables auditing.
func (s *Service) SetAuditLog(logger *report.EventLogger) {
	s.audit = logger
}

// DefaultCacheDir returns the platform cache location for audio files.
// The {tts,sfx,music} subdirectory scheme underneath is part of the
// on-disk contract; see the cache package.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("could not find cache directory: %w", err)
	}
	return filepath.Join(base, "voice-vault", "audio"), nil
}

// ensureClient returns the shared client, building it from the stored
// credential on first use
func (s *Service) ensureClient() (*elevenlabs.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	key, ok, err := s.store.GetAPIKey()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrNoAPIKey
	}

	s.client = elevenlabs.NewClientWithBaseURL(key, s.baseURL)
	return s.client, nil
}

// ensureCache returns the shared cache, creating the directory tree on
// first use
func (s *Service) ensureCache() (*cache.Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.audioCache != nil {
		return s.audioCache, nil
	}

	c, err := cache.New(s.cacheDir)
	if err != nil {
		return nil, err
	}

	s.audioCache = c
	return c, nil
}

// SetAPIKey validates the key against the remote service before
// persisting it. The cached client is swapped so subsequent operations
// pick up the new credential immediately.
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	client := elevenlabs.NewClientWithBaseURL(key, s.baseURL)

	valid, err := client.ValidateKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to validate API key: %w", err)
	}
	if !valid {
		return fmt.Errorf("invalid API key")
	}

	if err := s.store.PutAPIKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	return nil
}

// HasAPIKey reports whether a credential is stored
func (s *Service) HasAPIKey() (bool, error) {
	_, ok, err := s.store.GetAPIKey()
	return ok, err
}

// RemoveAPIKey deletes the stored credential and drops the cached client
func (s *Service) RemoveAPIKey() error {
	if err := s.store.RemoveAPIKey(); err != nil {
		return err
	}

	s.mu.Lock()
	s.client = nil
	s.mu.Unlock()

	return nil
}

// GetUsage fetches subscription quota information
func (s *Service) GetUsage(ctx context.Context) (*elevenlabs.UsageInfo, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}
	return client.GetUsage(ctx)
}
