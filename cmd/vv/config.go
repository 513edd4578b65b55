package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/franz/voice-vault/internal/report"
	"github.com/franz/voice-vault/internal/service"
	"github.com/franz/voice-vault/internal/store"
	"github.com/franz/voice-vault/internal/util"
)

// auditLog is shared by every command in the process and closed in main
var auditLog *report.EventLogger

// defaultDBPath returns the platform data location for the state
// database
func defaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find config directory: %w", err)
	}
	return filepath.Join(base, "voice-vault", "state.db"), nil
}

// resolveDBPath applies the flag/env/config precedence, falling back to
// the platform default
func resolveDBPath() (string, error) {
	if p := viper.GetString("db"); p != "" {
		return p, nil
	}
	p, err := defaultDBPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("could not create data directory: %w", err)
	}
	return p, nil
}

// resolveCacheDir applies the same precedence for the audio cache root
func resolveCacheDir() (string, error) {
	if p := viper.GetString("cache-dir"); p != "" {
		return p, nil
	}
	return service.DefaultCacheDir()
}

// openService opens the store and wraps it in a service. The caller
// must Close the returned store.
func openService() (*service.Service, *store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, nil, err
	}

	cacheDir, err := resolveCacheDir()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	svc := service.New(st, cacheDir, viper.GetString("api-url"))

	if dir := viper.GetString("audit-dir"); dir != "" {
		if auditLog == nil {
			auditLog, err = report.NewEventLogger(dir, report.LevelInfo)
			if err != nil {
				util.WarnLog("Failed to create audit log: %v", err)
				auditLog = report.NullLogger()
			} else {
				util.DebugLog("Audit log: %s", auditLog.Path())
			}
		}
		svc.SetAuditLog(auditLog)
	}

	return svc, st, nil
}
