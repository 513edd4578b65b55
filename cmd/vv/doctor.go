package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/franz/voice-vault/internal/store"
	"github.com/franz/voice-vault/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the database and audio cache",
	Long: `Run diagnostic checks to ensure vv can operate correctly.

This command checks:
- SQLite version and database integrity
- Audio cache directory and write permissions
- Stored API key and whether the service accepts it
- Drift between cached files and database records

With --fix, orphan files (on disk but unrecorded) are deleted and
dangling records (recorded but missing on disk) are removed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().Bool("fix", false, "Delete orphan files and dangling records")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fix, _ := cmd.Flags().GetBool("fix")

	util.InfoLog("=== Voice Vault Doctor ===")
	util.InfoLog("")

	results := []checkResult{}

	// 1. SQLite
	results = append(results, checkSQLite())

	// 2. Database file
	dbPath, err := resolveDBPath()
	if err != nil {
		return err
	}
	results = append(results, checkDatabase(dbPath))

	// 3. Cache directory
	cacheDir, err := resolveCacheDir()
	if err != nil {
		return err
	}
	results = append(results, checkCacheDir(cacheDir))

	// 4. API key
	results = append(results, checkAPIKey())

	// 5. Cache/store drift
	results = append(results, checkDrift(fix))

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("Some critical checks failed. Please resolve errors before running vv.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("All checks passed.")
	}

	return nil
}

// checkSQLite verifies the embedded SQLite works
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility and integrity
func checkDatabase(dbPath string) checkResult {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	return checkResult{
		name:    "Database",
		message: fmt.Sprintf("%s (%s)", dbPath, humanize.Bytes(uint64(info.Size()))),
	}
}

// checkCacheDir verifies the cache root exists and is writable
func checkCacheDir(dir string) checkResult {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return checkResult{
			name:    "Cache directory",
			error:   true,
			message: fmt.Sprintf("cannot create %s: %v", dir, err),
		}
	}

	testFile := filepath.Join(dir, ".vv_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Cache directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", dir, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Cache directory",
		message: fmt.Sprintf("%s (writable)", dir),
	}
}

// checkAPIKey verifies a key is stored and the service accepts it
func checkAPIKey() checkResult {
	svc, st, err := openService()
	if err != nil {
		return checkResult{
			name:    "API key",
			error:   true,
			message: err.Error(),
		}
	}
	defer st.Close()

	has, err := svc.HasAPIKey()
	if err != nil {
		return checkResult{
			name:    "API key",
			error:   true,
			message: err.Error(),
		}
	}
	if !has {
		return checkResult{
			name:    "API key",
			warning: true,
			message: "not set (run 'vv auth set-key')",
		}
	}

	if _, err := svc.GetUsage(context.Background()); err != nil {
		return checkResult{
			name:    "API key",
			warning: true,
			message: fmt.Sprintf("stored but not verified: %v", err),
		}
	}

	return checkResult{
		name:    "API key",
		message: "stored and accepted by the service",
	}
}

// checkDrift sweeps the cache against the store, fixing when requested
func checkDrift(fix bool) checkResult {
	svc, st, err := openService()
	if err != nil {
		return checkResult{
			name:    "Cache consistency",
			error:   true,
			message: err.Error(),
		}
	}
	defer st.Close()

	report, err := svc.Reconcile(fix)
	if err != nil {
		return checkResult{
			name:    "Cache consistency",
			error:   true,
			message: err.Error(),
		}
	}

	orphans := len(report.OrphanFiles)
	dangling := len(report.DanglingRecords)

	if orphans == 0 && dangling == 0 {
		return checkResult{
			name:    "Cache consistency",
			message: "files and records agree",
		}
	}

	msg := fmt.Sprintf("%d orphan files, %d dangling records", orphans, dangling)
	if fix {
		return checkResult{
			name:    "Cache consistency",
			message: msg + " (fixed)",
		}
	}

	return checkResult{
		name:    "Cache consistency",
		warning: true,
		message: msg + " (run 'vv doctor --fix' to clean up)",
	}
}
