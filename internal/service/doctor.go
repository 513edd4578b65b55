package service

import (
	"os"

	"github.com/franz/voice-vault/internal/cache"
	"github.com/franz/voice-vault/internal/util"
)

// ReconcileReport describes drift between the file cache and the
// metadata store. Drift is expected: the file is written before the
// record, so a crash in between leaves an orphan file, and externally
// deleted files leave dangling records.
type ReconcileReport struct {
	// OrphanFiles exist on disk but no record points at them
	OrphanFiles []string

	// DanglingRecords point at files that no longer exist
	DanglingRecords []string
}

// Reconcile sweeps the cache against the store. With fix set, orphan
// files are deleted and dangling records removed; otherwise the report
// only describes what a fix run would do.
func (s *Service) Reconcile(fix bool) (*ReconcileReport, error) {
	audioCache, err := s.ensureCache()
	if err != nil {
		return nil, err
	}

	records, err := s.store.GetAllAudioRecords()
	if err != nil {
		return nil, err
	}

	recorded := make(map[string]bool, len(records))
	report := &ReconcileReport{}

	for _, r := range records {
		if r.LocalPath == "" {
			continue
		}
		recorded[r.LocalPath] = true

		if _, err := os.Stat(r.LocalPath); os.IsNotExist(err) {
			report.DanglingRecords = append(report.DanglingRecords, r.ID)
			if fix {
				if err := s.store.DeleteAudioRecord(r.ID); err != nil {
					util.WarnLog("Doctor: failed to remove dangling record %s: %v", r.ID, err)
				}
			}
		}
	}

	for _, t := range cache.AllAudioTypes() {
		files, err := audioCache.List(t)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if recorded[f] {
				continue
			}
			report.OrphanFiles = append(report.OrphanFiles, f)
			if fix {
				if err := audioCache.Delete(f); err != nil {
					util.WarnLog("Doctor: failed to remove orphan file %s: %v", f, err)
				}
			}
		}
	}

	return report, nil
}
