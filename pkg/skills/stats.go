package skills

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// statsFileName is the ledger side-car beside the skills. The leading dot
// keeps it out of library listings.
const statsFileName = ".install-stats.json"

// InstallStats is one install-statistics ledger entry. Entries are created
// on first install and never deleted; removing a skill keeps its history.
type InstallStats struct {
	InstallCount     int       `json:"installCount"`
	LastInstalledAt  time.Time `json:"lastInstalledAt"`
	InstalledVersion string    `json:"installedVersion,omitempty"`
}

func (s *Store) statsPath() string {
	return filepath.Join(s.libraryPath(), statsFileName)
}

func (s *Store) loadLedger() (map[string]InstallStats, error) {
	data, err := os.ReadFile(s.statsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]InstallStats{}, nil
		}
		return nil, errors.Wrap(err, "failed to read install stats")
	}

	ledger := map[string]InstallStats{}
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, errors.Wrap(err, "failed to parse install stats")
	}
	return ledger, nil
}

func (s *Store) saveLedger(ledger map[string]InstallStats) error {
	if err := os.MkdirAll(s.libraryPath(), 0o755); err != nil {
		return errors.Wrap(err, "failed to create library directory")
	}

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal install stats")
	}

	// Write to a temporary file first so readers never observe a torn ledger
	path := s.statsPath()
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write install stats")
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to replace install stats")
	}
	return nil
}

// RecordInstall upserts the ledger entry for id: the count increments, the
// timestamp moves to now, and the version updates only when non-empty.
func (s *Store) RecordInstall(_ context.Context, id, version string) error {
	ledger, err := s.loadLedger()
	if err != nil {
		return err
	}

	entry := ledger[id]
	entry.InstallCount++
	entry.LastInstalledAt = s.now()
	if version != "" {
		entry.InstalledVersion = version
	}
	ledger[id] = entry

	if err := s.saveLedger(ledger); err != nil {
		return err
	}

	s.notifyChange()
	return nil
}

// GetInstalledVersions returns id -> installed version for every ledger
// entry that has a non-empty version recorded.
func (s *Store) GetInstalledVersions(_ context.Context) (map[string]string, error) {
	ledger, err := s.loadLedger()
	if err != nil {
		return nil, err
	}

	versions := make(map[string]string)
	for id, entry := range ledger {
		if entry.InstalledVersion != "" {
			versions[id] = entry.InstalledVersion
		}
	}
	return versions, nil
}

func applyStats(skill *Skill, ledger map[string]InstallStats) {
	if entry, ok := ledger[skill.ID]; ok {
		skill.InstallCount = entry.InstallCount
		skill.LastInstalledAt = entry.LastInstalledAt
	}
}
