package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chriscorrea/workbench/internal/prompt"
)

// BackupVersion is written into every backup document
const BackupVersion = "1.0"

// Backup is a point-in-time export of the template catalog and its settings
type Backup struct {
	Version         string            `json:"version"`
	BackupAt        time.Time         `json:"backupAt"`
	AllTemplates    []prompt.Template `json:"allTemplates"`
	CustomTemplates []prompt.Template `json:"customTemplates"`
	Settings        BackupSettings    `json:"settings"`
}

// BackupSettings carries the derived template state
type BackupSettings struct {
	Favorites        []string        `json:"favorites"`
	UseCounts        map[string]int  `json:"useCounts"`
	EnabledTemplates map[string]bool `json:"enabledTemplates,omitempty"`
}

// Backup exports every listed template together with its settings
func (s *Templates) Backup(now time.Time) Backup {
	entries := s.List()
	all := make([]prompt.Template, 0, len(entries))
	for _, e := range entries {
		all = append(all, e.Template)
	}

	return Backup{
		Version:         BackupVersion,
		BackupAt:        now.UTC(),
		AllTemplates:    all,
		CustomTemplates: s.customs(),
		Settings: BackupSettings{
			Favorites:        s.favorites(),
			UseCounts:        s.useCounts(),
			EnabledTemplates: s.EnabledConfig(),
		},
	}
}

// Restore re-imports the custom templates and settings of a backup
// Custom templates are saved one by one, so existing ids are replaced.
// Favorites are merged; use counts keep the larger value.
func (s *Templates) Restore(b Backup) int {
	for _, t := range b.CustomTemplates {
		s.Save(t)
	}

	favorites := s.favoriteSet()
	merged := s.favorites()
	for _, id := range b.Settings.Favorites {
		if !favorites[id] {
			merged = append(merged, id)
			favorites[id] = true
		}
	}
	s.doc.save(KeyFavorites, merged)

	if len(b.Settings.UseCounts) > 0 {
		counts := s.useCounts()
		for id, n := range b.Settings.UseCounts {
			if n > counts[id] {
				counts[id] = n
			}
		}
		s.doc.save(KeyUseCounts, counts)
	}

	if b.Settings.EnabledTemplates != nil {
		s.SetEnabledBulk(b.Settings.EnabledTemplates)
	}

	return len(b.CustomTemplates)
}

// BackupFileName returns the file name used for a backup taken at now
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("templates_backup_%s.json", now.Format("20060102_150405"))
}

// WriteBackup writes b into dir and returns the file path
func WriteBackup(dir string, b Backup) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}

	path := filepath.Join(dir, BackupFileName(b.BackupAt))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}

// ReadBackup loads a backup document from path
func ReadBackup(path string) (Backup, error) {
	var b Backup
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("failed to read backup: %w", err)
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("failed to parse backup %s: %w", path, err)
	}
	if b.Version == "" {
		return b, fmt.Errorf("%s is not a template backup", path)
	}
	return b, nil
}
