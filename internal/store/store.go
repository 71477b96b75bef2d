// Package store persists blueprints as JSON documents in a flat directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
)

// ErrNotFound is returned when the named blueprint does not exist
var ErrNotFound = errors.New("blueprint not found")

// ErrBadFilename is returned when a filename sanitizes to nothing
var ErrBadFilename = errors.New("invalid filename")

// ErrInvalidBlueprint is returned when blueprint data fails validation
var ErrInvalidBlueprint = errors.New("invalid blueprint")

const savedVersion = "1.0"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// secureFilename reduces a user-supplied name to a safe flat filename:
// the path is stripped to its base, whitespace becomes underscores, and
// everything outside [A-Za-z0-9_.-] is removed.
func secureFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// FileStore reads and writes blueprint files under a single directory
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates the storage directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// SavedInfo describes a file written by the store
type SavedInfo struct {
	Filename string `json:"filename"`
	Path     string `json:"filepath"`
	Size     int64  `json:"size"`
}

// ListEntry describes one stored blueprint
type ListEntry struct {
	Filename string                 `json:"filename"`
	Size     int64                  `json:"size"`
	Modified time.Time              `json:"modified"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Save validates and writes a blueprint. An empty filename gets a
// timestamped default; a provided one is sanitized and forced to .json.
// Save stamps saved_at and version into the blueprint metadata.
func (s *FileStore) Save(bp *blueprint.Blueprint, filename string) (*SavedInfo, error) {
	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlueprint, err)
	}

	if filename == "" {
		filename = "blueprint_" + s.now().Format("20060102_150405") + ".json"
	} else {
		filename = secureFilename(filename)
		if filename == "" {
			return nil, ErrBadFilename
		}
		if !strings.HasSuffix(filename, ".json") {
			filename += ".json"
		}
	}

	if bp.Metadata == nil {
		bp.Metadata = make(map[string]interface{})
	}
	bp.Metadata["saved_at"] = s.now().Format(time.RFC3339)
	bp.Metadata["version"] = savedVersion

	data, err := json.MarshalIndent(bp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode blueprint: %w", err)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write blueprint: %w", err)
	}

	log.Info().Str("path", path).Msg("blueprint saved")

	return &SavedInfo{
		Filename: filename,
		Path:     path,
		Size:     int64(len(data)),
	}, nil
}

// Load reads and validates a stored blueprint
func (s *FileStore) Load(filename string) (*blueprint.Blueprint, error) {
	filename = secureFilename(filename)
	if filename == "" {
		return nil, ErrBadFilename
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return nil, fmt.Errorf("failed to read blueprint: %w", err)
	}

	var bp blueprint.Blueprint
	if err := json.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("%w: malformed file: %v", ErrInvalidBlueprint, err)
	}
	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlueprint, err)
	}
	return &bp, nil
}

// List returns stored blueprints newest-first. Files whose JSON cannot be
// read still appear in the listing, with nil metadata.
func (s *FileStore) List() ([]ListEntry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage dir: %w", err)
	}

	entries := []ListEntry{}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}

		entry := ListEntry{
			Filename: de.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		}
		if data, err := os.ReadFile(filepath.Join(s.dir, de.Name())); err == nil {
			var doc struct {
				Metadata map[string]interface{} `json:"metadata"`
			}
			if json.Unmarshal(data, &doc) == nil {
				entry.Metadata = doc.Metadata
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Modified.After(entries[j].Modified)
	})
	return entries, nil
}

// Delete removes a stored blueprint
func (s *FileStore) Delete(filename string) error {
	filename = secureFilename(filename)
	if filename == "" {
		return ErrBadFilename
	}

	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete blueprint: %w", err)
	}

	log.Info().Str("path", path).Msg("blueprint deleted")
	return nil
}

// ExportSVG writes rendered diagram markup next to the blueprints. An empty
// filename gets a timestamped default; a provided one is forced to .svg.
func (s *FileStore) ExportSVG(content, filename string) (*SavedInfo, error) {
	if filename == "" {
		filename = "blueprint_" + s.now().Format("20060102_150405") + ".svg"
	} else {
		filename = secureFilename(filename)
		if filename == "" {
			return nil, ErrBadFilename
		}
		if !strings.HasSuffix(filename, ".svg") {
			filename += ".svg"
		}
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write svg: %w", err)
	}

	log.Info().Str("path", path).Msg("svg exported")

	return &SavedInfo{
		Filename: filename,
		Path:     path,
		Size:     int64(len(content)),
	}, nil
}
