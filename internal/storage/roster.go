package storage

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/action-stage/pkg/actor"
)

// Roster holds the character and participant lookup tables a stage is
// created with.
type Roster struct {
	Characters map[string]actor.Character
	Users      map[string]actor.User
}

// LoadRoster reads <dataDir>/characters/*.yaml and <dataDir>/users/*.yaml.
// Each file holds one record. Missing directories yield empty tables;
// unreadable or invalid files are skipped with a warning.
func LoadRoster(dataDir string, logger *slog.Logger) (*Roster, error) {
	if dataDir == "" {
		dataDir = "./data"
	}

	roster := &Roster{
		Characters: make(map[string]actor.Character),
		Users:      make(map[string]actor.User),
	}

	err := walkYAML(filepath.Join(dataDir, "characters"), logger, func(path string, data []byte) error {
		var c actor.Character
		if err := yaml.Unmarshal(data, &c); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if _, dup := roster.Characters[c.ID]; dup {
			return fmt.Errorf("duplicate character id %q", c.ID)
		}
		roster.Characters[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load characters: %w", err)
	}

	err = walkYAML(filepath.Join(dataDir, "users"), logger, func(path string, data []byte) error {
		var u actor.User
		if err := yaml.Unmarshal(data, &u); err != nil {
			return err
		}
		if err := u.Validate(); err != nil {
			return err
		}
		if _, dup := roster.Users[u.ID]; dup {
			return fmt.Errorf("duplicate user id %q", u.ID)
		}
		roster.Users[u.ID] = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	logger.Debug("Roster loaded",
		"data_dir", dataDir,
		"characters", len(roster.Characters),
		"users", len(roster.Users))
	return roster, nil
}

// CharacterIDs returns the character IDs in sorted order.
func (r *Roster) CharacterIDs() []string {
	ids := make([]string, 0, len(r.Characters))
	for id := range r.Characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func walkYAML(dir string, logger *slog.Logger, load func(path string, data []byte) error) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read profile file", "path", path, "error", err)
			return nil
		}
		if err := load(path, data); err != nil {
			logger.Warn("Skipping invalid profile file", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return nil
}
