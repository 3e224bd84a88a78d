// Package profiles provides the profile snapshot sources behind the local
// comparison engine: a directory of YAML files and a SQLite database.
package profiles

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/logging"
)

// DefaultFormatVersion is assumed for snapshots that omit format_version.
const DefaultFormatVersion = "1.0.0"

// SupportedFormats is the range of snapshot format versions this build reads.
const SupportedFormats = ">= 1.0.0, < 2.0.0"

// Snapshot file errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported snapshot format version")
	ErrDuplicateProfile  = errors.New("duplicate profile id")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
)

// DirSource reads profile snapshots from *.yaml and *.yml files in a directory.
// The directory is scanned on every call so edits show up without a restart.
type DirSource struct {
	dir string
}

// NewDirSource creates a DirSource. A leading "~" in dir is expanded.
func NewDirSource(dir string) (*DirSource, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expanding profiles dir %q: %w", dir, err)
	}
	return &DirSource{dir: expanded}, nil
}

// Dir returns the expanded directory path.
func (s *DirSource) Dir() string {
	return s.dir
}

// ListProfiles implements engine.Source. Profiles are ordered by name.
func (s *DirSource) ListProfiles(ctx context.Context) ([]engine.ProfileInfo, error) {
	snapshots, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]engine.ProfileInfo, 0, len(snapshots))
	for _, p := range snapshots {
		infos = append(infos, p.Info())
	}
	SortInfos(infos)
	return infos, nil
}

// LoadProfile implements engine.Source.
func (s *DirSource) LoadProfile(ctx context.Context, id string) (*engine.Profile, error) {
	snapshots, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range snapshots {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", engine.ErrProfileNotFound, id)
}

// LoadAll parses every snapshot in the directory. Two files declaring the same
// profile ID is an error.
func (s *DirSource) LoadAll(ctx context.Context) ([]*engine.Profile, error) {
	logger := logging.FromContext(ctx).With().
		Str("component", "profiles").
		Str("operation", "LoadAll").
		Logger()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading profiles dir: %w", err)
	}

	var (
		snapshots []*engine.Profile
		seen      = make(map[string]string)
	)
	for _, entry := range entries {
		if entry.IsDir() || !isSnapshotFile(entry.Name()) {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		path := filepath.Join(s.dir, entry.Name())
		p, readErr := ReadSnapshotFile(path)
		if readErr != nil {
			return nil, readErr
		}
		if prev, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w %q in %s and %s", ErrDuplicateProfile, p.ID, prev, entry.Name())
		}
		seen[p.ID] = entry.Name()
		snapshots = append(snapshots, p)
	}

	logger.Debug().Ctx(ctx).
		Str("dir", s.dir).
		Int("profiles", len(snapshots)).
		Msg("loaded profile snapshots")
	return snapshots, nil
}

// ReadSnapshotFile parses and validates one snapshot file.
func ReadSnapshotFile(path string) (*engine.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	p, err := ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// ParseSnapshot decodes a YAML snapshot, checks its format version and
// requires id and name.
func ParseSnapshot(data []byte) (*engine.Profile, error) {
	var p engine.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if err := CheckFormatVersion(p.FormatVersion); err != nil {
		return nil, err
	}
	if p.FormatVersion == "" {
		p.FormatVersion = DefaultFormatVersion
	}
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidSnapshot)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: profile %s has no name", ErrInvalidSnapshot, p.ID)
	}
	return &p, nil
}

// CheckFormatVersion reports whether a snapshot format version can be read.
// An empty version is treated as DefaultFormatVersion.
func CheckFormatVersion(version string) error {
	if version == "" {
		version = DefaultFormatVersion
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrUnsupportedFormat, version, err)
	}
	constraint, err := semver.NewConstraint(SupportedFormats)
	if err != nil {
		return fmt.Errorf("parsing format constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w %s (supported: %s)", ErrUnsupportedFormat, v, SupportedFormats)
	}
	return nil
}

// SortInfos orders profiles by case-insensitive name, then by ID.
func SortInfos(infos []engine.ProfileInfo) {
	slices.SortFunc(infos, func(a, b engine.ProfileInfo) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func isSnapshotFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
