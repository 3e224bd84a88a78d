package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
  id             TEXT PRIMARY KEY,
  name           TEXT NOT NULL,
  license        TEXT,
  format_version TEXT NOT NULL,
  snapshot       TEXT NOT NULL,
  imported_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name);
`

// SQLiteSource stores profile snapshots in a SQLite database. Each row keeps
// the identifying columns plus the full snapshot as JSON.
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists. A leading "~" in path is expanded.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding database path %q: %w", path, err)
	}

	dsn := "file:" + expanded + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteSource{db: db, path: expanded}, nil
}

// Path returns the expanded database path.
func (s *SQLiteSource) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListProfiles implements engine.Source.
func (s *SQLiteSource) ListProfiles(ctx context.Context) ([]engine.ProfileInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, license FROM profiles ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var infos []engine.ProfileInfo
	for rows.Next() {
		var (
			info    engine.ProfileInfo
			license sql.NullString
		)
		if err = rows.Scan(&info.ID, &info.Name, &license); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		info.LicenseName = license.String
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return infos, nil
}

// LoadProfile implements engine.Source.
func (s *SQLiteSource) LoadProfile(ctx context.Context, id string) (*engine.Profile, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT snapshot FROM profiles WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", engine.ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", id, err)
	}

	var p engine.Profile
	if err = json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", id, err)
	}
	return &p, nil
}

// Import upserts snapshots in one transaction and returns how many rows were
// written. Snapshots with an unsupported format version abort the import.
func (s *SQLiteSource) Import(ctx context.Context, snapshots []*engine.Profile) (n int, err error) {
	logger := logging.FromContext(ctx).With().
		Str("component", "profiles").
		Str("operation", "Import").
		Logger()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("starting import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsert = `INSERT INTO profiles(id, name, license, format_version, snapshot, imported_at)
VALUES(?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  license = excluded.license,
  format_version = excluded.format_version,
  snapshot = excluded.snapshot,
  imported_at = CURRENT_TIMESTAMP`

	for _, p := range snapshots {
		if err = CheckFormatVersion(p.FormatVersion); err != nil {
			return 0, fmt.Errorf("profile %s: %w", p.ID, err)
		}
		version := p.FormatVersion
		if version == "" {
			version = DefaultFormatVersion
		}

		var body []byte
		body, err = json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("encoding profile %s: %w", p.ID, err)
		}
		if _, err = tx.ExecContext(ctx, upsert, p.ID, p.Name, nullIfEmpty(p.License), version, string(body)); err != nil {
			return 0, fmt.Errorf("writing profile %s: %w", p.ID, err)
		}
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	logger.Info().Ctx(ctx).Int("profiles", n).Str("db", s.path).Msg("imported profile snapshots")
	return n, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
