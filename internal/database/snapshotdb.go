package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/paperstat/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "paperstat.db"

// timeLayout is how fetch times are stored. Fixed width keeps text order
// equal to time order.
const timeLayout = "2006-01-02 15:04:05.000000"

// ErrSnapshotNotFound is returned when no snapshot matches a lookup.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotDB provides SQLite-based storage for analysis snapshots.
type SnapshotDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SnapshotDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SnapshotDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*SnapshotDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SnapshotDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *SnapshotDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *SnapshotDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SnapshotDB) createTables() error {
	schema := `
	-- Snapshots store raw analysis payloads as fetched
	CREATE TABLE IF NOT EXISTS analysis_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		survey_id TEXT NOT NULL,
		endpoint TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL,
		payload TEXT NOT NULL,
		digest TEXT NOT NULL,
		respondents INTEGER NOT NULL DEFAULT 0,
		questions INTEGER NOT NULL DEFAULT 0,
		UNIQUE(survey_id, digest)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_survey ON analysis_snapshots(survey_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON analysis_snapshots(fetched_at);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// Snapshot is one stored analysis payload.
type Snapshot struct {
	ID          int64
	SurveyID    string
	Endpoint    string
	FetchedAt   time.Time
	Payload     []byte
	Digest      string
	Respondents int
	Questions   int
}

// Decode parses the stored payload.
func (s *Snapshot) Decode() (*model.Payload, error) {
	return model.DecodePayload(s.Payload)
}

// Digest returns the hex SHA3-256 digest of a payload body.
func Digest(payload []byte) string {
	sum := sha3.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// SaveSnapshot stores a payload for a survey. Digest is computed when empty,
// and FetchedAt defaults to now.
//
// A payload identical to one already stored for the same survey is not
// stored again; saved is false and id is the existing snapshot's id. The
// existing snapshot takes the newer fetch time and the endpoint, so a
// payload that returns to an earlier state is still the latest.
func (sdb *SnapshotDB) SaveSnapshot(ctx context.Context, s *Snapshot) (id int64, saved bool, err error) {
	if s.SurveyID == "" {
		return 0, false, errors.New("snapshot has no survey id")
	}
	if s.Digest == "" {
		s.Digest = Digest(s.Payload)
	}
	if s.FetchedAt.IsZero() {
		s.FetchedAt = time.Now()
	}
	fetchedAt := s.FetchedAt.UTC().Format(timeLayout)

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM analysis_snapshots WHERE survey_id = ? AND digest = ?`,
		s.SurveyID, s.Digest,
	).Scan(&id)
	switch {
	case err == nil:
		// Fixed-width timestamps compare correctly as text.
		_, err = tx.ExecContext(ctx, `
		UPDATE analysis_snapshots
		SET fetched_at = MAX(fetched_at, ?), endpoint = ?
		WHERE id = ?
		`, fetchedAt, s.Endpoint, id)
		if err != nil {
			return 0, false, fmt.Errorf("failed to refresh snapshot: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		var result sql.Result
		result, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_snapshots (survey_id, endpoint, fetched_at, payload, digest, respondents, questions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			s.SurveyID,
			s.Endpoint,
			fetchedAt,
			string(s.Payload),
			s.Digest,
			s.Respondents,
			s.Questions,
		)
		if err != nil {
			return 0, false, fmt.Errorf("failed to save snapshot: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return 0, false, fmt.Errorf("failed to read snapshot id: %w", err)
		}
		saved = true
	default:
		return 0, false, fmt.Errorf("failed to look up existing snapshot: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	s.ID = id
	return id, saved, nil
}

const snapshotColumns = `id, survey_id, endpoint, fetched_at, payload, digest, respondents, questions`

// LatestSnapshot returns the most recently fetched snapshot of a survey.
func (sdb *SnapshotDB) LatestSnapshot(ctx context.Context, surveyID string) (*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
	FROM analysis_snapshots
	WHERE survey_id = ?
	ORDER BY fetched_at DESC, id DESC
	LIMIT 1
	`
	return sdb.scanOne(sdb.db.QueryRowContext(ctx, query, surveyID))
}

// SnapshotByID returns a snapshot by its database ID.
func (sdb *SnapshotDB) SnapshotByID(ctx context.Context, id int64) (*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
	FROM analysis_snapshots
	WHERE id = ?
	`
	return sdb.scanOne(sdb.db.QueryRowContext(ctx, query, id))
}

func (sdb *SnapshotDB) scanOne(row *sql.Row) (*Snapshot, error) {
	var s Snapshot
	var fetchedAt, payload string

	err := row.Scan(
		&s.ID,
		&s.SurveyID,
		&s.Endpoint,
		&fetchedAt,
		&payload,
		&s.Digest,
		&s.Respondents,
		&s.Questions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	s.FetchedAt = parseTimestamp(fetchedAt)
	s.Payload = []byte(payload)
	return &s, nil
}

// SnapshotMetadata contains summary information about a snapshot.
// This is used for displaying history without loading the payload.
type SnapshotMetadata struct {
	ID          int64
	SurveyID    string
	Endpoint    string
	FetchedAt   time.Time
	Digest      string
	Respondents int
	Questions   int

	// Size is the payload size in bytes.
	Size int64
}

// History returns the snapshot metadata of a survey, newest first.
func (sdb *SnapshotDB) History(ctx context.Context, surveyID string) ([]SnapshotMetadata, error) {
	query := `
	SELECT id, survey_id, endpoint, fetched_at, digest, respondents, questions, length(payload)
	FROM analysis_snapshots
	WHERE survey_id = ?
	ORDER BY fetched_at DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot history: %w", err)
	}
	defer rows.Close()

	var results []SnapshotMetadata
	for rows.Next() {
		var meta SnapshotMetadata
		var fetchedAt string

		if err := rows.Scan(
			&meta.ID,
			&meta.SurveyID,
			&meta.Endpoint,
			&fetchedAt,
			&meta.Digest,
			&meta.Respondents,
			&meta.Questions,
			&meta.Size,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.FetchedAt = parseTimestamp(fetchedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// SurveySummary describes one survey with stored snapshots.
type SurveySummary struct {
	SurveyID  string
	Snapshots int
	LatestAt  time.Time
}

// ListSurveys returns every survey with at least one snapshot, ordered by id.
func (sdb *SnapshotDB) ListSurveys(ctx context.Context) ([]SurveySummary, error) {
	query := `
	SELECT survey_id, COUNT(*), MAX(fetched_at)
	FROM analysis_snapshots
	GROUP BY survey_id
	ORDER BY survey_id
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	defer rows.Close()

	var surveys []SurveySummary
	for rows.Next() {
		var s SurveySummary
		var latest string
		if err := rows.Scan(&s.SurveyID, &s.Snapshots, &latest); err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		s.LatestAt = parseTimestamp(latest)
		surveys = append(surveys, s)
	}

	return surveys, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
