package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Run summarizes one completed reconciliation run.
type Run struct {
	StartedAt         time.Time
	FinishedAt        time.Time
	BusinessDate      string
	MessagesProcessed int
	AttachmentsSaved  int
}

// SavedAttachment records one archived attachment copy within a run.
type SavedAttachment struct {
	RowIndex   int
	Sender     string
	Subject    string
	Attachment string
	SavedPath  string
}

// Store is the SQLite-backed run-history database
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

// Open opens (creating if needed) the run-history database
func Open(dbPath string, logger *logrus.Logger) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.WithField("path", dbPath).Info("Run history initialized")
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts a run summary and returns its ID.
func (s *Store) RecordRun(run *Run) (int64, error) {
	query := `
		INSERT INTO runs (started_at, finished_at, business_date, messages_processed, attachments_saved)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query,
		run.StartedAt, run.FinishedAt, run.BusinessDate,
		run.MessagesProcessed, run.AttachmentsSaved)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return id, nil
}

// RecordAttachment inserts one saved-attachment record for a run.
func (s *Store) RecordAttachment(runID int64, rec *SavedAttachment) error {
	query := `
		INSERT INTO saved_attachments (run_id, row_index, sender, subject, attachment, saved_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, runID, rec.RowIndex, rec.Sender, rec.Subject, rec.Attachment, rec.SavedPath); err != nil {
		return fmt.Errorf("failed to record attachment: %w", err)
	}
	return nil
}

// LastRun returns the most recent run summary, or nil if none exists.
func (s *Store) LastRun() (*Run, error) {
	query := `
		SELECT started_at, finished_at, business_date, messages_processed, attachments_saved
		FROM runs ORDER BY id DESC LIMIT 1
	`
	run := &Run{}
	err := s.db.QueryRow(query).Scan(
		&run.StartedAt, &run.FinishedAt, &run.BusinessDate,
		&run.MessagesProcessed, &run.AttachmentsSaved)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}
	return run, nil
}

// AttachmentCount returns the number of saved-attachment records for a run.
func (s *Store) AttachmentCount(runID int64) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM saved_attachments WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attachments: %w", err)
	}
	return count, nil
}
