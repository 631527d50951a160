package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"feedbacktriage/internal/models"
)

// SQLiteStore keeps tickets and the processing log in a local file so review
// actions work across runs without a database server.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS tickets (
		ticket_id         TEXT PRIMARY KEY,
		source_id         TEXT NOT NULL,
		source_type       TEXT NOT NULL,
		category          TEXT NOT NULL,
		priority          TEXT NOT NULL,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		confidence_score  REAL NOT NULL DEFAULT 0,
		technical_details TEXT NOT NULL DEFAULT '',
		quality_score     INTEGER NOT NULL DEFAULT 0,
		approval_status   TEXT NOT NULL DEFAULT 'Pending Review',
		reviewer          TEXT NOT NULL DEFAULT '',
		review_notes      TEXT NOT NULL DEFAULT '',
		reviewed_at       DATETIME,
		created_at        DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(approval_status);

	CREATE TABLE IF NOT EXISTS processing_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		ts         DATETIME NOT NULL,
		run_id     TEXT NOT NULL,
		record_id  TEXT NOT NULL,
		stage      TEXT NOT NULL,
		decision   TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL DEFAULT 0,
		backend    TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_processing_log_record ON processing_log(record_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("initializing sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveTicket(ctx context.Context, t models.Ticket) error {
	// Re-processing the same input upserts pipeline fields only; approval
	// fields are owned by the review state machine and survive re-saves.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tickets (ticket_id, source_id, source_type, category,
			priority, title, description, confidence_score, technical_details,
			quality_score, approval_status, reviewer, review_notes, reviewed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticket_id) DO UPDATE SET
			category = excluded.category,
			priority = excluded.priority,
			title = excluded.title,
			description = excluded.description,
			confidence_score = excluded.confidence_score,
			technical_details = excluded.technical_details,
			quality_score = excluded.quality_score`,
		t.TicketID, t.SourceID, t.SourceType, t.Category, t.Priority,
		t.Title, t.Description, t.ConfidenceScore, t.TechnicalDetails,
		t.QualityScore, t.ApprovalStatus, t.Reviewer, t.ReviewNotes, t.ReviewedAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving ticket: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ticket_id, source_id, source_type, category, priority, title,
			description, confidence_score, technical_details, quality_score,
			approval_status, reviewer, review_notes, reviewed_at, created_at
		FROM tickets WHERE ticket_id = ?`, ticketID)

	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return models.Ticket{}, ErrNotFound
	}
	if err != nil {
		return models.Ticket{}, fmt.Errorf("querying ticket: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) UpdateTicket(ctx context.Context, t models.Ticket) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tickets
		SET category = ?, priority = ?, title = ?, description = ?,
			approval_status = ?, reviewer = ?, review_notes = ?,
			reviewed_at = ?, quality_score = ?
		WHERE ticket_id = ?`,
		t.Category, t.Priority, t.Title, t.Description,
		t.ApprovalStatus, t.Reviewer, t.ReviewNotes, t.ReviewedAt, t.QualityScore,
		t.TicketID)
	if err != nil {
		return fmt.Errorf("updating ticket: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticket_id, source_id, source_type, category, priority, title,
			description, confidence_score, technical_details, quality_score,
			approval_status, reviewer, review_notes, reviewed_at, created_at
		FROM tickets ORDER BY ticket_id`)
	if err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *SQLiteStore) AppendLog(ctx context.Context, entry models.ProcessingLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processing_log (ts, run_id, record_id, stage, decision, confidence, backend)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp, entry.RunID, entry.RecordID, entry.Stage,
		entry.Decision, entry.Confidence, entry.Backend)
	if err != nil {
		return fmt.Errorf("appending log entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListLog(ctx context.Context) ([]models.ProcessingLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, run_id, record_id, stage, decision, confidence, backend
		FROM processing_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying processing log: %w", err)
	}
	defer rows.Close()

	var entries []models.ProcessingLogEntry
	for rows.Next() {
		var e models.ProcessingLogEntry
		if err := rows.Scan(&e.Timestamp, &e.RunID, &e.RecordID, &e.Stage,
			&e.Decision, &e.Confidence, &e.Backend); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
