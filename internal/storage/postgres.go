package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"

	"feedbacktriage/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("reading migrations file: %w", err)
	}
	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveTicket(ctx context.Context, t models.Ticket) error {
	query := `
		INSERT INTO tickets (ticket_id, source_id, source_type, category, priority,
			title, description, confidence_score, technical_details, quality_score,
			approval_status, reviewer, review_notes, reviewed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (ticket_id) DO UPDATE SET
			category = EXCLUDED.category,
			priority = EXCLUDED.priority,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			confidence_score = EXCLUDED.confidence_score,
			technical_details = EXCLUDED.technical_details,
			quality_score = EXCLUDED.quality_score`

	_, err := s.db.ExecContext(ctx, query,
		t.TicketID, t.SourceID, t.SourceType, t.Category, t.Priority,
		t.Title, t.Description, t.ConfidenceScore, t.TechnicalDetails, t.QualityScore,
		t.ApprovalStatus, t.Reviewer, t.ReviewNotes, t.ReviewedAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ticket_id, source_id, source_type, category, priority, title,
			description, confidence_score, technical_details, quality_score,
			approval_status, reviewer, review_notes, reviewed_at, created_at
		FROM tickets WHERE ticket_id = $1`, ticketID)

	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return models.Ticket{}, ErrNotFound
	}
	if err != nil {
		return models.Ticket{}, fmt.Errorf("querying ticket: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) UpdateTicket(ctx context.Context, t models.Ticket) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tickets
		SET category = $2, priority = $3, title = $4, description = $5,
			approval_status = $6, reviewer = $7, review_notes = $8,
			reviewed_at = $9, quality_score = $10
		WHERE ticket_id = $1`,
		t.TicketID, t.Category, t.Priority, t.Title, t.Description,
		t.ApprovalStatus, t.Reviewer, t.ReviewNotes, t.ReviewedAt, t.QualityScore)
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

func (s *PostgresStore) ListTickets(ctx context.Context) ([]models.Ticket, error) {
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

func (s *PostgresStore) AppendLog(ctx context.Context, entry models.ProcessingLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processing_log (ts, run_id, record_id, stage, decision, confidence, backend)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.Timestamp, entry.RunID, entry.RecordID, entry.Stage,
		entry.Decision, entry.Confidence, entry.Backend)
	if err != nil {
		return fmt.Errorf("appending log entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLog(ctx context.Context) ([]models.ProcessingLogEntry, error) {
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

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (models.Ticket, error) {
	var t models.Ticket
	var reviewedAt sql.NullTime
	err := row.Scan(&t.TicketID, &t.SourceID, &t.SourceType, &t.Category, &t.Priority,
		&t.Title, &t.Description, &t.ConfidenceScore, &t.TechnicalDetails, &t.QualityScore,
		&t.ApprovalStatus, &t.Reviewer, &t.ReviewNotes, &reviewedAt, &t.CreatedAt)
	if err != nil {
		return models.Ticket{}, err
	}
	if reviewedAt.Valid {
		ts := reviewedAt.Time.UTC()
		t.ReviewedAt = &ts
	}
	return t, nil
}
