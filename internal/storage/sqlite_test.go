package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"feedbacktriage/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "triage.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func pipelineTicket() models.Ticket {
	return models.Ticket{
		TicketID:         "TICKET-REV001",
		SourceID:         "REV001",
		SourceType:       models.SourceReview,
		Category:         models.CategoryBug,
		Priority:         models.PriorityCritical,
		Title:            "Fix: Application crash issue",
		Description:      "App crashes when syncing",
		ConfidenceScore:  47,
		TechnicalDetails: "Severity: Severe",
		QualityScore:     85,
		ApprovalStatus:   models.StatusPendingReview,
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStoreTicketLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.SaveTicket(ctx, pipelineTicket()); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTicket(ctx, "TICKET-REV001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Category != models.CategoryBug || got.ApprovalStatus != models.StatusPendingReview {
		t.Fatalf("ticket = %+v", got)
	}

	got.ApprovalStatus = models.StatusApproved
	got.Reviewer = "alex"
	now := time.Now().UTC().Truncate(time.Second)
	got.ReviewedAt = &now
	if err := s.UpdateTicket(ctx, got); err != nil {
		t.Fatal(err)
	}

	updated, err := s.GetTicket(ctx, "TICKET-REV001")
	if err != nil {
		t.Fatal(err)
	}
	if updated.ApprovalStatus != models.StatusApproved || updated.Reviewer != "alex" {
		t.Fatalf("after update: %+v", updated)
	}
}

func TestSQLiteStoreResaveKeepsApprovalDecision(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.SaveTicket(ctx, pipelineTicket()); err != nil {
		t.Fatal(err)
	}

	approved, err := s.GetTicket(ctx, "TICKET-REV001")
	if err != nil {
		t.Fatal(err)
	}
	approved.ApprovalStatus = models.StatusApproved
	approved.Reviewer = "alex"
	approved.ReviewNotes = "confirmed against crash logs"
	now := time.Now().UTC().Truncate(time.Second)
	approved.ReviewedAt = &now
	if err := s.UpdateTicket(ctx, approved); err != nil {
		t.Fatal(err)
	}

	// Re-processing the same input yields the same ticket id with fresh
	// pipeline fields and status back at Pending Review.
	reprocessed := pipelineTicket()
	reprocessed.Description = "App crashes when syncing, second run"
	reprocessed.ConfidenceScore = 52
	if err := s.SaveTicket(ctx, reprocessed); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTicket(ctx, "TICKET-REV001")
	if err != nil {
		t.Fatal(err)
	}
	if got.ApprovalStatus != models.StatusApproved {
		t.Fatalf("status = %q, re-save must not touch the approval decision", got.ApprovalStatus)
	}
	if got.Reviewer != "alex" || got.ReviewNotes != "confirmed against crash logs" || got.ReviewedAt == nil {
		t.Fatalf("review fields lost on re-save: %+v", got)
	}
	if got.Description != "App crashes when syncing, second run" || got.ConfidenceScore != 52 {
		t.Fatalf("pipeline fields not refreshed on re-save: %+v", got)
	}
}

func TestSQLiteStoreAppendAndListLog(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	entries := []models.ProcessingLogEntry{
		{Timestamp: time.Now().UTC().Truncate(time.Second), RunID: "run-1", RecordID: "REV001", Stage: "classification", Decision: "Bug", Confidence: 47, Backend: "hybrid"},
		{Timestamp: time.Now().UTC().Truncate(time.Second), RunID: "run-1", RecordID: "REV001", Stage: "priority", Decision: "Critical", Confidence: 47, Backend: "hybrid"},
	}
	for _, e := range entries {
		if err := s.AppendLog(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListLog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Stage != "classification" || got[1].Decision != "Critical" {
		t.Fatalf("entries = %+v", got)
	}
}
