package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"feedbacktriage/internal/models"
)

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteTickets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.csv")
	now := time.Now().UTC()
	tickets := []models.Ticket{
		{TicketID: "TICKET-REV002", Category: models.CategoryPraise, Priority: models.PriorityLow, ApprovalStatus: models.StatusPendingReview, CreatedAt: now},
		{TicketID: "TICKET-REV001", Category: models.CategoryBug, Priority: models.PriorityCritical, ApprovalStatus: models.StatusApproved, Reviewer: "alex", ReviewedAt: &now, CreatedAt: now},
	}

	if err := WriteTickets(path, tickets); err != nil {
		t.Fatalf("WriteTickets: %v", err)
	}

	rows := readBack(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "ticket_id" {
		t.Fatalf("header = %v", rows[0])
	}
	// Sorted by ticket id regardless of input order.
	if rows[1][0] != "TICKET-REV001" || rows[2][0] != "TICKET-REV002" {
		t.Fatalf("order = %q, %q", rows[1][0], rows[2][0])
	}
	if rows[1][10] != string(models.StatusApproved) {
		t.Fatalf("approval status column = %q", rows[1][10])
	}
}

func TestWriteLogAndMetrics(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out", "processing_log.csv")
	entries := []models.ProcessingLogEntry{
		{Timestamp: time.Now().UTC(), RunID: "run-1", RecordID: "REV001", Stage: "classification", Decision: "Bug", Confidence: 47, Backend: "hybrid"},
		{Timestamp: time.Now().UTC(), RunID: "run-1", RecordID: "REV001", Stage: "priority", Decision: "Critical", Confidence: 47, Backend: "hybrid"},
	}
	if err := WriteLog(logPath, entries); err != nil {
		t.Fatalf("WriteLog: %v", err)
	}
	rows := readBack(t, logPath)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][3] != "classification" || rows[2][4] != "Critical" {
		t.Fatalf("rows = %v", rows)
	}

	metricsPath := filepath.Join(dir, "metrics.csv")
	summary := models.BatchSummary{
		RunID:      "run-1",
		Backend:    "hybrid",
		Processed:  2,
		Skipped:    1,
		Categories: map[models.Category]int{models.CategoryBug: 1, models.CategoryPraise: 1},
		Priorities: map[models.PriorityLevel]int{models.PriorityCritical: 1, models.PriorityLow: 1},
		StartedAt:  time.Now().UTC(),
		Duration:   1500 * time.Millisecond,
	}
	if err := WriteMetrics(metricsPath, summary); err != nil {
		t.Fatalf("WriteMetrics: %v", err)
	}
	mrows := readBack(t, metricsPath)
	found := map[string]string{}
	for _, row := range mrows[1:] {
		found[row[0]] = row[1]
	}
	if found["processed"] != "2" || found["category.Bug"] != "1" || found["priority.Critical"] != "1" {
		t.Fatalf("metrics = %v", found)
	}
}
