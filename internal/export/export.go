// Package export writes batch results to CSV files for downstream review
// tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"feedbacktriage/internal/models"
)

// WriteTickets writes one row per ticket, sorted by ticket ID for stable
// diffs between runs.
func WriteTickets(path string, tickets []models.Ticket) error {
	sorted := make([]models.Ticket, len(tickets))
	copy(sorted, tickets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TicketID < sorted[j].TicketID })

	return writeCSV(path, [][]string{{
		"ticket_id", "source_id", "source_type", "category", "priority",
		"title", "description", "confidence_score", "technical_details",
		"quality_score", "approval_status", "reviewer", "review_notes",
		"reviewed_at", "created_at",
	}}, func(w *csv.Writer) error {
		for _, t := range sorted {
			reviewedAt := ""
			if t.ReviewedAt != nil {
				reviewedAt = t.ReviewedAt.UTC().Format(time.RFC3339)
			}
			row := []string{
				t.TicketID,
				t.SourceID,
				string(t.SourceType),
				string(t.Category),
				string(t.Priority),
				t.Title,
				t.Description,
				strconv.FormatFloat(t.ConfidenceScore, 'f', 1, 64),
				t.TechnicalDetails,
				strconv.Itoa(t.QualityScore),
				string(t.ApprovalStatus),
				t.Reviewer,
				t.ReviewNotes,
				reviewedAt,
				t.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteLog writes the processing log in append order.
func WriteLog(path string, entries []models.ProcessingLogEntry) error {
	return writeCSV(path, [][]string{{
		"timestamp", "run_id", "record_id", "stage", "decision",
		"confidence", "backend_used",
	}}, func(w *csv.Writer) error {
		for _, e := range entries {
			row := []string{
				e.Timestamp.UTC().Format(time.RFC3339Nano),
				e.RunID,
				e.RecordID,
				e.Stage,
				e.Decision,
				strconv.FormatFloat(e.Confidence, 'f', 1, 64),
				e.Backend,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteMetrics writes a per-run summary in key/value form.
func WriteMetrics(path string, summary models.BatchSummary) error {
	return writeCSV(path, [][]string{{"metric", "value"}}, func(w *csv.Writer) error {
		rows := [][]string{
			{"run_id", summary.RunID},
			{"backend", summary.Backend},
			{"processed", strconv.Itoa(summary.Processed)},
			{"skipped", strconv.Itoa(summary.Skipped)},
			{"degraded", strconv.Itoa(summary.Degraded)},
			{"failed", strconv.Itoa(summary.Failed)},
			{"avg_confidence", strconv.FormatFloat(summary.AvgConfidence, 'f', 1, 64)},
			{"started_at", summary.StartedAt.Format(time.RFC3339)},
			{"duration", summary.Duration.String()},
		}
		for _, cat := range models.Categories {
			if n, ok := summary.Categories[cat]; ok {
				rows = append(rows, []string{"category." + string(cat), strconv.Itoa(n)})
			}
		}
		for _, lvl := range []models.PriorityLevel{
			models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow,
		} {
			if n, ok := summary.Priorities[lvl]; ok {
				rows = append(rows, []string{"priority." + string(lvl), strconv.Itoa(n)})
			}
		}
		return w.WriteAll(rows)
	})
}

func writeCSV(path string, header [][]string, body func(*csv.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(header); err != nil {
		return err
	}
	if err := body(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
