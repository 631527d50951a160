// Package ingest reads the two tabular feedback sources and normalizes their
// heterogeneous schemas into canonical feedback records.
package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"feedbacktriage/internal/models"
)

// SchemaError names the required column that was missing or empty in an
// input row. The row is skipped and counted; the batch continues.
type SchemaError struct {
	Source models.SourceType
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s row: missing required column %q", e.Source, e.Column)
}

var requiredColumns = map[models.SourceType][]string{
	models.SourceEmail:  {"email_id", "subject", "body", "sender_email", "timestamp"},
	models.SourceReview: {"review_id", "platform", "rating", "review_text", "user_name", "date", "app_version"},
}

// Normalize maps one raw row into a FeedbackRecord, validating the required
// columns for the source type.
func Normalize(row map[string]string, source models.SourceType) (models.FeedbackRecord, error) {
	for _, col := range requiredColumns[source] {
		if strings.TrimSpace(row[col]) == "" {
			return models.FeedbackRecord{}, &SchemaError{Source: source, Column: col}
		}
	}

	switch source {
	case models.SourceEmail:
		return models.FeedbackRecord{
			SourceID:   row["email_id"],
			SourceType: source,
			Text:       row["subject"] + " " + row["body"],
			Metadata: models.Metadata{
				Sender:    row["sender_email"],
				Timestamp: row["timestamp"],
			},
		}, nil
	case models.SourceReview:
		rating, err := strconv.Atoi(strings.TrimSpace(row["rating"]))
		if err != nil || rating < 1 || rating > 5 {
			return models.FeedbackRecord{}, &SchemaError{Source: source, Column: "rating"}
		}
		return models.FeedbackRecord{
			SourceID:   row["review_id"],
			SourceType: source,
			Text:       row["review_text"],
			Metadata: models.Metadata{
				Rating:     rating,
				Platform:   row["platform"],
				AppVersion: row["app_version"],
				UserName:   row["user_name"],
				Timestamp:  row["date"],
			},
		}, nil
	default:
		return models.FeedbackRecord{}, fmt.Errorf("unknown source type %q", source)
	}
}
