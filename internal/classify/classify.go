// Package classify implements the classification stage of the triage
// pipeline: an LLM-backed agent with a per-record fallback to deterministic
// keyword rules, and the rule engine itself.
package classify

import (
	"context"

	"feedbacktriage/internal/models"
)

// Outcome is the result of classifying one record. Degraded is set when the
// oracle path failed and the hybrid rules produced the result instead; Err
// then carries the oracle error for logging. Classification itself never
// fails: every record receives a category.
type Outcome struct {
	Result   models.ClassificationResult
	Degraded bool
	Err      error
}

// Agent assigns a category, confidence and rationale to a record.
type Agent interface {
	Classify(ctx context.Context, rec models.FeedbackRecord) Outcome
}
