// Package priority computes a priority level from weighted signals. Assign is
// a pure function of its inputs so identical (record, classification,
// extraction, options) always yield the identical assignment.
package priority

import (
	"strings"

	"feedbacktriage/internal/models"
)

// Options is the externally supplied tuning surface. The analyzer consumes
// it and owns no state of its own.
type Options struct {
	// Weights maps lowercased category names to base weights in [0,1].
	Weights map[string]float64
	// LowConfidenceCutoff caps priority at Medium for classifications whose
	// confidence (0-100) falls below it.
	LowConfidenceCutoff float64
}

// DefaultWeights orders the categories Bug > Complaint > FeatureRequest >
// Other > Praise >= Spam.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"bug":             0.9,
		"complaint":       0.6,
		"feature request": 0.5,
		"other":           0.3,
		"praise":          0.2,
		"spam":            0.1,
	}
}

// Assign derives the priority level:
//
//	base level from the category weight, one level up for 1-2 star ratings,
//	one level down for 4-5 stars, capped at Medium when confidence is below
//	the cutoff. A Severe bug forces Critical regardless of weights.
func Assign(rec models.FeedbackRecord, cls models.ClassificationResult, details *models.ExtractionDetails, opts Options) models.PriorityAssignment {
	contributing := map[string]float64{}

	base, ok := opts.Weights[strings.ToLower(string(cls.Category))]
	if !ok {
		base = 0.3
	}
	contributing["category_base"] = base

	rank := rankFromWeight(base)

	switch rating := rec.Metadata.Rating; {
	case rating >= 1 && rating <= 2:
		rank++
		contributing["rating_boost"] = 0.1
	case rating >= 4:
		rank--
		contributing["rating_damp"] = -0.1
	}

	if cls.Confidence < opts.LowConfidenceCutoff && rank > models.PriorityMedium.Rank() {
		rank = models.PriorityMedium.Rank()
		contributing["low_confidence_cap"] = -base
	}

	if details != nil && details.Severity == models.SeveritySevere && cls.Category == models.CategoryBug {
		rank = models.PriorityCritical.Rank()
		contributing["severity_override"] = 1.0
	}

	if rank < 0 {
		rank = 0
	}

	return models.PriorityAssignment{
		Level:   models.PriorityFromRank(rank),
		Weights: contributing,
	}
}

func rankFromWeight(w float64) int {
	switch {
	case w >= 0.75:
		return models.PriorityHigh.Rank()
	case w >= 0.4:
		return models.PriorityMedium.Rank()
	default:
		return models.PriorityLow.Rank()
	}
}
