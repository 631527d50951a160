// Package ticket assembles the final ticket artifact from the upstream
// stages. Ticket ids are a pure function of the source id so re-processing
// the same input reproduces the same tickets.
package ticket

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"feedbacktriage/internal/extract"
	"feedbacktriage/internal/models"
)

// IDPrefix is prepended to every source id to form the ticket id.
const IDPrefix = "TICKET-"

const maxExcerptLen = 500

// ID derives the deterministic ticket id for a source record.
func ID(sourceID string) string {
	return IDPrefix + sourceID
}

// Create assembles a ticket. Approval status always starts at Pending Review;
// only the review state machine moves it from there.
func Create(rec models.FeedbackRecord, cls models.ClassificationResult, details *models.ExtractionDetails, pr models.PriorityAssignment) models.Ticket {
	return models.Ticket{
		TicketID:         ID(rec.SourceID),
		SourceID:         rec.SourceID,
		SourceType:       rec.SourceType,
		Category:         cls.Category,
		Priority:         pr.Level,
		Title:            title(cls.Category, rec.Text),
		Description:      description(rec, cls, details, pr),
		ConfidenceScore:  cls.Confidence,
		TechnicalDetails: extract.Summary(details),
		ApprovalStatus:   models.StatusPendingReview,
		CreatedAt:        time.Now().UTC(),
	}
}

func title(category models.Category, text string) string {
	lower := strings.ToLower(text)

	switch category {
	case models.CategoryBug:
		switch {
		case strings.Contains(lower, "crash"):
			return "Fix: Application crash issue"
		case strings.Contains(lower, "login"):
			return "Fix: Login authentication problem"
		case strings.Contains(lower, "sync"):
			return "Fix: Data synchronization issue"
		default:
			return "Fix: " + excerpt(text, 60)
		}
	case models.CategoryFeatureRequest:
		switch {
		case strings.Contains(lower, "dark mode"):
			return "Feature: Add dark mode support"
		case strings.Contains(lower, "calendar"):
			return "Feature: Calendar integration"
		case strings.Contains(lower, "export"):
			return "Feature: Export functionality"
		default:
			return "Feature: " + excerpt(text, 60)
		}
	case models.CategoryPraise:
		return "Positive feedback received"
	case models.CategoryComplaint:
		return "User complaint - investigate"
	case models.CategorySpam:
		return "Spam content - review for removal"
	default:
		return "Feedback: " + excerpt(text, 60)
	}
}

func description(rec models.FeedbackRecord, cls models.ClassificationResult, details *models.ExtractionDetails, pr models.PriorityAssignment) string {
	var b strings.Builder
	b.WriteString(excerpt(rec.Text, maxExcerptLen))

	if cls.Rationale != "" {
		b.WriteString("\n\nClassification: ")
		b.WriteString(cls.Rationale)
	}
	if s := extract.Summary(details); s != "" {
		b.WriteString("\nTechnical details: ")
		b.WriteString(s)
	}

	fmt.Fprintf(&b, "\nPriority: %s", pr.Level)
	if len(pr.Weights) > 0 {
		var signals []string
		for _, name := range []string{"category_base", "rating_boost", "rating_damp", "severity_override", "low_confidence_cap"} {
			if _, ok := pr.Weights[name]; ok {
				signals = append(signals, name)
			}
		}
		fmt.Fprintf(&b, " (signals: %s)", strings.Join(signals, ", "))
	}

	return b.String()
}

func excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	// Back up to a rune boundary so the cut never splits a multi-byte rune.
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
