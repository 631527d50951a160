package models

import "time"

// SourceType identifies which tabular feed a record came from.
type SourceType string

const (
	SourceEmail  SourceType = "support_email"
	SourceReview SourceType = "app_store_review"
)

// Category is the fixed classification taxonomy.
type Category string

const (
	CategoryBug            Category = "Bug"
	CategoryFeatureRequest Category = "Feature Request"
	CategoryComplaint      Category = "Complaint"
	CategoryPraise         Category = "Praise"
	CategorySpam           Category = "Spam"
	CategoryOther          Category = "Other"
)

// Categories lists the full taxonomy in a stable order.
var Categories = []Category{
	CategoryBug,
	CategoryFeatureRequest,
	CategoryComplaint,
	CategoryPraise,
	CategorySpam,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// FeedbackRecord is the canonical record both input schemas normalize into.
// Immutable once produced by the normalizer.
type FeedbackRecord struct {
	SourceID   string     `json:"source_id"`
	SourceType SourceType `json:"source_type"`
	Text       string     `json:"text"`
	Metadata   Metadata   `json:"metadata"`
}

// Metadata carries the optional per-source fields. Rating is 0 when the
// source has no rating column (emails).
type Metadata struct {
	Rating     int    `json:"rating,omitempty"`
	Platform   string `json:"platform,omitempty"`
	AppVersion string `json:"app_version,omitempty"`
	Sender     string `json:"sender,omitempty"`
	UserName   string `json:"user_name,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// ClassificationResult is produced exactly once per record and never mutated.
type ClassificationResult struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"` // 0-100
	Rationale  string   `json:"rationale"`
}

type Severity string

const (
	SeveritySevere   Severity = "Severe"
	SeverityModerate Severity = "Moderate"
)

type Impact string

const (
	ImpactWide  Impact = "Widely requested"
	ImpactNiche Impact = "Niche"
)

// ExtractionDetails is the category-conditional payload. Only bugs and
// feature requests have extractors; other categories carry nil.
type ExtractionDetails struct {
	Severity      Severity `json:"severity,omitempty"`
	Devices       []string `json:"devices,omitempty"`
	OSVersions    []string `json:"os_versions,omitempty"`
	AppVersion    string   `json:"app_version,omitempty"`
	HasReproSteps bool     `json:"has_repro_steps,omitempty"`
	Impact        Impact   `json:"impact,omitempty"`
	Complexity    string   `json:"complexity,omitempty"`
}

type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "Critical"
	PriorityHigh     PriorityLevel = "High"
	PriorityMedium   PriorityLevel = "Medium"
	PriorityLow      PriorityLevel = "Low"
)

// Rank orders priority levels so adjustments can move one level at a time.
// Higher is more urgent.
func (p PriorityLevel) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// PriorityFromRank is the inverse of Rank, clamped to the valid range.
func PriorityFromRank(rank int) PriorityLevel {
	switch {
	case rank >= 3:
		return PriorityCritical
	case rank == 2:
		return PriorityHigh
	case rank == 1:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// PriorityAssignment records the assigned level together with the weighted
// signals that contributed to it, for audit.
type PriorityAssignment struct {
	Level   PriorityLevel      `json:"level"`
	Weights map[string]float64 `json:"weights"`
}

type ApprovalStatus string

const (
	StatusPendingReview ApprovalStatus = "Pending Review"
	StatusApproved      ApprovalStatus = "Approved"
	StatusRejected      ApprovalStatus = "Rejected"
	StatusEdited        ApprovalStatus = "Edited"
)

// Terminal reports whether no further approval transition is allowed.
func (s ApprovalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Ticket is the structured output artifact, one per processed record.
// Approval fields are mutated only by the review state machine.
type Ticket struct {
	TicketID         string         `json:"ticket_id"`
	SourceID         string         `json:"source_id"`
	SourceType       SourceType     `json:"source_type"`
	Category         Category       `json:"category"`
	Priority         PriorityLevel  `json:"priority"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	ConfidenceScore  float64        `json:"confidence_score"`
	TechnicalDetails string         `json:"technical_details"`
	QualityScore     int            `json:"quality_score"`
	ApprovalStatus   ApprovalStatus `json:"approval_status"`
	Reviewer         string         `json:"reviewer,omitempty"`
	ReviewNotes      string         `json:"review_notes,omitempty"`
	ReviewedAt       *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// ProcessingLogEntry is one append-only audit row per pipeline stage
// transition.
type ProcessingLogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	RecordID   string    `json:"record_id"`
	Stage      string    `json:"stage"`
	Decision   string    `json:"decision"`
	Confidence float64   `json:"confidence"`
	Backend    string    `json:"backend"`
}

// BatchSummary reports per-outcome counts for one pipeline run.
type BatchSummary struct {
	RunID         string                `json:"run_id"`
	Backend       string                `json:"backend"`
	Processed     int                   `json:"processed"`
	Skipped       int                   `json:"skipped"`
	Degraded      int                   `json:"degraded"`
	Failed        int                   `json:"failed"`
	Categories    map[Category]int      `json:"categories"`
	Priorities    map[PriorityLevel]int `json:"priorities"`
	AvgConfidence float64               `json:"avg_confidence"`
	StartedAt     time.Time             `json:"started_at"`
	Duration      time.Duration         `json:"duration"`
}
