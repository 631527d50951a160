package ticket

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"feedbacktriage/internal/models"
)

func TestIDIsDeterministic(t *testing.T) {
	if got := ID("REV001"); got != "TICKET-REV001" {
		t.Fatalf("ID = %q, want TICKET-REV001", got)
	}
	if got := ID("EML042"); got != "TICKET-EML042" {
		t.Fatalf("ID = %q, want TICKET-EML042", got)
	}
}

func TestCreateBugTicket(t *testing.T) {
	rec := models.FeedbackRecord{
		SourceID:   "REV001",
		SourceType: models.SourceReview,
		Text:       "App crashes every time I try to sync my data. Lost all my notes!",
		Metadata:   models.Metadata{Rating: 1},
	}
	cls := models.ClassificationResult{
		Category:   models.CategoryBug,
		Confidence: 47,
		Rationale:  "rule match: Bug (signals: crash)",
	}
	details := &models.ExtractionDetails{Severity: models.SeveritySevere}
	pr := models.PriorityAssignment{
		Level:   models.PriorityCritical,
		Weights: map[string]float64{"category_base": 0.9, "severity_override": 1.0},
	}

	got := Create(rec, cls, details, pr)

	if got.TicketID != "TICKET-REV001" {
		t.Fatalf("ticket id = %q, want TICKET-REV001", got.TicketID)
	}
	if got.ApprovalStatus != models.StatusPendingReview {
		t.Fatalf("status = %q, every new ticket starts at Pending Review", got.ApprovalStatus)
	}
	if got.Title != "Fix: Application crash issue" {
		t.Fatalf("title = %q", got.Title)
	}
	if !strings.Contains(got.Description, rec.Text) {
		t.Fatal("description must carry the source text")
	}
	if !strings.Contains(got.Description, "Severity: Severe") {
		t.Fatalf("description missing technical details: %q", got.Description)
	}
	if !strings.Contains(got.TechnicalDetails, "Severity: Severe") {
		t.Fatalf("technical details = %q", got.TechnicalDetails)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created_at must be set")
	}
}

func TestCreateIsDeterministicUpToTimestamp(t *testing.T) {
	rec := models.FeedbackRecord{SourceID: "REV010", Text: "Please add dark mode, would love it"}
	cls := models.ClassificationResult{Category: models.CategoryFeatureRequest, Confidence: 70}
	pr := models.PriorityAssignment{Level: models.PriorityMedium}

	a := Create(rec, cls, nil, pr)
	b := Create(rec, cls, nil, pr)
	if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(models.Ticket{}, "CreatedAt")); diff != "" {
		t.Fatalf("tickets differ beyond CreatedAt (-a +b):\n%s", diff)
	}
	if a.Title != "Feature: Add dark mode support" {
		t.Fatalf("title = %q", a.Title)
	}
}

func TestCreateLongTextExcerpted(t *testing.T) {
	long := strings.Repeat("the app keeps freezing ", 60)
	rec := models.FeedbackRecord{SourceID: "EML001", Text: long}
	cls := models.ClassificationResult{Category: models.CategoryComplaint, Confidence: 55}

	got := Create(rec, cls, nil, models.PriorityAssignment{Level: models.PriorityMedium})
	firstLine := strings.SplitN(got.Description, "\n", 2)[0]
	if len(firstLine) > maxExcerptLen+3 {
		t.Fatalf("excerpt length %d exceeds limit", len(firstLine))
	}
	if !strings.HasSuffix(firstLine, "...") {
		t.Fatal("truncated excerpt must end with ellipsis")
	}
}

func TestExcerptKeepsRuneBoundaries(t *testing.T) {
	// 60 bytes lands mid-rune in a run of two-byte characters.
	text := "prüfung " + strings.Repeat("ö", 80)
	rec := models.FeedbackRecord{SourceID: "EML002", Text: text}
	cls := models.ClassificationResult{Category: models.CategoryOther, Confidence: 40}

	got := Create(rec, cls, nil, models.PriorityAssignment{Level: models.PriorityLow})
	if !utf8.ValidString(got.Title) {
		t.Fatalf("title is not valid UTF-8: %q", got.Title)
	}
	if !utf8.ValidString(got.Description) {
		t.Fatalf("description is not valid UTF-8: %q", got.Description)
	}
	if !strings.HasPrefix(got.Title, "Feedback: prüfung ") {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestTitleByCategory(t *testing.T) {
	cases := []struct {
		cat  models.Category
		text string
		want string
	}{
		{models.CategoryBug, "cannot login anymore", "Fix: Login authentication problem"},
		{models.CategoryBug, "something odd happened", "Fix: something odd happened"},
		{models.CategoryFeatureRequest, "export to pdf please", "Feature: Export functionality"},
		{models.CategoryPraise, "love it", "Positive feedback received"},
		{models.CategoryComplaint, "too slow", "User complaint - investigate"},
		{models.CategorySpam, "click here", "Spam content - review for removal"},
		{models.CategoryOther, "hello there", "Feedback: hello there"},
	}
	for _, tc := range cases {
		if got := title(tc.cat, tc.text); got != tc.want {
			t.Errorf("title(%q, %q) = %q, want %q", tc.cat, tc.text, got, tc.want)
		}
	}
}
