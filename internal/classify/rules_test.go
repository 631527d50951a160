package classify

import (
	"context"
	"testing"

	"feedbacktriage/internal/models"
)

func TestRuleClassifierBugReview(t *testing.T) {
	c := NewRuleClassifier(DefaultRules())

	rec := models.FeedbackRecord{
		SourceID:   "REV001",
		SourceType: models.SourceReview,
		Text:       "App crashes every time I try to sync my data. Lost all my notes!",
		Metadata:   models.Metadata{Rating: 1},
	}

	out := c.Classify(context.Background(), rec)
	if out.Degraded {
		t.Fatal("rule classification must never be degraded")
	}
	if out.Result.Category != models.CategoryBug {
		t.Fatalf("category = %q, want %q", out.Result.Category, models.CategoryBug)
	}
	if out.Result.Confidence <= 0 || out.Result.Confidence > 95 {
		t.Fatalf("confidence = %v, want (0,95]", out.Result.Confidence)
	}
	if out.Result.Rationale == "" {
		t.Fatal("rationale must be populated")
	}
}

func TestRuleClassifierPraiseReview(t *testing.T) {
	c := NewRuleClassifier(DefaultRules())

	rec := models.FeedbackRecord{
		SourceID:   "REV002",
		SourceType: models.SourceReview,
		Text:       "Love this app! Works great!",
		Metadata:   models.Metadata{Rating: 5},
	}

	out := c.Classify(context.Background(), rec)
	if out.Result.Category != models.CategoryPraise {
		t.Fatalf("category = %q, want %q", out.Result.Category, models.CategoryPraise)
	}
	if out.Result.Confidence < 60 {
		t.Fatalf("confidence = %v, want a strong score for an unambiguous praise", out.Result.Confidence)
	}
}

func TestRuleClassifierNoMatch(t *testing.T) {
	c := NewRuleClassifier(DefaultRules())

	out := c.Classify(context.Background(), models.FeedbackRecord{
		SourceID: "EML099",
		Text:     "Regarding my account",
	})
	if out.Result.Category != models.CategoryOther {
		t.Fatalf("category = %q, want %q", out.Result.Category, models.CategoryOther)
	}
	if out.Result.Confidence != 30 {
		t.Fatalf("confidence = %v, want the no-match default 30", out.Result.Confidence)
	}
}

func TestRuleClassifierAmbiguousSignals(t *testing.T) {
	c := NewRuleClassifier(DefaultRules())

	// One keyword from each of three categories: no category dominates.
	out := c.Classify(context.Background(), models.FeedbackRecord{
		SourceID: "EML100",
		Text:     "great app but slow and has a bug",
	})
	if out.Result.Category != models.CategoryOther {
		t.Fatalf("category = %q, want %q for ambiguous signals", out.Result.Category, models.CategoryOther)
	}
	if out.Result.Confidence > 40 {
		t.Fatalf("confidence = %v, want low confidence for ambiguous signals", out.Result.Confidence)
	}
}

func TestRuleClassifierDeterministic(t *testing.T) {
	c := NewRuleClassifier(DefaultRules())
	rec := models.FeedbackRecord{
		SourceID: "REV003",
		Text:     "The app freezes on startup, terrible experience",
		Metadata: models.Metadata{Rating: 2},
	}

	first := c.Classify(context.Background(), rec)
	for i := 0; i < 10; i++ {
		got := c.Classify(context.Background(), rec)
		if got.Result != first.Result {
			t.Fatalf("run %d: result %+v differs from first %+v", i, got.Result, first.Result)
		}
	}
}

func TestRuleClassifierConfidenceBounds(t *testing.T) {
	c := NewRuleClassifier(DefaultRules())

	texts := []string{
		"crash error bug issue problem broken not working freezes stuck fails wrong incorrect lost data",
		"please add would love suggestion feature request missing wish improve enhancement",
		"amazing great love perfect excellent awesome fantastic wonderful best recommended!!!",
		"",
		"hello",
	}
	for _, text := range texts {
		out := c.Classify(context.Background(), models.FeedbackRecord{Text: text, Metadata: models.Metadata{Rating: 5}})
		if out.Result.Confidence < 0 || out.Result.Confidence > 95 {
			t.Errorf("text %q: confidence %v outside [0,95]", text, out.Result.Confidence)
		}
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}
