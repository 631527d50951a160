package classify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"feedbacktriage/internal/models"
	"feedbacktriage/internal/oracle"
)

type fakeOracle struct {
	response string
	err      error
}

func (f *fakeOracle) Name() oracle.Backend { return oracle.BackendOpenAI }

func (f *fakeOracle) Classify(context.Context, string) (string, error) {
	return f.response, f.err
}

func TestLLMClassifierParsesResponse(t *testing.T) {
	c := NewLLMClassifier(&fakeOracle{
		response: `{"category": "Bug", "confidence": 88, "rationale": "describes a crash"}`,
	}, NewRuleClassifier(DefaultRules()), zap.NewNop())

	out := c.Classify(context.Background(), models.FeedbackRecord{SourceID: "REV001", Text: "App crashes"})
	if out.Degraded {
		t.Fatalf("unexpected degradation: %v", out.Err)
	}
	if out.Result.Category != models.CategoryBug {
		t.Fatalf("category = %q, want Bug", out.Result.Category)
	}
	if out.Result.Confidence != 88 {
		t.Fatalf("confidence = %v, want 88", out.Result.Confidence)
	}
}

func TestLLMClassifierFencedAndUnderscoredResponse(t *testing.T) {
	c := NewLLMClassifier(&fakeOracle{
		response: "```json\n{\"category\": \"feature_request\", \"confidence\": 75, \"rationale\": \"asks for dark mode\"}\n```",
	}, NewRuleClassifier(DefaultRules()), zap.NewNop())

	out := c.Classify(context.Background(), models.FeedbackRecord{SourceID: "REV004", Text: "Please add dark mode"})
	if out.Degraded {
		t.Fatalf("unexpected degradation: %v", out.Err)
	}
	if out.Result.Category != models.CategoryFeatureRequest {
		t.Fatalf("category = %q, want Feature Request", out.Result.Category)
	}
}

func TestLLMClassifierDegradesOnCallFailure(t *testing.T) {
	callErr := &oracle.Error{Backend: oracle.BackendOpenAI, Err: errors.New("request timed out")}
	c := NewLLMClassifier(&fakeOracle{err: callErr},
		NewRuleClassifier(DefaultRules()), zap.NewNop())

	rec := models.FeedbackRecord{
		SourceID: "REV001",
		Text:     "App crashes every time I try to sync my data. Lost all my notes!",
		Metadata: models.Metadata{Rating: 1},
	}
	out := c.Classify(context.Background(), rec)

	if !out.Degraded {
		t.Fatal("expected degraded outcome on oracle failure")
	}
	if out.Result.Category != models.CategoryBug {
		t.Fatalf("fallback category = %q, want Bug", out.Result.Category)
	}
	if out.Result.Confidence > fallbackConfidenceCap {
		t.Fatalf("degraded confidence = %v, want at most %d", out.Result.Confidence, fallbackConfidenceCap)
	}
	var oe *oracle.Error
	if !errors.As(out.Err, &oe) {
		t.Fatalf("outcome error %v does not wrap *oracle.Error", out.Err)
	}
}

func TestLLMClassifierDegradesOnMalformedResponse(t *testing.T) {
	for _, response := range []string{
		"not json at all",
		`{"category": "Vague", "confidence": 80, "rationale": "made up"}`,
		`{"confidence": 80}`,
	} {
		c := NewLLMClassifier(&fakeOracle{response: response},
			NewRuleClassifier(DefaultRules()), zap.NewNop())

		out := c.Classify(context.Background(), models.FeedbackRecord{SourceID: "X", Text: "love it"})
		if !out.Degraded {
			t.Errorf("response %q: expected degradation", response)
		}
		if out.Err == nil {
			t.Errorf("response %q: degraded outcome must carry the cause", response)
		}
	}
}

func TestLLMClassifierClampsConfidence(t *testing.T) {
	c := NewLLMClassifier(&fakeOracle{
		response: `{"category": "Spam", "confidence": 250, "rationale": "obvious"}`,
	}, NewRuleClassifier(DefaultRules()), zap.NewNop())

	out := c.Classify(context.Background(), models.FeedbackRecord{SourceID: "X", Text: "click here"})
	if out.Result.Confidence != 100 {
		t.Fatalf("confidence = %v, want clamped to 100", out.Result.Confidence)
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]models.Category{
		"Bug":             models.CategoryBug,
		"bug":             models.CategoryBug,
		"feature_request": models.CategoryFeatureRequest,
		"Feature-Request": models.CategoryFeatureRequest,
		"FEATURE REQUEST": models.CategoryFeatureRequest,
		"other":           models.CategoryOther,
	}
	for raw, want := range cases {
		got, ok := normalizeCategory(raw)
		if !ok || got != want {
			t.Errorf("normalizeCategory(%q) = %q, %v; want %q, true", raw, got, ok, want)
		}
	}
	if _, ok := normalizeCategory("question"); ok {
		t.Error("normalizeCategory must reject categories outside the taxonomy")
	}
}
