package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"feedbacktriage/internal/models"
	"feedbacktriage/internal/oracle"
)

// fallbackConfidenceCap bounds the confidence of any result produced after
// degrading from the oracle path, so uncertain fallbacks never look certain.
const fallbackConfidenceCap = 60

type oracleResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// LLMClassifier sends record text plus the fixed taxonomy prompt to an
// oracle and parses the structured response. Any failure (call error, parse
// error, out-of-taxonomy category) degrades that single record to the rule
// classifier; the batch and the selected backend are unaffected.
type LLMClassifier struct {
	oracle   oracle.Oracle
	fallback *RuleClassifier
	logger   *zap.Logger
}

func NewLLMClassifier(o oracle.Oracle, fallback *RuleClassifier, logger *zap.Logger) *LLMClassifier {
	return &LLMClassifier{oracle: o, fallback: fallback, logger: logger}
}

func (c *LLMClassifier) Classify(ctx context.Context, rec models.FeedbackRecord) Outcome {
	prompt := buildPrompt(rec)

	response, err := c.oracle.Classify(ctx, prompt)
	if err != nil {
		c.logger.Warn("oracle call failed, degrading record to rule-based classification",
			zap.String("record_id", rec.SourceID),
			zap.String("backend", string(c.oracle.Name())),
			zap.Error(err))
		return c.degrade(ctx, rec, err)
	}

	parsed, err := parseOracleResponse(response)
	if err != nil {
		c.logger.Warn("oracle response unusable, degrading record to rule-based classification",
			zap.String("record_id", rec.SourceID),
			zap.String("backend", string(c.oracle.Name())),
			zap.Error(err))
		return c.degrade(ctx, rec, &oracle.Error{Backend: c.oracle.Name(), Err: err})
	}

	return Outcome{Result: parsed}
}

func (c *LLMClassifier) degrade(ctx context.Context, rec models.FeedbackRecord, cause error) Outcome {
	out := c.fallback.Classify(ctx, rec)
	if out.Result.Confidence > fallbackConfidenceCap {
		out.Result.Confidence = fallbackConfidenceCap
	}
	out.Degraded = true
	out.Err = cause
	return out
}

func buildPrompt(rec models.FeedbackRecord) string {
	var b strings.Builder
	b.WriteString("Classify the following customer feedback into exactly one category from: ")
	for i, cat := range models.Categories {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(cat))
	}
	b.WriteString(".\n\nReturn the response as a JSON object with this structure:\n")
	b.WriteString(`{"category": "...", "confidence": 0-100, "rationale": "..."}`)
	b.WriteString("\n\nFeedback: ")
	b.WriteString(rec.Text)
	if rec.Metadata.Rating > 0 {
		fmt.Fprintf(&b, "\nStar rating: %d/5", rec.Metadata.Rating)
	}
	return b.String()
}

func parseOracleResponse(response string) (models.ClassificationResult, error) {
	cleaned := stripCodeFences(strings.TrimSpace(response))

	var parsed oracleResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return models.ClassificationResult{}, fmt.Errorf("parsing response JSON: %w", err)
	}

	category, ok := normalizeCategory(parsed.Category)
	if !ok {
		return models.ClassificationResult{}, fmt.Errorf("category %q outside taxonomy", parsed.Category)
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return models.ClassificationResult{
		Category:   category,
		Confidence: confidence,
		Rationale:  parsed.Rationale,
	}, nil
}

// normalizeCategory tolerates casing and separator drift in model output
// ("feature_request", "FeatureRequest") but rejects anything outside the
// taxonomy.
func normalizeCategory(raw string) (models.Category, bool) {
	canon := strings.ToLower(strings.TrimSpace(raw))
	canon = strings.ReplaceAll(canon, "_", " ")
	canon = strings.ReplaceAll(canon, "-", " ")
	if canon == "featurerequest" {
		canon = "feature request"
	}
	for _, cat := range models.Categories {
		if canon == strings.ToLower(string(cat)) {
			return cat, true
		}
	}
	return "", false
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
