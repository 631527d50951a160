package classify

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"feedbacktriage/internal/models"
)

// RuleTable holds the keyword lists driving hybrid classification. Phrases
// containing a space are treated as more specific and score double.
type RuleTable struct {
	Bug            []string `yaml:"bug"`
	FeatureRequest []string `yaml:"feature_request"`
	Complaint      []string `yaml:"complaint"`
	Praise         []string `yaml:"praise"`
	Spam           []string `yaml:"spam"`
}

// DefaultRules returns the built-in keyword tables.
func DefaultRules() RuleTable {
	return RuleTable{
		Bug: []string{
			"crash", "error", "bug", "issue", "problem", "broken", "not working",
			"freezes", "stuck", "fails", "wrong", "incorrect", "lost data",
		},
		FeatureRequest: []string{
			"please add", "would love", "suggestion", "feature request",
			"missing", "wish", "improve", "enhancement",
		},
		Complaint: []string{
			"expensive", "slow", "poor", "bad", "terrible", "horrible",
			"disappointed", "frustrated", "angry",
		},
		Praise: []string{
			"amazing", "great", "love", "perfect", "excellent", "awesome",
			"fantastic", "wonderful", "best", "recommended",
		},
		Spam: []string{
			"click here", "www.", "money", "deal", "offer", "contact us",
		},
	}
}

// LoadRules reads a YAML rule table. Empty sections fall back to the built-in
// defaults so an override file can tune a single category.
func LoadRules(path string) (RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleTable{}, fmt.Errorf("reading rules file: %w", err)
	}
	var rules RuleTable
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RuleTable{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	defaults := DefaultRules()
	if len(rules.Bug) == 0 {
		rules.Bug = defaults.Bug
	}
	if len(rules.FeatureRequest) == 0 {
		rules.FeatureRequest = defaults.FeatureRequest
	}
	if len(rules.Complaint) == 0 {
		rules.Complaint = defaults.Complaint
	}
	if len(rules.Praise) == 0 {
		rules.Praise = defaults.Praise
	}
	if len(rules.Spam) == 0 {
		rules.Spam = defaults.Spam
	}
	return rules, nil
}

// RuleClassifier is the deterministic hybrid-mode classifier. It requires no
// external oracle and is the universal fallback.
type RuleClassifier struct {
	rules RuleTable
}

func NewRuleClassifier(rules RuleTable) *RuleClassifier {
	return &RuleClassifier{rules: rules}
}

// keywordScore sums rule matches for one category. A multi-word phrase is a
// stronger signal than a single keyword, so it scores 2 instead of 1.
func keywordScore(text string, keywords []string) (float64, []string) {
	var score float64
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			if strings.Contains(kw, " ") {
				score += 2
			} else {
				score++
			}
			matched = append(matched, kw)
		}
	}
	return score, matched
}

// Classify applies the keyword tables plus the numeric rating signal.
// Confidence is derived from match strength: the dominant category's share of
// all matched signals, boosted by the number of matches. No-match or
// ambiguous records default to Other with confidence at most 50.
func (c *RuleClassifier) Classify(_ context.Context, rec models.FeedbackRecord) Outcome {
	text := strings.ToLower(rec.Text)

	scores := map[models.Category]float64{}
	matches := map[models.Category][]string{}

	for _, entry := range []struct {
		category models.Category
		keywords []string
	}{
		{models.CategoryBug, c.rules.Bug},
		{models.CategoryFeatureRequest, c.rules.FeatureRequest},
		{models.CategoryComplaint, c.rules.Complaint},
		{models.CategoryPraise, c.rules.Praise},
		{models.CategorySpam, c.rules.Spam},
	} {
		score, matched := keywordScore(text, entry.keywords)
		scores[entry.category] = score
		matches[entry.category] = matched
	}

	// Rating is a secondary signal: low stars lean complaint, high stars lean
	// praise. Half weight so keywords stay decisive.
	rating := rec.Metadata.Rating
	if rating >= 1 && rating <= 2 {
		scores[models.CategoryComplaint] += 0.5
	}
	if rating >= 4 {
		scores[models.CategoryPraise] += 0.5
	}
	if scores[models.CategoryPraise] > 0 {
		exclaims := strings.Count(rec.Text, "!")
		if exclaims > 2 {
			exclaims = 2
		}
		scores[models.CategoryPraise] += 0.25 * float64(exclaims)
	}

	var total float64
	top := models.CategoryOther
	var topScore float64
	// Iterate the fixed taxonomy order so ties resolve deterministically.
	for _, cat := range models.Categories {
		s := scores[cat]
		total += s
		if s > topScore {
			topScore = s
			top = cat
		}
	}

	if topScore == 0 {
		return Outcome{Result: models.ClassificationResult{
			Category:   models.CategoryOther,
			Confidence: 30,
			Rationale:  "no classification rules matched",
		}}
	}

	share := topScore / total
	if share < 0.4 {
		return Outcome{Result: models.ClassificationResult{
			Category:   models.CategoryOther,
			Confidence: share * 100,
			Rationale:  fmt.Sprintf("ambiguous signals across categories (strongest: %s)", top),
		}}
	}

	confidence := share*60 + minFloat(topScore, 5)*7
	if confidence > 95 {
		confidence = 95
	}

	return Outcome{Result: models.ClassificationResult{
		Category:   top,
		Confidence: confidence,
		Rationale:  c.rationale(top, matches[top], rating),
	}}
}

func (c *RuleClassifier) rationale(cat models.Category, matched []string, rating int) string {
	sort.Strings(matched)
	var b strings.Builder
	fmt.Fprintf(&b, "rule match: %s", cat)
	if len(matched) > 0 {
		fmt.Fprintf(&b, " (signals: %s)", strings.Join(matched, ", "))
	}
	if rating > 0 {
		fmt.Fprintf(&b, "; rating %d/5", rating)
	}
	return b.String()
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
