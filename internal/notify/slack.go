// Package notify posts batch summaries to Slack.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"feedbacktriage/internal/models"
)

type SlackNotifier struct {
	api     *slack.Client
	channel string
	logger  *zap.Logger
}

// NewSlackNotifier returns nil when no token is configured, so callers can
// treat notification as optional.
func NewSlackNotifier(token, channel string, logger *zap.Logger) *SlackNotifier {
	if token == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{
		api:     slack.New(token),
		channel: channel,
		logger:  logger,
	}
}

func (n *SlackNotifier) PostSummary(summary models.BatchSummary) error {
	_, ts, err := n.api.PostMessage(n.channel, slack.MsgOptionText(formatSummary(summary), false))
	if err != nil {
		return fmt.Errorf("post slack summary: %w", err)
	}
	n.logger.Info("posted batch summary to slack",
		zap.String("channel", n.channel),
		zap.String("ts", ts))
	return nil
}

func formatSummary(s models.BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Feedback triage run %s*\n", s.RunID)
	fmt.Fprintf(&b, "Backend: %s\n", s.Backend)
	fmt.Fprintf(&b, "Processed: %d | Skipped: %d | Degraded: %d | Failed: %d\n",
		s.Processed, s.Skipped, s.Degraded, s.Failed)
	fmt.Fprintf(&b, "Average confidence: %.1f\n", s.AvgConfidence)

	if len(s.Categories) > 0 {
		b.WriteString("Categories:")
		for _, cat := range models.Categories {
			if n, ok := s.Categories[cat]; ok {
				fmt.Fprintf(&b, " %s=%d", cat, n)
			}
		}
		b.WriteString("\n")
	}
	if len(s.Priorities) > 0 {
		b.WriteString("Priorities:")
		for _, lvl := range []models.PriorityLevel{
			models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow,
		} {
			if n, ok := s.Priorities[lvl]; ok {
				fmt.Fprintf(&b, " %s=%d", lvl, n)
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Duration: %s", s.Duration.Round(time.Millisecond))
	return b.String()
}
