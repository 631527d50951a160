package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feedbacktriage/internal/classify"
	"feedbacktriage/internal/export"
	"feedbacktriage/internal/ingest"
	"feedbacktriage/internal/models"
	"feedbacktriage/internal/notify"
	"feedbacktriage/internal/oracle"
	"feedbacktriage/internal/pipeline"
	"feedbacktriage/internal/priority"
	"feedbacktriage/internal/storage"
	"feedbacktriage/pkg/config"
)

var processFlags struct {
	reviewsFile string
	emailsFile  string
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the triage pipeline over input CSV files",
	Long: `Process reads support emails and app store reviews from CSV files,
classifies each record, assigns a priority, creates tickets and writes
the results to the configured outputs.

API keys are read from the environment (GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY). With no key set, the rule-based hybrid classifier
runs alone.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.reviewsFile, "reviews", "", "App store reviews CSV (overrides config)")
	f.StringVar(&processFlags.emailsFile, "emails", "", "Support emails CSV (overrides config)")
}

func runProcess(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if processFlags.reviewsFile != "" {
		cfg.Input.ReviewsFile = processFlags.reviewsFile
	}
	if processFlags.emailsFile != "" {
		cfg.Input.EmailsFile = processFlags.emailsFile
	}

	return runBatch(cmd.Context(), cfg, logger)
}

// runBatch executes one full triage run. Shared between process and watch.
func runBatch(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	sel := oracle.Select(oracle.Credentials{
		GeminiKey:    cfg.Oracle.GeminiAPIKey,
		OpenAIKey:    cfg.Oracle.OpenAIAPIKey,
		AnthropicKey: cfg.Oracle.AnthropicAPIKey,
	}, oracle.ClientConfig{
		GeminiModel:    cfg.Oracle.GeminiModel,
		OpenAIModel:    cfg.Oracle.OpenAIModel,
		AnthropicModel: cfg.Oracle.AnthropicModel,
		Timeout:        cfg.Oracle.Timeout,
		MaxTokens:      cfg.Oracle.MaxTokens,
		Temperature:    cfg.Oracle.Temperature,
	}, logger)

	rules := classify.DefaultRules()
	if cfg.Classifier.RulesPath != "" {
		rules, err = classify.LoadRules(cfg.Classifier.RulesPath)
		if err != nil {
			return fmt.Errorf("loading classification rules: %w", err)
		}
	}

	var records []models.FeedbackRecord
	skipped := 0

	emails, n, err := ingest.LoadFile(cfg.Input.EmailsFile, models.SourceEmail, logger)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Input.EmailsFile, err)
	}
	records = append(records, emails...)
	skipped += n

	reviews, n, err := ingest.LoadFile(cfg.Input.ReviewsFile, models.SourceReview, logger)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Input.ReviewsFile, err)
	}
	records = append(records, reviews...)
	skipped += n

	agent := pipeline.BuildAgent(sel, rules, logger)
	p := pipeline.New(agent, sel.Backend, store, pipeline.Config{
		MaxConcurrency: cfg.Processing.MaxConcurrency,
		PriorityOptions: priority.Options{
			Weights:             cfg.Priority.Weights,
			LowConfidenceCutoff: cfg.Classifier.ConfidenceThreshold,
		},
		AutoApproveThreshold: cfg.Review.AutoApproveThreshold,
	}, logger)

	summary, err := p.Run(ctx, records, skipped)
	if err != nil {
		return err
	}

	if err := exportOutputs(ctx, cfg, store, summary); err != nil {
		return err
	}

	if notifier := notify.NewSlackNotifier(cfg.Slack.Token, cfg.Slack.Channel, logger); notifier != nil {
		if err := notifier.PostSummary(summary); err != nil {
			logger.Warn("slack notification failed", zap.Error(err))
		}
	}

	fmt.Printf("Run %s: %d processed, %d skipped, %d degraded, %d failed (avg confidence %.1f)\n",
		summary.RunID, summary.Processed, summary.Skipped, summary.Degraded,
		summary.Failed, summary.AvgConfidence)
	return nil
}

func exportOutputs(ctx context.Context, cfg *config.Config, store storage.Store, summary models.BatchSummary) error {
	tickets, err := store.ListTickets(ctx)
	if err != nil {
		return fmt.Errorf("listing tickets: %w", err)
	}
	if err := export.WriteTickets(cfg.Output.TicketsFile, tickets); err != nil {
		return err
	}
	entries, err := store.ListLog(ctx)
	if err != nil {
		return fmt.Errorf("listing processing log: %w", err)
	}
	if err := export.WriteLog(cfg.Output.LogFile, entries); err != nil {
		return err
	}
	return export.WriteMetrics(cfg.Output.MetricsFile, summary)
}
