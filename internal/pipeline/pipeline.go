// Package pipeline runs the per-record agent pipeline over a batch:
// classification, conditional extraction, priority analysis, ticket creation
// and quality review, with bounded parallelism and per-record isolation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"feedbacktriage/internal/classify"
	"feedbacktriage/internal/extract"
	"feedbacktriage/internal/models"
	"feedbacktriage/internal/oracle"
	"feedbacktriage/internal/priority"
	"feedbacktriage/internal/review"
	"feedbacktriage/internal/storage"
	"feedbacktriage/internal/ticket"
)

type Config struct {
	MaxConcurrency       int
	PriorityOptions      priority.Options
	AutoApproveThreshold float64
}

type Pipeline struct {
	agent   classify.Agent
	backend oracle.Backend
	store   storage.Store
	cfg     Config
	logger  *zap.Logger
}

// BuildAgent wires the classification agent for the selected backend: the
// LLM classifier with rule fallback when an oracle is available, plain rules
// otherwise.
func BuildAgent(sel oracle.Selection, rules classify.RuleTable, logger *zap.Logger) classify.Agent {
	ruleClassifier := classify.NewRuleClassifier(rules)
	if sel.Oracle == nil {
		return ruleClassifier
	}
	return classify.NewLLMClassifier(sel.Oracle, ruleClassifier, logger)
}

func New(agent classify.Agent, backend oracle.Backend, store storage.Store, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &Pipeline{
		agent:   agent,
		backend: backend,
		store:   store,
		cfg:     cfg,
		logger:  logger,
	}
}

type recordResult struct {
	ticket   models.Ticket
	degraded bool
	failed   bool
}

// Run processes a batch. Records are independent: workers run them in
// parallel up to the concurrency limit, and a failure on one record never
// aborts its siblings. skippedInput is the count of rows already dropped by
// normalization, folded into the summary.
func (p *Pipeline) Run(ctx context.Context, records []models.FeedbackRecord, skippedInput int) (models.BatchSummary, error) {
	runID := uuid.NewString()
	started := time.Now()

	p.logger.Info("starting batch run",
		zap.String("run_id", runID),
		zap.String("backend", string(p.backend)),
		zap.Int("records", len(records)),
		zap.Int("workers", p.cfg.MaxConcurrency))

	results := make([]recordResult, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrency)
	for i, rec := range records {
		g.Go(func() error {
			results[i] = p.processRecord(ctx, runID, rec)
			return nil
		})
	}
	// Workers never return errors; record-level failures are counted.
	_ = g.Wait()

	summary := models.BatchSummary{
		RunID:      runID,
		Backend:    string(p.backend),
		Skipped:    skippedInput,
		Categories: make(map[models.Category]int),
		Priorities: make(map[models.PriorityLevel]int),
		StartedAt:  started.UTC(),
	}

	var confidenceTotal float64
	for _, r := range results {
		if r.failed {
			summary.Failed++
			continue
		}
		summary.Processed++
		if r.degraded {
			summary.Degraded++
		}
		summary.Categories[r.ticket.Category]++
		summary.Priorities[r.ticket.Priority]++
		confidenceTotal += r.ticket.ConfidenceScore
	}
	if summary.Processed > 0 {
		summary.AvgConfidence = confidenceTotal / float64(summary.Processed)
	}
	summary.Duration = time.Since(started)

	p.logger.Info("batch run complete",
		zap.String("run_id", runID),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("degraded", summary.Degraded),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

func (p *Pipeline) processRecord(ctx context.Context, runID string, rec models.FeedbackRecord) recordResult {
	outcome := p.agent.Classify(ctx, rec)
	cls := outcome.Result

	backend := p.backend
	if outcome.Degraded {
		backend = oracle.BackendHybrid
	}
	p.appendLog(ctx, runID, rec.SourceID, "classification", string(cls.Category), cls.Confidence, backend)

	details := extract.Extract(rec, cls)
	extractDecision := "skipped"
	if details != nil {
		extractDecision = extract.Summary(details)
	}
	p.appendLog(ctx, runID, rec.SourceID, "extraction", extractDecision, cls.Confidence, backend)

	pr := priority.Assign(rec, cls, details, p.cfg.PriorityOptions)
	p.appendLog(ctx, runID, rec.SourceID, "priority", string(pr.Level), cls.Confidence, backend)

	t := ticket.Create(rec, cls, details, pr)
	p.appendLog(ctx, runID, rec.SourceID, "ticket", t.TicketID, cls.Confidence, backend)

	score, issues := review.QualityScore(t)
	t.QualityScore = score
	qualityDecision := fmt.Sprintf("quality=%d", score)
	if score >= int(p.cfg.AutoApproveThreshold) {
		// Advisory only: approval stays a human action.
		qualityDecision += " (auto-approve eligible)"
	}
	if len(issues) > 0 {
		p.logger.Debug("quality issues found",
			zap.String("ticket_id", t.TicketID),
			zap.Strings("issues", issues))
	}
	p.appendLog(ctx, runID, rec.SourceID, "quality_review", qualityDecision, cls.Confidence, backend)

	if err := p.store.SaveTicket(ctx, t); err != nil {
		p.logger.Error("failed to save ticket",
			zap.String("ticket_id", t.TicketID),
			zap.Error(err))
		return recordResult{failed: true}
	}

	return recordResult{ticket: t, degraded: outcome.Degraded}
}

// appendLog writes one audit entry. The store linearizes concurrent appends;
// append failures are logged but never fail the record.
func (p *Pipeline) appendLog(ctx context.Context, runID, recordID, stage, decision string, confidence float64, backend oracle.Backend) {
	entry := models.ProcessingLogEntry{
		Timestamp:  time.Now().UTC(),
		RunID:      runID,
		RecordID:   recordID,
		Stage:      stage,
		Decision:   decision,
		Confidence: confidence,
		Backend:    string(backend),
	}
	if err := p.store.AppendLog(ctx, entry); err != nil {
		p.logger.Error("failed to append processing log entry",
			zap.String("record_id", recordID),
			zap.String("stage", stage),
			zap.Error(err))
	}
}
