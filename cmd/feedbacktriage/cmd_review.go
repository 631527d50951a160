package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"feedbacktriage/internal/models"
	"feedbacktriage/internal/review"
	"feedbacktriage/pkg/config"
)

var reviewFlags struct {
	action      string
	reviewer    string
	title       string
	description string
	category    string
	priority    string
	notes       string
}

var reviewCmd = &cobra.Command{
	Use:   "review <ticket-id>",
	Short: "Apply a human approval action to a ticket",
	Long: `Review applies an approval action to a stored ticket.

Allowed transitions:
  Pending Review -> approve | reject | edit
  Edited         -> approve | reject | edit
Approved and Rejected are terminal.

Requires a persistent database driver (postgres or sqlite).`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	f := reviewCmd.Flags()
	f.StringVar(&reviewFlags.action, "action", "", "approve, reject or edit (required)")
	f.StringVar(&reviewFlags.reviewer, "reviewer", "", "Reviewer identity (required)")
	f.StringVar(&reviewFlags.title, "title", "", "Replacement title (edit only)")
	f.StringVar(&reviewFlags.description, "description", "", "Replacement description (edit only)")
	f.StringVar(&reviewFlags.category, "category", "", "Replacement category (edit only)")
	f.StringVar(&reviewFlags.priority, "priority", "", "Replacement priority (edit only)")
	f.StringVar(&reviewFlags.notes, "notes", "", "Review notes")
	_ = reviewCmd.MarkFlagRequired("action")
	_ = reviewCmd.MarkFlagRequired("reviewer")
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "memory" {
		return fmt.Errorf("review requires a persistent database driver, got %q", cfg.Database.Driver)
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	var action review.Action
	switch reviewFlags.action {
	case "approve":
		action = review.ActionApprove
	case "reject":
		action = review.ActionReject
	case "edit":
		action = review.ActionEdit
	default:
		return fmt.Errorf("unknown action %q: want approve, reject or edit", reviewFlags.action)
	}

	edits := &review.Edits{
		Title:       reviewFlags.title,
		Description: reviewFlags.description,
		Notes:       reviewFlags.notes,
	}
	if reviewFlags.category != "" {
		cat := models.Category(reviewFlags.category)
		if !cat.Valid() {
			return fmt.Errorf("unknown category %q", reviewFlags.category)
		}
		edits.Category = cat
	}
	if reviewFlags.priority != "" {
		lvl := models.PriorityLevel(reviewFlags.priority)
		switch lvl {
		case models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
			edits.Priority = lvl
		default:
			return fmt.Errorf("unknown priority %q", reviewFlags.priority)
		}
	}

	r := review.New(store, logger)
	t, err := r.Review(cmd.Context(), args[0], action, reviewFlags.reviewer, edits)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s (reviewer %s)\n", t.TicketID, t.ApprovalStatus, t.Reviewer)
	return nil
}
