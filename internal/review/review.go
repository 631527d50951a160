// Package review implements the human approval workflow as an explicit
// finite state machine over ticket approval status, plus the diagnostic
// quality score. Approval is always a human action; the quality score never
// gates it.
package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"feedbacktriage/internal/models"
	"feedbacktriage/internal/storage"
)

// Action is a reviewer decision on a ticket.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionEdit    Action = "edit"
)

// InvalidTransitionError reports an approval action the current state does
// not allow. The ticket is left unchanged.
type InvalidTransitionError struct {
	TicketID string
	From     models.ApprovalStatus
	Action   Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("ticket %s: cannot %s from status %q", e.TicketID, e.Action, e.From)
}

// Edits carries optional field overrides applied by an edit action. Zero
// values leave the corresponding ticket field untouched.
type Edits struct {
	Title       string
	Description string
	Category    models.Category
	Priority    models.PriorityLevel
	Notes       string
}

// Reviewer applies approval actions. Actions on the same ticket id are
// serialized so that of two conflicting concurrent actions only the first
// wins; the second observes the new state and fails the transition check.
type Reviewer struct {
	store  storage.Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store storage.Store, logger *zap.Logger) *Reviewer {
	return &Reviewer{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (r *Reviewer) lockFor(ticketID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[ticketID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[ticketID] = lock
	}
	return lock
}

// Review validates and applies one approval action. Approved and Rejected
// are terminal; Edited allows a further approve/reject (or another edit).
func (r *Reviewer) Review(ctx context.Context, ticketID string, action Action, reviewer string, edits *Edits) (models.Ticket, error) {
	lock := r.lockFor(ticketID)
	lock.Lock()
	defer lock.Unlock()

	t, err := r.store.GetTicket(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}

	next, err := nextStatus(t, action)
	if err != nil {
		return models.Ticket{}, err
	}

	now := time.Now().UTC()
	t.ApprovalStatus = next
	t.Reviewer = reviewer
	t.ReviewedAt = &now

	if action == ActionEdit && edits != nil {
		applyEdits(&t, edits)
	}
	if edits != nil && edits.Notes != "" {
		t.ReviewNotes = edits.Notes
	}

	if err := r.store.UpdateTicket(ctx, t); err != nil {
		return models.Ticket{}, err
	}

	r.logger.Info("ticket reviewed",
		zap.String("ticket_id", ticketID),
		zap.String("action", string(action)),
		zap.String("status", string(next)),
		zap.String("reviewer", reviewer))
	return t, nil
}

func nextStatus(t models.Ticket, action Action) (models.ApprovalStatus, error) {
	invalid := func() (models.ApprovalStatus, error) {
		return "", &InvalidTransitionError{TicketID: t.TicketID, From: t.ApprovalStatus, Action: action}
	}

	switch t.ApprovalStatus {
	case models.StatusPendingReview, models.StatusEdited:
		switch action {
		case ActionApprove:
			return models.StatusApproved, nil
		case ActionReject:
			return models.StatusRejected, nil
		case ActionEdit:
			return models.StatusEdited, nil
		default:
			return invalid()
		}
	default:
		// Approved and Rejected are terminal.
		return invalid()
	}
}

func applyEdits(t *models.Ticket, edits *Edits) {
	if edits.Title != "" {
		t.Title = edits.Title
	}
	if edits.Description != "" {
		t.Description = edits.Description
	}
	if edits.Category != "" && edits.Category.Valid() {
		t.Category = edits.Category
	}
	if edits.Priority != "" {
		t.Priority = edits.Priority
	}
}

// QualityScore rates ticket completeness and classification confidence on a
// 0-100 scale. It is diagnostic only.
func QualityScore(t models.Ticket) (int, []string) {
	score := 100
	var issues []string

	checks := []struct {
		missing bool
		penalty int
		issue   string
	}{
		{t.Title == "", 20, "missing title"},
		{t.Description == "", 20, "missing description"},
		{t.Category == "", 20, "missing category"},
		{t.Priority == "", 20, "missing priority"},
	}
	for _, c := range checks {
		if c.missing {
			score -= c.penalty
			issues = append(issues, c.issue)
		}
	}

	if len(t.Description) > 0 && len(t.Description) < 10 {
		score -= 10
		issues = append(issues, "description too short")
	}
	if t.ConfidenceScore < 50 {
		score -= 15
		issues = append(issues, "low confidence score")
	}

	if score < 0 {
		score = 0
	}
	return score, issues
}
