package storage

import (
	"context"
	"errors"

	"feedbacktriage/internal/models"
)

// ErrNotFound is returned when a ticket id has no stored ticket.
var ErrNotFound = errors.New("ticket not found")

// Store persists tickets and the append-only processing log. The log is
// write-once: entries are never mutated or deleted.
type Store interface {
	SaveTicket(ctx context.Context, t models.Ticket) error
	GetTicket(ctx context.Context, ticketID string) (models.Ticket, error)
	UpdateTicket(ctx context.Context, t models.Ticket) error
	ListTickets(ctx context.Context) ([]models.Ticket, error)

	AppendLog(ctx context.Context, entry models.ProcessingLogEntry) error
	ListLog(ctx context.Context) ([]models.ProcessingLogEntry, error)

	Close() error
}
