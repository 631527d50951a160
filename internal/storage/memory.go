package storage

import (
	"context"
	"sort"
	"sync"

	"feedbacktriage/internal/models"
)

// MemoryStore is the default store: everything for a batch fits in memory
// and is handed to the export layer at the end of the run. The single mutex
// also linearizes concurrent log appends from pipeline workers.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]models.Ticket
	log     []models.ProcessingLogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets: make(map[string]models.Ticket),
	}
}

func (s *MemoryStore) SaveTicket(_ context.Context, t models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-saving an existing ticket updates pipeline fields only; approval
	// fields are owned by the review state machine and survive re-saves.
	if prev, ok := s.tickets[t.TicketID]; ok {
		t.ApprovalStatus = prev.ApprovalStatus
		t.Reviewer = prev.Reviewer
		t.ReviewNotes = prev.ReviewNotes
		t.ReviewedAt = prev.ReviewedAt
		t.CreatedAt = prev.CreatedAt
	}
	s.tickets[t.TicketID] = t
	return nil
}

func (s *MemoryStore) GetTicket(_ context.Context, ticketID string) (models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) UpdateTicket(_ context.Context, t models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[t.TicketID]; !ok {
		return ErrNotFound
	}
	s.tickets[t.TicketID] = t
	return nil
}

func (s *MemoryStore) ListTickets(_ context.Context) ([]models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tickets := make([]models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		tickets = append(tickets, t)
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].TicketID < tickets[j].TicketID
	})
	return tickets, nil
}

func (s *MemoryStore) AppendLog(_ context.Context, entry models.ProcessingLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = append(s.log, entry)
	return nil
}

func (s *MemoryStore) ListLog(_ context.Context) ([]models.ProcessingLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ProcessingLogEntry, len(s.log))
	copy(out, s.log)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
