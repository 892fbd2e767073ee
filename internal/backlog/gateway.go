// Package backlog defines the ticket store capability the classifier and the
// workflow orchestrator consume. Implementations own id allocation and write
// serialization.
package backlog

import (
	"context"
	"errors"

	"uiregression/internal/domain"
)

// ErrUnavailable wraps store I/O failures so callers can distinguish a broken
// backlog from a missing ticket.
var ErrUnavailable = errors.New("backlog unavailable")

// CreateRequest carries the fields for a new ticket. The store assigns the id
// and timestamps.
type CreateRequest struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Type        domain.TicketType
	Assignee    string
	Reporter    string
	Status      domain.TicketStatus
}

// Gateway is the consumed backlog capability. Get, UpdateStatus and
// UpdateComment return (nil, nil) when no ticket has the given id.
type Gateway interface {
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	ListByPrefix(ctx context.Context, prefix string) ([]domain.Ticket, error)
	Search(ctx context.Context, query string) ([]domain.Ticket, error)
	Create(ctx context.Context, req CreateRequest) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
	UpdateComment(ctx context.Context, id, text string) (*domain.Ticket, error)
}
