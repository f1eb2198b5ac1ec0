package repository

import (
	"context"

	"civicalert/internal/domain/entity"
)

// TicketSnapshotFunc receives the full ticket collection, newest first.
type TicketSnapshotFunc func(tickets []*entity.Ticket)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	// List returns every ticket ordered by createdAt descending.
	List(ctx context.Context) ([]*entity.Ticket, error)
	// Subscribe blocks, calling fn with each snapshot until ctx is done.
	Subscribe(ctx context.Context, fn TicketSnapshotFunc) error
}
