package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

const ticketsCollection = "tickets"

type firestoreTicketRepository struct {
	client *firestore.Client
}

func NewFirestoreTicketRepository(client *firestore.Client) repository.TicketRepository {
	return &firestoreTicketRepository{
		client: client,
	}
}

func (r *firestoreTicketRepository) newestFirst() firestore.Query {
	return r.client.Collection(ticketsCollection).OrderBy("createdAt", firestore.Desc)
}

// Create stores ticket with server-assigned timestamps and copies the commit
// time back into it.
func (r *firestoreTicketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	result, err := r.client.Collection(ticketsCollection).Doc(ticket.ID).Create(ctx, ticket)
	if err != nil {
		return err
	}
	ticket.CreatedAt = result.UpdateTime
	ticket.UpdatedAt = result.UpdateTime
	return nil
}

func (r *firestoreTicketRepository) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	doc, err := r.client.Collection(ticketsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Ticket", err)
		}
		return nil, err
	}
	return decodeTicket(doc)
}

func (r *firestoreTicketRepository) List(ctx context.Context) ([]*entity.Ticket, error) {
	docs, err := r.newestFirst().Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeTickets(docs), nil
}

// Subscribe calls fn with the full ordered ticket list on every change
// until ctx is done. The snapshot listener reconnects on its own.
func (r *firestoreTicketRepository) Subscribe(ctx context.Context, fn repository.TicketSnapshotFunc) error {
	iter := r.newestFirst().Snapshots(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return err
		}
		fn(decodeTickets(docs))
	}
}

func decodeTickets(docs []*firestore.DocumentSnapshot) []*entity.Ticket {
	tickets := make([]*entity.Ticket, 0, len(docs))
	for _, doc := range docs {
		t, err := decodeTicket(doc)
		if err != nil {
			logger.Warn("Skipping malformed ticket %s: %v", doc.Ref.ID, err)
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets
}

func decodeTicket(doc *firestore.DocumentSnapshot) (*entity.Ticket, error) {
	var t entity.Ticket
	if err := doc.DataTo(&t); err != nil {
		return nil, err
	}
	t.ID = doc.Ref.ID
	if t.Votes == nil {
		t.Votes = []string{}
	}
	if t.ImageURLs == nil {
		t.ImageURLs = []string{}
	}
	return &t, nil
}
