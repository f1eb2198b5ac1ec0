package usecase

import (
	"context"
	"errors"
	"sync"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/pkg/logger"
)

type TicketListener func([]*entity.Ticket)

// TicketFeed keeps the latest full ticket snapshot and fans it out to
// listeners. Each snapshot replaces the previous one.
type TicketFeed struct {
	repo repository.TicketRepository

	mu        sync.Mutex
	latest    []*entity.Ticket
	hasLatest bool
	listeners map[uint64]TicketListener
	nextID    uint64

	// deliver serializes fan-out so listeners see snapshots in order.
	deliver sync.Mutex
}

func NewTicketFeed(repo repository.TicketRepository) *TicketFeed {
	return &TicketFeed{
		repo:      repo,
		listeners: make(map[uint64]TicketListener),
	}
}

// Run blocks until ctx is done or the subscription fails.
func (f *TicketFeed) Run(ctx context.Context) error {
	logger.Info("Ticket feed subscribed")
	err := f.repo.Subscribe(ctx, f.publish)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Ticket feed stopped: %v", err)
		return err
	}
	logger.Info("Ticket feed stopped")
	return nil
}

func (f *TicketFeed) publish(tickets []*entity.Ticket) {
	f.deliver.Lock()
	defer f.deliver.Unlock()

	f.mu.Lock()
	f.latest = tickets
	f.hasLatest = true
	listeners := make([]TicketListener, 0, len(f.listeners))
	for _, l := range f.listeners {
		listeners = append(listeners, l)
	}
	f.mu.Unlock()

	logger.Debug("Ticket snapshot with %d tickets delivered to %d listeners", len(tickets), len(listeners))
	for _, l := range listeners {
		l(tickets)
	}
}

// Latest returns the most recent snapshot and whether one has arrived.
func (f *TicketFeed) Latest() ([]*entity.Ticket, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.hasLatest
}

// Listen registers fn and, when a snapshot is already known, delivers it
// before returning. The returned func unregisters fn.
func (f *TicketFeed) Listen(fn TicketListener) func() {
	f.deliver.Lock()
	defer f.deliver.Unlock()

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	latest, ok := f.latest, f.hasLatest
	f.mu.Unlock()

	if ok {
		fn(latest)
	}

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}
