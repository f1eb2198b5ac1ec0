package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicalert/internal/domain/entity"
	"civicalert/pkg/errors"
)

func seedTickets(repo *fakeTicketRepo, tickets ...*entity.Ticket) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.tickets = append(repo.tickets, tickets...)
}

func TestCreateTicketValidatesBeforeAnyCall(t *testing.T) {
	tickets := newFakeTicketRepo()
	files := &fakeFiles{}
	uc := NewTicketUseCase(tickets, newFakeUserRepo(), files, nil)
	loc := &entity.Coordinate{Latitude: 44.43, Longitude: 26.10}

	tests := []struct {
		name  string
		input CreateTicketInput
	}{
		{"missing category", CreateTicketInput{Location: loc}},
		{"unknown category", CreateTicketInput{Category: "noise", Location: loc}},
		{"missing location", CreateTicketInput{Category: "safety"}},
		{"photo too large", CreateTicketInput{Category: "safety", Location: loc, Photo: &Photo{Data: make([]byte, MaxPhotoSize+1), ContentType: "image/png"}}},
		{"photo wrong type", CreateTicketInput{Category: "safety", Location: loc, Photo: &Photo{Data: []byte("x"), ContentType: "application/pdf"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateTicket(context.Background(), "u1", tt.input)
			assert.True(t, errors.Is(err, errors.CodeValidation))
		})
	}
	assert.Equal(t, 0, tickets.creates)
	assert.Empty(t, files.calls)
}

func TestCreateTicketRequiresUser(t *testing.T) {
	uc := NewTicketUseCase(newFakeTicketRepo(), newFakeUserRepo(), &fakeFiles{}, nil)

	_, err := uc.CreateTicket(context.Background(), "", CreateTicketInput{Category: "safety"})
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestCreateTicketRateLimited(t *testing.T) {
	tickets := newFakeTicketRepo()
	limiter := &fakeLimiter{blocked: map[string]bool{"create_ticket": true}}
	uc := NewTicketUseCase(tickets, newFakeUserRepo(), &fakeFiles{}, limiter)

	_, err := uc.CreateTicket(context.Background(), "u1", CreateTicketInput{
		Category: "safety",
		Location: &entity.Coordinate{Latitude: 44.43, Longitude: 26.10},
	})
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
	assert.Equal(t, []string{"u1:create_ticket"}, limiter.calls)
	assert.Equal(t, 0, tickets.creates)
}

func TestListTicketsNearbyUsesProfileHome(t *testing.T) {
	tickets := newFakeTicketRepo()
	now := time.Now()
	seedTickets(tickets,
		&entity.Ticket{ID: "close", UserID: "u2", Category: entity.CategorySafety, Location: entity.Coordinate{Latitude: 46.01, Longitude: 25.01}, CreatedAt: now},
		&entity.Ticket{ID: "far", UserID: "u1", Category: entity.CategorySafety, Location: entity.Coordinate{Latitude: 44.43, Longitude: 26.10}, CreatedAt: now.Add(-time.Hour)},
	)
	profile := &entity.UserProfile{ID: "u1", HomeCity: &entity.HomeCity{Name: "Cluj", Latitude: 46.0, Longitude: 25.0}}
	uc := NewTicketUseCase(tickets, newFakeUserRepo(profile), &fakeFiles{}, nil)

	nearby, err := uc.ListTickets(context.Background(), "u1", ListTicketsInput{Tab: TabNearby})
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, "close", nearby[0].ID)

	mine, err := uc.ListTickets(context.Background(), "u1", ListTicketsInput{Tab: TabMine})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "far", mine[0].ID)

	noHome, err := uc.ListTickets(context.Background(), "ghost", ListTicketsInput{Tab: TabNearby})
	require.NoError(t, err)
	assert.Len(t, noHome, 2, "unknown home passes everything through")
}

func TestGetTicketNotFound(t *testing.T) {
	uc := NewTicketUseCase(newFakeTicketRepo(), newFakeUserRepo(), &fakeFiles{}, nil)

	_, err := uc.GetTicket(context.Background(), "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestCreateTicketDeletesPhotoWhenWriteFails(t *testing.T) {
	tickets := newFakeTicketRepo()
	tickets.failNext = errors.Internal("firestore unavailable", nil)
	files := &fakeFiles{}
	uc := NewTicketUseCase(tickets, newFakeUserRepo(), files, nil)
	input := CreateTicketInput{
		Category: "safety",
		Location: &entity.Coordinate{Latitude: 44.43, Longitude: 26.10},
		Photo:    &Photo{Data: []byte("\x89PNG\r\n\x1a\n"), ContentType: "image/png"},
	}

	_, err := uc.CreateTicket(context.Background(), "u1", input)
	require.True(t, errors.Is(err, errors.CodePersistence))
	require.Len(t, files.calls, 1)
	assert.Equal(t, []string{"https://storage.googleapis.com/test-bucket/public/tickets/object"}, files.deleted)

	created, err := uc.CreateTicket(context.Background(), "u1", input)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://storage.googleapis.com/test-bucket/public/tickets/object"}, created.ImageURLs)
	assert.Len(t, files.deleted, 1, "a successful write keeps its photo")
}

func TestCreateTicketWriteFailureWithoutPhotoDeletesNothing(t *testing.T) {
	tickets := newFakeTicketRepo()
	tickets.failNext = errors.Internal("firestore unavailable", nil)
	files := &fakeFiles{}
	uc := NewTicketUseCase(tickets, newFakeUserRepo(), files, nil)

	_, err := uc.CreateTicket(context.Background(), "u1", CreateTicketInput{
		Category: "other",
		Location: &entity.Coordinate{Latitude: 44.43, Longitude: 26.10},
	})
	require.True(t, errors.Is(err, errors.CodePersistence))
	assert.Empty(t, files.deleted)
}
