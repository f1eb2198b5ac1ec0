package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/internal/domain/service"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

const ticketPhotoFolder = "tickets"

type TicketUseCase struct {
	ticketRepo  repository.TicketRepository
	userRepo    repository.UserRepository
	fileService service.FileUploadService
	limiter     ActionLimiter
}

func NewTicketUseCase(ticketRepo repository.TicketRepository, userRepo repository.UserRepository, fileService service.FileUploadService, limiter ActionLimiter) *TicketUseCase {
	return &TicketUseCase{
		ticketRepo:  ticketRepo,
		userRepo:    userRepo,
		fileService: fileService,
		limiter:     limiter,
	}
}

type CreateTicketInput struct {
	Title       string
	Category    string
	Description string
	Location    *entity.Coordinate
	Photo       *Photo
}

func (in CreateTicketInput) validate() error {
	if strings.TrimSpace(in.Category) == "" {
		return errors.Validation("Category is required")
	}
	if !entity.TicketCategory(in.Category).Valid() {
		return errors.Validation(fmt.Sprintf("Unknown category %q", in.Category))
	}
	if in.Location == nil {
		return errors.Validation("Location is required")
	}
	if in.Photo != nil {
		return validatePhoto(in.Photo)
	}
	return nil
}

// CreateTicket uploads the optional photo and then writes the ticket, in
// that order, since the record stores the photo URL.
func (uc *TicketUseCase) CreateTicket(ctx context.Context, userID string, input CreateTicketInput) (*entity.Ticket, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	if uc.limiter != nil {
		if allowed, wait := uc.limiter.Allow(userID, "create_ticket"); !allowed {
			return nil, errors.TooManyRequests(fmt.Sprintf("Too many reports, try again in %s", wait.Round(time.Second)))
		}
	}

	imageURLs := []string{}
	if input.Photo != nil {
		url, err := uc.fileService.UploadFile(ctx, bytes.NewReader(input.Photo.Data), input.Photo.ContentType, ticketPhotoFolder, true)
		if err != nil {
			logger.Error("Failed to upload ticket photo for user %s: %v", userID, err)
			return nil, errors.Upload("Failed to upload photo", err)
		}
		imageURLs = append(imageURLs, url)
	}

	ticket := &entity.Ticket{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Category:    entity.TicketCategory(input.Category),
		Description: strings.TrimSpace(input.Description),
		Status:      entity.StatusPending,
		Location:    *input.Location,
		ImageURLs:   imageURLs,
		Votes:       []string{},
	}

	if err := uc.ticketRepo.Create(ctx, ticket); err != nil {
		logger.Error("Failed to create ticket for user %s: %v", userID, err)
		uc.discardPhotos(ctx, imageURLs)
		return nil, errors.Persistence("Failed to create ticket", err)
	}

	logger.Info("Ticket %s created by user %s (%s)", ticket.ID, userID, ticket.Category)
	return ticket, nil
}

// discardPhotos removes uploads whose ticket was never written, so a retry
// does not leave a second copy behind.
func (uc *TicketUseCase) discardPhotos(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := uc.fileService.DeleteFile(ctx, url); err != nil {
			logger.Warn("Failed to delete orphaned photo %s: %v", url, err)
		}
	}
}

func (uc *TicketUseCase) GetTicket(ctx context.Context, id string) (*entity.Ticket, error) {
	ticket, err := uc.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
		return nil, errors.Persistence("Failed to load ticket", err)
	}
	return ticket, nil
}

type ListTicketsInput struct {
	Tab      TicketTab
	Category *entity.TicketCategory
}

// ListTickets loads every ticket, newest first, and filters it for userID.
// The nearby tab uses the user's home city when one is set.
func (uc *TicketUseCase) ListTickets(ctx context.Context, userID string, input ListTicketsInput) ([]*entity.Ticket, error) {
	tickets, err := uc.ticketRepo.List(ctx)
	if err != nil {
		return nil, errors.Persistence("Failed to load tickets", err)
	}

	var home *entity.Coordinate
	if userID != "" && input.Tab == TabNearby {
		profile, err := uc.userRepo.GetByID(ctx, userID)
		if err != nil {
			logger.Warn("Could not load profile %s for nearby filter: %v", userID, err)
		} else {
			home = profile.Home()
		}
	}

	return FilterTickets(tickets, TicketQuery{
		Tab:           input.Tab,
		Category:      input.Category,
		CurrentUserID: userID,
		Home:          home,
	}), nil
}
