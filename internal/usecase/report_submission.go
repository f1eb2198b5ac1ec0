package usecase

import (
	"context"
	"strings"
	"sync"

	"civicalert/internal/domain/entity"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

type ReportState string

const (
	ReportIdle            ReportState = "idle"
	ReportPickingLocation ReportState = "picking_location"
	ReportFormOpen        ReportState = "form_open"
	ReportSubmitting      ReportState = "submitting"
)

type ReportForm struct {
	Title       string
	Category    string
	Description string
	Photo       *Photo
}

type TicketCreator interface {
	CreateTicket(ctx context.Context, userID string, input CreateTicketInput) (*entity.Ticket, error)
}

// ReportSubmissionFlow takes a user from picking a point on the map to a
// stored ticket. Field values survive a failed submit.
type ReportSubmissionFlow struct {
	tickets TicketCreator
	mapCtl  MapController
	userID  string

	mu           sync.Mutex
	state        ReportState
	location     *entity.Coordinate
	form         ReportForm
	panelVisible bool
	lastErr      error
}

func NewReportSubmissionFlow(tickets TicketCreator, mapCtl MapController, userID string) *ReportSubmissionFlow {
	return &ReportSubmissionFlow{
		tickets:      tickets,
		mapCtl:       mapCtl,
		userID:       userID,
		state:        ReportIdle,
		panelVisible: true,
	}
}

// StartPicking hides the list panel and turns on selecting mode.
func (f *ReportSubmissionFlow) StartPicking() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != ReportIdle {
		return errors.Validation("A report is already in progress")
	}
	f.state = ReportPickingLocation
	f.panelVisible = false
	f.lastErr = nil
	f.mapCtl.SetSelecting(true)
	return nil
}

// CancelPicking returns to idle without storing a location.
func (f *ReportSubmissionFlow) CancelPicking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != ReportPickingLocation {
		return false
	}
	f.state = ReportIdle
	f.location = nil
	f.panelVisible = true
	f.mapCtl.SetSelecting(false)
	return true
}

// HandleLocation opens the form at the picked point.
func (f *ReportSubmissionFlow) HandleLocation(at entity.Coordinate) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != ReportPickingLocation {
		return false
	}
	f.location = &at
	f.state = ReportFormOpen
	f.panelVisible = true
	f.mapCtl.SetSelecting(false)
	return true
}

func (f *ReportSubmissionFlow) UpdateForm(form ReportForm) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != ReportFormOpen {
		return errors.Validation("No report form is open")
	}
	f.form = form
	return nil
}

// CloseForm discards the open form.
func (f *ReportSubmissionFlow) CloseForm() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != ReportFormOpen {
		return false
	}
	f.reset()
	return true
}

// Submit creates the ticket. Missing category or location is rejected
// before anything is written; any failure leaves the form open.
func (f *ReportSubmissionFlow) Submit(ctx context.Context) (*entity.Ticket, error) {
	f.mu.Lock()
	if f.state != ReportFormOpen {
		f.mu.Unlock()
		return nil, errors.Validation("No report form is open")
	}
	if strings.TrimSpace(f.form.Category) == "" {
		f.lastErr = errors.Validation("Category is required")
		f.mu.Unlock()
		return nil, f.lastErr
	}
	if f.location == nil {
		f.lastErr = errors.Validation("Location is required")
		f.mu.Unlock()
		return nil, f.lastErr
	}

	input := CreateTicketInput{
		Title:       f.form.Title,
		Category:    f.form.Category,
		Description: f.form.Description,
		Location:    f.location,
		Photo:       f.form.Photo,
	}
	f.state = ReportSubmitting
	f.mu.Unlock()

	ticket, err := f.tickets.CreateTicket(ctx, f.userID, input)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		logger.Error("Report submission failed for user %s: %v", f.userID, err)
		f.state = ReportFormOpen
		f.lastErr = err
		return nil, err
	}

	f.reset()
	return ticket, nil
}

func (f *ReportSubmissionFlow) reset() {
	f.state = ReportIdle
	f.location = nil
	f.form = ReportForm{}
	f.panelVisible = true
	f.lastErr = nil
}

func (f *ReportSubmissionFlow) State() ReportState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *ReportSubmissionFlow) PanelVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.panelVisible
}

func (f *ReportSubmissionFlow) Form() ReportForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

func (f *ReportSubmissionFlow) Location() *entity.Coordinate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.location == nil {
		return nil
	}
	l := *f.location
	return &l
}

func (f *ReportSubmissionFlow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}
