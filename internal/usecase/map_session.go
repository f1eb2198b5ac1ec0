package usecase

import (
	"context"
	"sync"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/internal/domain/service"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

const (
	EventTicketsSnapshot = "tickets.snapshot"
	EventOnboardingState = "onboarding.state"
	EventReportState     = "report.state"
	EventError           = "error"
)

// SessionSink receives outbound session events. It must not block.
type SessionSink func(event string, payload interface{})

type TicketsSnapshotPayload struct {
	Tab      TicketTab        `json:"tab"`
	Category string           `json:"category,omitempty"`
	Tickets  []*entity.Ticket `json:"tickets"`
}

type OnboardingStatePayload struct {
	State   OnboardingState    `json:"state"`
	Pending *entity.Coordinate `json:"pending,omitempty"`
	Home    *entity.Coordinate `json:"home,omitempty"`
}

type ReportStatePayload struct {
	State        ReportState        `json:"state"`
	PanelVisible bool               `json:"panel_visible"`
	Location     *entity.Coordinate `json:"location,omitempty"`
	Error        string             `json:"error,omitempty"`
	TicketID     string             `json:"ticket_id,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MapSessionDeps struct {
	Users    repository.UserRepository
	Tickets  TicketCreator
	Feed     *TicketFeed
	Surfaces service.MapSurfaceFactory
	Map      MapOptions
}

// MapSession is the map screen of one connected user: one map controller
// shared by the onboarding and report flows, plus the ticket list filters.
type MapSession struct {
	userID     string
	ctl        *MapSelectionController
	onboarding *ProfileLocationOnboarding
	report     *ReportSubmissionFlow
	feed       *TicketFeed
	emit       SessionSink

	mu       sync.Mutex
	tab      TicketTab
	category *entity.TicketCategory
	tickets  []*entity.Ticket
	stopFeed func()
	closed   bool
}

func NewMapSession(deps MapSessionDeps, profile *entity.UserProfile, emit SessionSink) *MapSession {
	ctl := NewMapSelectionController(deps.Surfaces, deps.Map)
	s := &MapSession{
		userID:     profile.ID,
		ctl:        ctl,
		onboarding: NewProfileLocationOnboarding(deps.Users, ctl, profile),
		report:     NewReportSubmissionFlow(deps.Tickets, ctl, profile.ID),
		feed:       deps.Feed,
		emit:       emit,
		tab:        TabAll,
	}
	ctl.OnSelect(s.routeSelection)
	return s
}

// Open mounts the flows before the surface starts, so the first view
// already reflects the user's home city.
func (s *MapSession) Open(ctx context.Context) {
	s.onboarding.Mount()
	s.ctl.Start(ctx)
	s.emitOnboarding()
	s.emitReport(nil)

	if s.feed != nil {
		stop := s.feed.Listen(s.onSnapshot)
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			stop()
			return
		}
		s.stopFeed = stop
		s.mu.Unlock()
	}
}

// routeSelection hands a picked point to onboarding first, then to the
// report flow.
func (s *MapSession) routeSelection(at entity.Coordinate) {
	if s.onboarding.HandleLocation(at) {
		s.emitOnboarding()
		return
	}
	if s.report.HandleLocation(at) {
		s.emitReport(nil)
		return
	}
	logger.Debug("Map selection at %.5f,%.5f ignored for user %s", at.Latitude, at.Longitude, s.userID)
}

func (s *MapSession) onSnapshot(tickets []*entity.Ticket) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.tickets = tickets
	s.mu.Unlock()
	s.emitTickets()
}

// SetFilter changes the list tab and category. An empty category clears it.
func (s *MapSession) SetFilter(tab, category string) error {
	parsed, ok := ParseTab(tab)
	if !ok {
		return s.fail(errors.Validation("Unknown tab " + tab))
	}

	var cat *entity.TicketCategory
	if category != "" {
		c := entity.TicketCategory(category)
		if !c.Valid() {
			return s.fail(errors.Validation("Unknown category " + category))
		}
		cat = &c
	}

	s.mu.Lock()
	s.tab = parsed
	s.category = cat
	s.mu.Unlock()

	s.emitTickets()
	return nil
}

func (s *MapSession) StartReport() error {
	if s.onboarding.State() != OnboardingComplete {
		return s.fail(errors.Validation("Set your home city before reporting an issue"))
	}
	if err := s.report.StartPicking(); err != nil {
		return s.fail(err)
	}
	s.emitReport(nil)
	return nil
}

// CancelReport leaves location picking or closes the open form.
func (s *MapSession) CancelReport() {
	if s.report.CancelPicking() || s.report.CloseForm() {
		s.emitReport(nil)
	}
}

func (s *MapSession) UpdateReport(form ReportForm) error {
	if err := s.report.UpdateForm(form); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *MapSession) SubmitReport(ctx context.Context) (*entity.Ticket, error) {
	ticket, err := s.report.Submit(ctx)
	if err != nil {
		s.emitReport(nil)
		return nil, s.fail(err)
	}
	s.emitReport(ticket)
	return ticket, nil
}

func (s *MapSession) NameHomeCity(ctx context.Context, name string) error {
	err := s.onboarding.Complete(ctx, name)
	s.emitOnboarding()
	if err != nil {
		return s.fail(err)
	}
	// The nearby tab depends on the home city.
	s.emitTickets()
	return nil
}

// Close stops the feed and tears down the map. It is safe to call twice.
func (s *MapSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stopFeed
	s.stopFeed = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.ctl.Destroy()
}

func (s *MapSession) Onboarding() *ProfileLocationOnboarding { return s.onboarding }
func (s *MapSession) Report() *ReportSubmissionFlow         { return s.report }
func (s *MapSession) Map() *MapSelectionController          { return s.ctl }

// Visible returns the tickets the list currently shows.
func (s *MapSession) Visible() []*entity.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

func (s *MapSession) visibleLocked() []*entity.Ticket {
	return FilterTickets(s.tickets, TicketQuery{
		Tab:           s.tab,
		Category:      s.category,
		CurrentUserID: s.userID,
		Home:          s.onboarding.Home(),
	})
}

func (s *MapSession) emitTickets() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	payload := TicketsSnapshotPayload{Tab: s.tab, Tickets: s.visibleLocked()}
	if s.category != nil {
		payload.Category = string(*s.category)
	}
	s.mu.Unlock()
	s.emit(EventTicketsSnapshot, payload)
}

func (s *MapSession) emitOnboarding() {
	s.emit(EventOnboardingState, OnboardingStatePayload{
		State:   s.onboarding.State(),
		Pending: s.onboarding.PendingLocation(),
		Home:    s.onboarding.Home(),
	})
}

func (s *MapSession) emitReport(created *entity.Ticket) {
	payload := ReportStatePayload{
		State:        s.report.State(),
		PanelVisible: s.report.PanelVisible(),
		Location:     s.report.Location(),
	}
	if err := s.report.LastError(); err != nil {
		payload.Error = err.Error()
	}
	if created != nil {
		payload.TicketID = created.ID
	}
	s.emit(EventReportState, payload)
}

func (s *MapSession) fail(err error) error {
	payload := ErrorPayload{Code: "INTERNAL_ERROR", Message: err.Error()}
	if appErr, ok := errors.From(err); ok {
		payload.Code = appErr.Code
		payload.Message = appErr.Message
	}
	s.emit(EventError, payload)
	return err
}
