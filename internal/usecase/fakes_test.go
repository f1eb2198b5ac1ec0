package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/internal/domain/service"
	apperrors "civicalert/pkg/errors"
)

type fakeSurface struct {
	mu        sync.Mutex
	release   chan struct{}
	view      service.MapView
	onClick   func(entity.Coordinate)
	crosshair []bool
	markers   []entity.Coordinate
	reached   []entity.Coordinate
	goTos     int
	destroyed bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{release: make(chan struct{})}
}

// finishAnimations lets every pending and future GoTo complete.
func (s *fakeSurface) finishAnimations() {
	close(s.release)
}

func (s *fakeSurface) GoTo(ctx context.Context, center entity.Coordinate, zoom float64) error {
	s.mu.Lock()
	s.goTos++
	s.mu.Unlock()

	if ctx.Err() != nil {
		return service.ErrAnimationInterrupted
	}
	select {
	case <-ctx.Done():
		return service.ErrAnimationInterrupted
	case <-s.release:
	}
	if ctx.Err() != nil {
		return service.ErrAnimationInterrupted
	}

	s.mu.Lock()
	s.reached = append(s.reached, center)
	s.mu.Unlock()
	return nil
}

func (s *fakeSurface) AddMarker(at entity.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, at)
	return nil
}

func (s *fakeSurface) ClearMarkers() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = nil
	return nil
}

func (s *fakeSurface) SetCrosshair(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crosshair = append(s.crosshair, on)
	return nil
}

func (s *fakeSurface) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
	return nil
}

func (s *fakeSurface) click(at entity.Coordinate) {
	s.mu.Lock()
	fn := s.onClick
	s.mu.Unlock()
	fn(at)
}

func (s *fakeSurface) snapshot() (markers, reached []entity.Coordinate, crosshair []bool, destroyed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Coordinate(nil), s.markers...),
		append([]entity.Coordinate(nil), s.reached...),
		append([]bool(nil), s.crosshair...),
		s.destroyed
}

// immediateFactory returns surface as soon as it is asked for.
func immediateFactory(surface *fakeSurface) service.MapSurfaceFactory {
	return func(ctx context.Context, view service.MapView, onClick func(entity.Coordinate)) (service.MapSurface, error) {
		surface.mu.Lock()
		surface.view = view
		surface.onClick = onClick
		surface.mu.Unlock()
		return surface, nil
	}
}

// gatedFactory returns surface only after ready is closed, ignoring ctx the
// way a slow network bootstrap might.
func gatedFactory(surface *fakeSurface, ready <-chan struct{}) service.MapSurfaceFactory {
	return func(ctx context.Context, view service.MapView, onClick func(entity.Coordinate)) (service.MapSurface, error) {
		<-ready
		surface.mu.Lock()
		surface.view = view
		surface.onClick = onClick
		surface.mu.Unlock()
		return surface, nil
	}
}

var testMapOptions = MapOptions{
	DefaultCenter: entity.Coordinate{Latitude: 34.0781, Longitude: -118.7368},
	DefaultZoom:   10,
	FocusZoom:     13,
	APIKey:        "test-key",
}

// fakeMap records what flows ask of the map controller.
type fakeMap struct {
	mu        sync.Mutex
	selecting bool
	centers   []entity.Coordinate
}

func (m *fakeMap) SetSelecting(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selecting = on
}

func (m *fakeMap) SetCenter(center entity.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.centers = append(m.centers, center)
}

func (m *fakeMap) isSelecting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selecting
}

func (m *fakeMap) centered() []entity.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Coordinate(nil), m.centers...)
}

type fakeLimiter struct {
	mu      sync.Mutex
	blocked map[string]bool
	calls   []string
}

func (l *fakeLimiter) Allow(userID, action string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, userID+":"+action)
	if l.blocked[action] {
		return false, 30 * time.Second
	}
	return true, 0
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*entity.UserProfile
	failNext error
	writes   int
}

func newFakeUserRepo(users ...*entity.UserProfile) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*entity.UserProfile{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	r.writes++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("User", nil)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("User", nil)
}

func (r *fakeUserRepo) update(id string, fn func(u *entity.UserProfile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	u, ok := r.users[id]
	if !ok {
		return apperrors.NotFound("User", nil)
	}
	r.writes++
	fn(u)
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id string, displayName string) error {
	return r.update(id, func(u *entity.UserProfile) { u.DisplayName = displayName })
}

func (r *fakeUserRepo) UpdateHomeCity(ctx context.Context, id string, city entity.HomeCity) error {
	return r.update(id, func(u *entity.UserProfile) { u.HomeCity = &city })
}

func (r *fakeUserRepo) UpdatePhotoURL(ctx context.Context, id string, url string) error {
	return r.update(id, func(u *entity.UserProfile) { u.PhotoURL = url })
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	return r.update(id, func(u *entity.UserProfile) { u.Role = role })
}

type fakeTicketRepo struct {
	mu       sync.Mutex
	tickets  []*entity.Ticket
	failNext error
	creates  int
	snapshot chan []*entity.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{snapshot: make(chan []*entity.Ticket, 8)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *entity.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.creates++
	copied := *ticket
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	r.tickets = append([]*entity.Ticket{&copied}, r.tickets...)
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("Ticket", nil)
}

func (r *fakeTicketRepo) List(ctx context.Context) ([]*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Ticket(nil), r.tickets...), nil
}

func (r *fakeTicketRepo) Subscribe(ctx context.Context, fn repository.TicketSnapshotFunc) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tickets := <-r.snapshot:
			fn(tickets)
		}
	}
}

func (r *fakeTicketRepo) last() *entity.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tickets) == 0 {
		return nil
	}
	return r.tickets[0]
}

type uploadCall struct {
	FileType string
	Folder   string
	Object   string
	Body     string
}

type fakeFiles struct {
	mu        sync.Mutex
	calls     []uploadCall
	deleted   []string
	failNext  error
	deleteErr error
}

func (f *fakeFiles) UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	return f.record(file, uploadCall{FileType: fileType, Folder: folder})
}

func (f *fakeFiles) UploadNamed(ctx context.Context, file io.Reader, fileType, objectName string, isPublic bool) (string, error) {
	return f.record(file, uploadCall{FileType: fileType, Object: objectName})
}

func (f *fakeFiles) record(file io.Reader, call uploadCall) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return "", err
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	call.Body = string(body)
	f.calls = append(f.calls, call)
	name := call.Object
	if name == "" {
		name = call.Folder + "/object"
	}
	return "https://storage.googleapis.com/test-bucket/public/" + name, nil
}

func (f *fakeFiles) DeleteFile(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func (f *fakeFiles) Close() error { return nil }

type fakeAuth struct {
	mu        sync.Mutex
	users     map[string]string // email -> uid
	claims    map[string]entity.Role
	createErr error
	claimErr  error
	nextUID   int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[string]string{}, claims: map[string]entity.Role{}}
}

func (a *fakeAuth) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return "", a.createErr
	}
	if _, ok := a.users[email]; ok {
		return "", apperrors.Auth(apperrors.CodeEmailInUse, errEmailExists)
	}
	a.nextUID++
	uid := fmt.Sprintf("uid-%d", a.nextUID)
	a.users[email] = uid
	return uid, nil
}

func (a *fakeAuth) SetRoleClaim(ctx context.Context, uid string, role entity.Role) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.claimErr != nil {
		return a.claimErr
	}
	a.claims[uid] = role
	return nil
}

func (a *fakeAuth) GenerateToken(ctx context.Context, uid string) (string, error) {
	return "token-" + uid, nil
}

var errEmailExists = errors.New("email exists")

type fakeInvites struct {
	mu    sync.Mutex
	codes map[string]bool
	users *fakeUserRepo
}

func (f *fakeInvites) ConsumeAndGrant(ctx context.Context, code, uid string, role entity.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.codes[code] {
		return apperrors.NotFound("Invite", nil)
	}
	delete(f.codes, code)
	if f.users != nil {
		return f.users.UpdateRole(ctx, uid, role)
	}
	return nil
}

func (f *fakeInvites) Create(ctx context.Context, invite *entity.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[invite.Code] = true
	return nil
}

type roleChange struct {
	UserID string
	Role   entity.Role
}

type fakeRoleNotifier struct {
	mu      sync.Mutex
	changes []roleChange
}

func (n *fakeRoleNotifier) NotifyRoleChanged(userID string, role entity.Role) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, roleChange{UserID: userID, Role: role})
}
