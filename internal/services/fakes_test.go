package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"campusevents/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(n int) *int { return &n }

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID   map[string]*domain.User
	getErr error
	seq    int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.seq++
	u.ID = "user-" + strconv.Itoa(f.seq)
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role domain.Role, updatedAt time.Time) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = updatedAt
	return u, nil
}

func (f *fakeUserRepo) UpdateActive(ctx context.Context, id string, active bool, updatedAt time.Time) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Active = active
	u.UpdatedAt = updatedAt
	return u, nil
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	events map[string]*domain.Event
	err    error
	seq    int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.seq++
	e.ID = "event-" + strconv.Itoa(f.seq)
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	return f.ListAfter(ctx, time.Time{})
}

func (f *fakeEventRepo) ListAfter(ctx context.Context, t time.Time) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	events := make([]*domain.Event, 0)
	for _, e := range f.events {
		if e.Date.After(t) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Venue != nil {
		e.Venue = *upd.Venue
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.MaxParticipants != nil {
		e.MaxParticipants = upd.MaxParticipants
	}
	return e, nil
}

func (f *fakeEventRepo) SetStatus(ctx context.Context, id string, status domain.EventStatus, reason *string) (*domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Status = status
	e.RejectionReason = reason
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

// fakeRegistrationRepo is an in-memory RegistrationRepository and RegistrationLocker.
// WithEventLock serializes on a single mutex and hands fn a copy of the event as stored
// in events; the repository methods take their own lock.
type fakeRegistrationRepo struct {
	lockMu sync.Mutex

	mu       sync.Mutex
	regs     map[string]*domain.Registration
	seq      int
	err      error
	events   *fakeEventRepo
	createFn func(reg *domain.Registration) error
}

func newFakeRegistrationRepo(events *fakeEventRepo) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: make(map[string]*domain.Registration), events: events}
}

func (f *fakeRegistrationRepo) WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, lock *domain.EventLock) error) error {
	f.lockMu.Lock()
	defer f.lockMu.Unlock()
	stored, ok := f.events.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	event := *stored
	return fn(ctx, &domain.EventLock{Event: &event, Registrations: f, Events: f.events})
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFn != nil {
		if err := f.createFn(reg); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	f.seq++
	reg.ID = "reg-" + strconv.Itoa(f.seq)
	cp := *reg
	f.regs[reg.ID] = &cp
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, r := range f.regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationRepo) filter(keep func(*domain.Registration) bool) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Registration, 0)
	for _, r := range f.regs {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return f.filter(func(r *domain.Registration) bool { return r.EventID == eventID })
}

func (f *fakeRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	return f.filter(func(r *domain.Registration) bool { return r.UserID == userID })
}

func (f *fakeRegistrationRepo) List(ctx context.Context) ([]*domain.Registration, error) {
	return f.filter(func(*domain.Registration) bool { return true })
}

func (f *fakeRegistrationRepo) ListByStatus(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	return f.filter(func(r *domain.Registration) bool { return r.Status == status })
}

func (f *fakeRegistrationRepo) ListRegisteredBetween(ctx context.Context, start, end time.Time) ([]*domain.Registration, error) {
	return f.filter(func(r *domain.Registration) bool {
		return !r.RegisteredAt.Before(start) && !r.RegisteredAt.After(end)
	})
}

func (f *fakeRegistrationRepo) CountByStatus(ctx context.Context) (map[domain.RegistrationStatus]int, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[domain.RegistrationStatus]int{
		domain.RegistrationPending:  0,
		domain.RegistrationApproved: 0,
		domain.RegistrationRejected: 0,
	}
	for _, r := range all {
		counts[r.Status]++
	}
	return counts, nil
}

func (f *fakeRegistrationRepo) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus, updatedAt time.Time) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = updatedAt
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrationRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.regs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.regs, id)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	compares int
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	f.compares++
	if hash != "hash-"+salt+"-"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// fakeSession implements domain.Session in memory.
type fakeSession struct {
	values      map[string]string
	invalidated bool
	err         error
}

func newFakeSession() *fakeSession {
	return &fakeSession{values: make(map[string]string)}
}

func (f *fakeSession) ID() string { return "sess-1" }

func (f *fakeSession) Get(ctx context.Context, key string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeSession) Set(ctx context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value
	return nil
}

func (f *fakeSession) Remove(ctx context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func (f *fakeSession) Invalidate(ctx context.Context) error {
	f.values = make(map[string]string)
	f.invalidated = true
	return nil
}

// fakeEmailService records what would have been sent.
type fakeEmailService struct {
	mu       sync.Mutex
	received []*domain.RegistrationEmailData
	changed  []*domain.RegistrationEmailData
	err      error
}

func (f *fakeEmailService) SendRegistrationReceived(ctx context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, data)
	return f.err
}

func (f *fakeEmailService) SendRegistrationStatusChanged(ctx context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, data)
	return f.err
}

var errStorage = errors.New("storage unavailable")
