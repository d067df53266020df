package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	testStudent = &domain.User{ID: "user-1", Username: "alice", Email: "alice@campus.edu", Role: domain.RoleStudent, Active: true}
	testAdmin   = &domain.User{ID: "admin-1", Username: "root", Email: "root@campus.edu", Role: domain.RoleAdmin, Active: true}
)

// newRequest builds a request with an optional JSON body, path values and authenticated user.
func newRequest(method, target, body string, user *domain.User, pathValues map[string]string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, "http://test"+target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if user != nil {
		req = req.WithContext(middleware.SetUser(req.Context(), user))
	}
	return req
}

// decodeEnvelope decodes the response envelope and, when dest is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if dest != nil && envelope.Data != nil {
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, dest))
	}
	return envelope
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	signUpErr        error
	lastSignUp       domain.SignUpInput
	authUser         *domain.User
	authErr          error
	loginErr         error
	logoutErr        error
	loggedIn         map[string]string // session id -> user id
	loggedOut        []string
	users            []*domain.User
	listErr          error
	updateErr        error
	lastRole         domain.Role
	lastActive       *bool
	lastTargetUserID string
}

func (f *fakeUserService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	f.lastSignUp = in
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.User{ID: "new-user", Username: in.Username, Email: in.Email, FullName: in.FullName, Role: domain.RoleStudent, Active: true}, nil
}

func (f *fakeUserService) CreateAdmin(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	return nil, errors.New("not used")
}

func (f *fakeUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authUser, nil
}

func (f *fakeUserService) Login(ctx context.Context, sess domain.Session, user *domain.User) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	if f.loggedIn == nil {
		f.loggedIn = map[string]string{}
	}
	f.loggedIn[sess.ID()] = user.ID
	return sess.Set(ctx, domain.SessionKeyUserID, user.ID)
}

func (f *fakeUserService) Logout(ctx context.Context, sess domain.Session) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.loggedOut = append(f.loggedOut, sess.ID())
	return sess.Invalidate(ctx)
}

func (f *fakeUserService) CurrentUser(ctx context.Context, sess domain.Session) (*domain.User, bool) {
	return nil, false
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return f.users, f.listErr
}

func (f *fakeUserService) UpdateUserRole(ctx context.Context, userID string, role domain.Role, admin *domain.User) (*domain.User, error) {
	f.lastTargetUserID, f.lastRole = userID, role
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.User{ID: userID, Role: role, Active: true}, nil
}

func (f *fakeUserService) UpdateUserStatus(ctx context.Context, userID string, active bool, admin *domain.User) (*domain.User, error) {
	f.lastTargetUserID, f.lastActive = userID, &active
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.User{ID: userID, Role: domain.RoleStudent, Active: active}, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events        map[string]*domain.Event
	err           error
	lastCreate    domain.CreateEventInput
	lastUpdate    domain.EventUpdate
	lastActor     *domain.User
	lastReason    string
	deletedIDs    []string
	upcomingCalls int
}

func (f *fakeEventService) CreateEvent(ctx context.Context, in domain.CreateEventInput, creator *domain.User) (*domain.Event, error) {
	f.lastCreate, f.lastActor = in, creator
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: "event-new", Title: in.Title, Venue: in.Venue, Date: in.Date, MaxParticipants: in.MaxParticipants, CreatedBy: creator.ID, Status: domain.EventPending}, nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventService) ListUpcomingEvents(ctx context.Context) ([]*domain.Event, error) {
	f.upcomingCalls++
	return f.ListEvents(ctx)
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate, actor *domain.User) (*domain.Event, error) {
	f.lastUpdate, f.lastActor = upd, actor
	e, err := f.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	return e, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id string, actor *domain.User) error {
	if _, err := f.GetEvent(ctx, id); err != nil {
		return err
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeEventService) ApproveEvent(ctx context.Context, id string, admin *domain.User) (*domain.Event, error) {
	e, err := f.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventApproved
	return e, nil
}

func (f *fakeEventService) RejectEvent(ctx context.Context, id string, reason string, admin *domain.User) (*domain.Event, error) {
	f.lastReason = reason
	e, err := f.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventRejected
	return e, nil
}

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	regs         []*domain.Registration
	registerErr  error
	err          error
	counts       map[domain.RegistrationStatus]int
	lastCall     string
	lastStatus   domain.RegistrationStatus
	lastRange    [2]time.Time
	lastEventID  string
	lastActor    *domain.User
	cancelledIDs []string
}

func (f *fakeRegistrationService) RegisterForEvent(ctx context.Context, event *domain.Event, user *domain.User) (*domain.Registration, error) {
	f.lastEventID, f.lastActor = event.ID, user
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return domain.NewRegistration(event.ID, user.ID, time.Now()), nil
}

func (f *fakeRegistrationService) UpdateRegistrationStatus(ctx context.Context, registrationID string, status domain.RegistrationStatus, actor *domain.User) (*domain.Registration, error) {
	f.lastCall, f.lastStatus, f.lastActor = "UpdateRegistrationStatus", status, actor
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: registrationID, Status: status}, nil
}

func (f *fakeRegistrationService) CancelRegistration(ctx context.Context, registrationID string, actor *domain.User) error {
	f.lastActor = actor
	if f.err != nil {
		return f.err
	}
	f.cancelledIDs = append(f.cancelledIDs, registrationID)
	return nil
}

func (f *fakeRegistrationService) list(call string) ([]*domain.Registration, error) {
	f.lastCall = call
	if f.err != nil {
		return nil, f.err
	}
	return f.regs, nil
}

func (f *fakeRegistrationService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	f.lastEventID = eventID
	return f.list("ListByEvent")
}

func (f *fakeRegistrationService) ListByUser(ctx context.Context, userID string) ([]*domain.Registration, error) {
	return f.list("ListByUser:" + userID)
}

func (f *fakeRegistrationService) ListAll(ctx context.Context) ([]*domain.Registration, error) {
	return f.list("ListAll")
}

func (f *fakeRegistrationService) ListPending(ctx context.Context) ([]*domain.Registration, error) {
	return f.list("ListPending")
}

func (f *fakeRegistrationService) ListByStatus(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	f.lastStatus = status
	return f.list("ListByStatus")
}

func (f *fakeRegistrationService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Registration, error) {
	f.lastRange = [2]time.Time{start, end}
	return f.list("ListByDateRange")
}

func (f *fakeRegistrationService) StatusCounts(ctx context.Context) (map[domain.RegistrationStatus]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.counts, nil
}

// fakeSession is an in-memory domain.Session.
type fakeSession struct {
	id          string
	values      map[string]string
	invalidated bool
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeSession) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *fakeSession) Remove(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *fakeSession) Invalidate(_ context.Context) error {
	s.invalidated = true
	s.values = map[string]string{}
	return nil
}

// fakeSessionStore hands out numbered sessions.
type fakeSessionStore struct {
	created []*fakeSession
	err     error
}

func (f *fakeSessionStore) New(_ context.Context) (domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := &fakeSession{id: fmt.Sprintf("sess-%d", len(f.created)+1), values: map[string]string{}}
	f.created = append(f.created, s)
	return s, nil
}

func (f *fakeSessionStore) Load(_ context.Context, id string) (domain.Session, error) {
	for _, s := range f.created {
		if s.id == id {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeTokenIssuer returns "token-for-<session id>".
type fakeTokenIssuer struct {
	err        error
	lastExpiry time.Duration
}

func (f *fakeTokenIssuer) Issue(sessionID string, expiry time.Duration) (string, error) {
	f.lastExpiry = expiry
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + sessionID, nil
}
