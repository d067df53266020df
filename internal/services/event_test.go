package services

import (
	"context"
	"testing"
	"time"

	"campusevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	creator := &domain.User{ID: "user-1", Role: domain.RoleStudent}
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name    string
		in      domain.CreateEventInput
		creator *domain.User
		wantErr error
	}{
		{name: "success", in: domain.CreateEventInput{Title: "Hackathon", Date: future, MaxParticipants: intPtr(20)}, creator: creator},
		{name: "unbounded", in: domain.CreateEventInput{Title: "Open day", Date: future}, creator: creator},
		{name: "date in the past", in: domain.CreateEventInput{Title: "Old", Date: time.Now().Add(-time.Hour)}, creator: creator, wantErr: domain.ErrInvalidInput},
		{name: "missing title", in: domain.CreateEventInput{Title: "  ", Date: future}, creator: creator, wantErr: domain.ErrInvalidInput},
		{name: "zero capacity", in: domain.CreateEventInput{Title: "X", Date: future, MaxParticipants: intPtr(0)}, creator: creator, wantErr: domain.ErrInvalidInput},
		{name: "no creator", in: domain.CreateEventInput{Title: "X", Date: future}, wantErr: domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			svc := NewEventService(repo, newFakeRegistrationRepo(repo), 5*time.Second)

			event, err := svc.CreateEvent(ctx, tt.in, tt.creator)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.events)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, event.ID)
			assert.Equal(t, domain.EventPending, event.Status)
			assert.Equal(t, creator.ID, event.CreatedBy)
		})
	}
}

func TestEventService_CreateEvent_dateMustBeStrictlyFuture(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo, newFakeRegistrationRepo(repo), 0).(*eventService)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.CreateEvent(context.Background(), domain.CreateEventInput{Title: "Now", Date: now}, &domain.User{ID: "u"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEventService_OwnerOrAdmin(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: "owner", Role: domain.RoleStudent}
	other := &domain.User{ID: "other", Role: domain.RoleStudent}
	admin := &domain.User{ID: "admin", Role: domain.RoleAdmin}
	title := "Renamed"

	tests := []struct {
		name    string
		actor   *domain.User
		wantErr error
	}{
		{name: "owner", actor: owner},
		{name: "admin", actor: admin},
		{name: "other student", actor: other, wantErr: domain.ErrUnauthorized},
		{name: "anonymous", actor: nil, wantErr: domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			svc := NewEventService(repo, newFakeRegistrationRepo(repo), time.Second)
			event, err := svc.CreateEvent(ctx, domain.CreateEventInput{Title: "Talk", Date: time.Now().Add(time.Hour)}, owner)
			require.NoError(t, err)

			updated, err := svc.UpdateEvent(ctx, event.ID, domain.EventUpdate{Title: &title}, tt.actor)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, svc.DeleteEvent(ctx, event.ID, tt.actor), tt.wantErr)
				assert.Contains(t, repo.events, event.ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Renamed", updated.Title)
			require.NoError(t, svc.DeleteEvent(ctx, event.ID, tt.actor))
			assert.NotContains(t, repo.events, event.ID)
		})
	}
}

func TestEventService_UpdateEvent_validation(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: "owner"}
	repo := newFakeEventRepo()
	svc := NewEventService(repo, newFakeRegistrationRepo(repo), time.Second)
	event, err := svc.CreateEvent(ctx, domain.CreateEventInput{Title: "Talk", Date: time.Now().Add(time.Hour)}, owner)
	require.NoError(t, err)

	blank := " "
	_, err = svc.UpdateEvent(ctx, event.ID, domain.EventUpdate{Title: &blank}, owner)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.UpdateEvent(ctx, event.ID, domain.EventUpdate{MaxParticipants: intPtr(-1)}, owner)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.UpdateEvent(ctx, "ghost", domain.EventUpdate{}, owner)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_UpdateEvent_capacityBelowRegistrations(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: "owner"}
	repo := newFakeEventRepo()
	regs := newFakeRegistrationRepo(repo)
	svc := NewEventService(repo, regs, time.Second)
	event, err := svc.CreateEvent(ctx, domain.CreateEventInput{Title: "Talk", Date: time.Now().Add(time.Hour), MaxParticipants: intPtr(5)}, owner)
	require.NoError(t, err)
	for _, userID := range []string{"alice", "bob"} {
		require.NoError(t, regs.Create(ctx, domain.NewRegistration(event.ID, userID, time.Now())))
	}

	_, err = svc.UpdateEvent(ctx, event.ID, domain.EventUpdate{MaxParticipants: intPtr(1)}, owner)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	stored, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *stored.MaxParticipants)

	updated, err := svc.UpdateEvent(ctx, event.ID, domain.EventUpdate{MaxParticipants: intPtr(2)}, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, *updated.MaxParticipants)

	regs.err = errStorage
	_, err = svc.UpdateEvent(ctx, event.ID, domain.EventUpdate{MaxParticipants: intPtr(3)}, owner)
	require.ErrorIs(t, err, errStorage)
}

func TestEventService_Moderation(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: "owner", Role: domain.RoleStudent}
	admin := &domain.User{ID: "admin", Role: domain.RoleAdmin}
	repo := newFakeEventRepo()
	svc := NewEventService(repo, newFakeRegistrationRepo(repo), time.Second)
	event, err := svc.CreateEvent(ctx, domain.CreateEventInput{Title: "Talk", Date: time.Now().Add(time.Hour)}, owner)
	require.NoError(t, err)

	_, err = svc.ApproveEvent(ctx, event.ID, owner)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	approved, err := svc.ApproveEvent(ctx, event.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.EventApproved, approved.Status)

	rejected, err := svc.RejectEvent(ctx, event.ID, "  duplicate  ", admin)
	require.NoError(t, err)
	assert.Equal(t, domain.EventRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "duplicate", *rejected.RejectionReason)

	_, err = svc.RejectEvent(ctx, "ghost", "", admin)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListUpcomingEvents(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, newFakeRegistrationRepo(repo), time.Second)
	now := time.Now()
	repo.events["past"] = &domain.Event{ID: "past", Date: now.Add(-time.Hour)}
	repo.events["soon"] = &domain.Event{ID: "soon", Date: now.Add(time.Hour)}
	repo.events["later"] = &domain.Event{ID: "later", Date: now.Add(48 * time.Hour)}

	upcoming, err := svc.ListUpcomingEvents(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "soon", upcoming[0].ID)
	assert.Equal(t, "later", upcoming[1].ID)

	all, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
