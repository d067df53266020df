package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RegistrationStatus is the moderation state of a registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

// ParseRegistrationStatus converts boundary input (case-insensitive) into a RegistrationStatus.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	st := RegistrationStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown registration status %q", ErrInvalidInput, s)
	}
	return st, nil
}

// Registration binds one user to one event.
// swagger:model Registration
type Registration struct {
	ID           string             `json:"id"`
	EventID      string             `json:"event_id"`
	UserID       string             `json:"user_id"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewRegistration creates a PENDING Registration stamped with registeredAt. ID is typically set by the repository on create.
func NewRegistration(eventID, userID string, registeredAt time.Time) *Registration {
	return &Registration{
		EventID:      eventID,
		UserID:       userID,
		Status:       RegistrationPending,
		RegisteredAt: registeredAt,
		UpdatedAt:    registeredAt,
	}
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	List(ctx context.Context) ([]*Registration, error)
	ListByStatus(ctx context.Context, status RegistrationStatus) ([]*Registration, error)
	// ListRegisteredBetween returns registrations with start <= RegisteredAt <= end.
	ListRegisteredBetween(ctx context.Context, start, end time.Time) ([]*Registration, error)
	CountByStatus(ctx context.Context) (map[RegistrationStatus]int, error)
	UpdateStatus(ctx context.Context, id string, status RegistrationStatus, updatedAt time.Time) (*Registration, error)
	Delete(ctx context.Context, id string) error
}

// EventLock is what WithEventLock hands to its function. Event is the row as read under the
// lock, so its capacity cannot change until the unit of work ends. Both repositories are bound
// to the same unit of work.
type EventLock struct {
	Event         *Event
	Registrations RegistrationRepository
	Events        EventRepository
}

// RegistrationLocker runs fn as one atomic unit of work in which the event row is locked, so
// registrations and capacity changes for eventID are serialized against every other unit of
// work for the same event. Returning an error from fn rolls everything back. Returns
// ErrNotFound when the event does not exist.
type RegistrationLocker interface {
	WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, lock *EventLock) error) error
}

// RegistrationService is the registration workflow: capacity-limited sign-up and admin moderation.
type RegistrationService interface {
	RegisterForEvent(ctx context.Context, event *Event, user *User) (*Registration, error)
	UpdateRegistrationStatus(ctx context.Context, registrationID string, status RegistrationStatus, actor *User) (*Registration, error)
	CancelRegistration(ctx context.Context, registrationID string, actor *User) error
	ListByEvent(ctx context.Context, eventID string) ([]*Registration, error)
	ListByUser(ctx context.Context, userID string) ([]*Registration, error)
	ListAll(ctx context.Context) ([]*Registration, error)
	ListPending(ctx context.Context) ([]*Registration, error)
	ListByStatus(ctx context.Context, status RegistrationStatus) ([]*Registration, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*Registration, error)
	StatusCounts(ctx context.Context) (map[RegistrationStatus]int, error)
}
