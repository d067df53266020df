package domain

import (
	"context"
	"time"
)

// EventStatus is the moderation state of an event.
type EventStatus string

const (
	EventPending  EventStatus = "PENDING"
	EventApproved EventStatus = "APPROVED"
	EventRejected EventStatus = "REJECTED"
)

// Event represents a campus event
// swagger:model Event
type Event struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Venue           string      `json:"venue"`
	Date            time.Time   `json:"date"`
	MaxParticipants *int        `json:"max_participants,omitempty"`
	CreatedBy       string      `json:"created_by"`
	Status          EventStatus `json:"status"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewEvent returns a new pending Event owned by createdBy. ID is typically set by the repository on create.
func NewEvent(title, description, venue string, date time.Time, maxParticipants *int, createdBy string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:           title,
		Description:     description,
		Venue:           venue,
		Date:            date,
		MaxParticipants: maxParticipants,
		CreatedBy:       createdBy,
		Status:          EventPending,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// HasCapacityFor reports whether count existing registrations leave room for one more.
// An event without MaxParticipants is unbounded.
func (e *Event) HasCapacityFor(count int) bool {
	if e.MaxParticipants == nil {
		return true
	}
	return count < *e.MaxParticipants
}

// CanBeModifiedBy reports whether user may update or delete the event: its creator or any admin.
func (e *Event) CanBeModifiedBy(user *User) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || e.CreatedBy == user.ID
}

// EventUpdate holds the optional fields of a partial event update. Nil fields are left unchanged.
type EventUpdate struct {
	Title           *string
	Description     *string
	Venue           *string
	Date            *time.Time
	MaxParticipants *int
}

// Empty reports whether the update changes nothing.
func (u EventUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Venue == nil && u.Date == nil && u.MaxParticipants == nil
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListAfter(ctx context.Context, t time.Time) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	SetStatus(ctx context.Context, id string, status EventStatus, reason *string) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// CreateEventInput carries the fields accepted when an event is created.
type CreateEventInput struct {
	Title           string
	Description     string
	Venue           string
	Date            time.Time
	MaxParticipants *int
}

// EventService defines event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput, creator *User) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	ListUpcomingEvents(ctx context.Context) ([]*Event, error)
	UpdateEvent(ctx context.Context, id string, upd EventUpdate, actor *User) (*Event, error)
	DeleteEvent(ctx context.Context, id string, actor *User) error
	ApproveEvent(ctx context.Context, id string, admin *User) (*Event, error)
	RejectEvent(ctx context.Context, id string, reason string, admin *User) (*Event, error)
}
