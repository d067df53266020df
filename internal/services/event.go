package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	locker         domain.RegistrationLocker
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates the event component. Updates run under locker's event lock so a
// capacity change cannot race a registration.
func NewEventService(eventRepo domain.EventRepository, locker domain.RegistrationLocker, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		locker:         locker,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.contextTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.contextTimeout)
}

// CreateEvent stores a new PENDING event owned by creator. The date must lie strictly in the future.
func (s *eventService) CreateEvent(ctx context.Context, in domain.CreateEventInput, creator *domain.User) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if creator == nil {
		return nil, domain.ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	now := s.now()
	if !in.Date.After(now) {
		return nil, fmt.Errorf("%w: event date must be in the future", domain.ErrInvalidInput)
	}
	if err := validateCapacity(in.MaxParticipants); err != nil {
		return nil, err
	}

	event := domain.NewEvent(title, strings.TrimSpace(in.Description), strings.TrimSpace(in.Venue), in.Date, in.MaxParticipants, creator.ID, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListUpcomingEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	events, err := s.eventRepo.ListAfter(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate, actor *domain.User) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.ownedEvent(ctx, id, actor); err != nil {
		return nil, err
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		upd.Title = &t
	}
	if err := validateCapacity(upd.MaxParticipants); err != nil {
		return nil, err
	}

	var event *domain.Event
	err := s.locker.WithEventLock(ctx, id, func(ctx context.Context, lock *domain.EventLock) error {
		if upd.MaxParticipants != nil {
			count, err := lock.Registrations.CountByEventID(ctx, id)
			if err != nil {
				return fmt.Errorf("count registrations: %w", err)
			}
			if *upd.MaxParticipants < count {
				return fmt.Errorf("%w: max_participants %d is below the %d existing registrations",
					domain.ErrInvalidInput, *upd.MaxParticipants, count)
			}
		}
		var err error
		event, err = lock.Events.Update(ctx, id, upd)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string, actor *domain.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.ownedEvent(ctx, id, actor); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ApproveEvent(ctx context.Context, id string, admin *domain.User) (*domain.Event, error) {
	return s.setStatus(ctx, id, domain.EventApproved, nil, admin)
}

func (s *eventService) RejectEvent(ctx context.Context, id string, reason string, admin *domain.User) (*domain.Event, error) {
	var r *string
	if reason = strings.TrimSpace(reason); reason != "" {
		r = &reason
	}
	return s.setStatus(ctx, id, domain.EventRejected, r, admin)
}

func (s *eventService) setStatus(ctx context.Context, id string, status domain.EventStatus, reason *string, admin *domain.User) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if !admin.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	event, err := s.eventRepo.SetStatus(ctx, id, status, reason)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set event status: %w", err)
	}
	return event, nil
}

// ownedEvent loads the event and checks that actor is its creator or an admin.
func (s *eventService) ownedEvent(ctx context.Context, id string, actor *domain.User) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.CanBeModifiedBy(actor) {
		return nil, domain.ErrUnauthorized
	}
	return event, nil
}

func validateCapacity(max *int) error {
	if max != nil && *max <= 0 {
		return fmt.Errorf("%w: max_participants must be positive", domain.ErrInvalidInput)
	}
	return nil
}
