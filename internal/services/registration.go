package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusevents/internal/domain"
	"campusevents/internal/metrics"
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	locker           domain.RegistrationLocker
	userRepo         domain.UserRepository
	eventRepo        domain.EventRepository
	emailService     domain.EmailService
	metrics          *metrics.Metrics
	logger           *slog.Logger
	now              func() time.Time
}

// NewRegistrationService creates the registration workflow. emailService and m may be nil.
func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	locker domain.RegistrationLocker,
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	emailService domain.EmailService,
	m *metrics.Metrics,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		locker:           locker,
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		emailService:     emailService,
		metrics:          m,
		logger:           logger,
		now:              time.Now,
	}
}

// RegisterForEvent creates a PENDING registration. The duplicate check, the capacity
// check and the insert run under the event lock, so concurrent sign-ups for one event
// cannot overfill it or register the same user twice. Capacity is read from the locked
// row; event only names the event and may be stale.
func (s *registrationService) RegisterForEvent(ctx context.Context, event *domain.Event, user *domain.User) (*domain.Registration, error) {
	if event == nil || user == nil {
		return nil, fmt.Errorf("%w: event and user are required", domain.ErrInvalidInput)
	}

	var reg *domain.Registration
	err := s.locker.WithEventLock(ctx, event.ID, func(ctx context.Context, lock *domain.EventLock) error {
		regs := lock.Registrations
		if _, err := regs.GetByEventAndUser(ctx, event.ID, user.ID); err == nil {
			return domain.ErrDuplicateRegistration
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get registration: %w", err)
		}

		count, err := regs.CountByEventID(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		if !lock.Event.HasCapacityFor(count) {
			return domain.ErrCapacityExceeded
		}

		r := domain.NewRegistration(event.ID, user.ID, s.now())
		if err := regs.Create(ctx, r); err != nil {
			if errors.Is(err, domain.ErrDuplicateRegistration) {
				return err
			}
			return fmt.Errorf("create registration: %w", err)
		}
		reg = r
		event = lock.Event
		return nil
	})

	switch {
	case err == nil:
		s.metrics.RecordRegistration(metrics.OutcomeCreated)
	case errors.Is(err, domain.ErrDuplicateRegistration):
		s.metrics.RecordRegistration(metrics.OutcomeDuplicate)
		return nil, err
	case errors.Is(err, domain.ErrCapacityExceeded):
		s.metrics.RecordRegistration(metrics.OutcomeCapacityExceeded)
		return nil, err
	case errors.Is(err, domain.ErrNotFound):
		return nil, err
	default:
		s.metrics.RecordRegistration(metrics.OutcomeError)
		return nil, err
	}

	s.notify(ctx, reg, event, user, "registration received", func(ctx context.Context, data *domain.RegistrationEmailData) error {
		return s.emailService.SendRegistrationReceived(ctx, data)
	})
	return reg, nil
}

func (s *registrationService) UpdateRegistrationStatus(ctx context.Context, registrationID string, status domain.RegistrationStatus, actor *domain.User) (*domain.Registration, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown registration status %q", domain.ErrInvalidInput, status)
	}

	reg, err := s.registrationRepo.UpdateStatus(ctx, registrationID, status, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update registration status: %w", err)
	}
	s.metrics.RecordStatusChange(string(status))

	if s.emailService != nil {
		user, uerr := s.userRepo.GetByID(ctx, reg.UserID)
		event, eerr := s.eventRepo.GetByID(ctx, reg.EventID)
		if err := errors.Join(uerr, eerr); err != nil {
			s.logger.WarnContext(ctx, "skipping status notification", "registration_id", reg.ID, "err", err)
		} else {
			s.notify(ctx, reg, event, user, "registration status changed", func(ctx context.Context, data *domain.RegistrationEmailData) error {
				return s.emailService.SendRegistrationStatusChanged(ctx, data)
			})
		}
	}
	return reg, nil
}

func (s *registrationService) CancelRegistration(ctx context.Context, registrationID string, actor *domain.User) error {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get registration: %w", err)
	}
	if actor == nil || actor.ID != reg.UserID {
		return domain.ErrUnauthorized
	}
	if err := s.registrationRepo.Delete(ctx, reg.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (s *registrationService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by event: %w", err)
	}
	return regs, nil
}

func (s *registrationService) ListByUser(ctx context.Context, userID string) ([]*domain.Registration, error) {
	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations by user: %w", err)
	}
	return regs, nil
}

func (s *registrationService) ListAll(ctx context.Context) ([]*domain.Registration, error) {
	regs, err := s.registrationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

func (s *registrationService) ListPending(ctx context.Context) ([]*domain.Registration, error) {
	return s.ListByStatus(ctx, domain.RegistrationPending)
}

func (s *registrationService) ListByStatus(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown registration status %q", domain.ErrInvalidInput, status)
	}
	regs, err := s.registrationRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list %s registrations: %w", strings.ToLower(string(status)), err)
	}
	return regs, nil
}

// ListByDateRange returns registrations made within [start, end]. An inverted range is empty.
func (s *registrationService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Registration, error) {
	if start.After(end) {
		return []*domain.Registration{}, nil
	}
	regs, err := s.registrationRepo.ListRegisteredBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list registrations by date: %w", err)
	}
	return regs, nil
}

func (s *registrationService) StatusCounts(ctx context.Context) (map[domain.RegistrationStatus]int, error) {
	counts, err := s.registrationRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count registrations by status: %w", err)
	}
	return counts, nil
}

// notify sends a registration e-mail. Failures are logged and never fail the caller.
func (s *registrationService) notify(ctx context.Context, reg *domain.Registration, event *domain.Event, user *domain.User, kind string, send func(context.Context, *domain.RegistrationEmailData) error) {
	if s.emailService == nil || user.Email == "" {
		return
	}
	data := &domain.RegistrationEmailData{
		Email:      user.Email,
		FullName:   user.FullName,
		EventTitle: event.Title,
		EventDate:  event.Date,
		Venue:      event.Venue,
		Status:     reg.Status,
	}
	if err := send(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "kind", kind, "registration_id", reg.ID, "err", err)
	}
}
