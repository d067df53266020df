package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusevents/internal/domain"

	"github.com/google/uuid"
)

const registrationColumns = `id, event_id, user_id, status, registered_at, updated_at`

type registrationRepository struct {
	db *DB
	q  querier
}

// NewRegistrationRepository returns a repository that also implements domain.RegistrationLocker.
func NewRegistrationRepository(db *DB) *registrationRepository {
	return &registrationRepository{db: db, q: db.DB}
}

var (
	_ domain.RegistrationRepository = (*registrationRepository)(nil)
	_ domain.RegistrationLocker     = (*registrationRepository)(nil)
)

// WithEventLock runs fn in a transaction holding a lock on the event row. Registrations
// for the same event are serialized, so a count followed by an insert inside fn is atomic,
// and fn sees the event's capacity as stored at lock time rather than a caller's copy.
func (r *registrationRepository) WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, lock *domain.EventLock) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := r.db.rebind(`SELECT ` + eventColumns + ` FROM events WHERE id = $1` + r.db.Dialect.LockClause())
	event, err := scanEvent(tx.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	lock := &domain.EventLock{
		Event:         event,
		Registrations: &registrationRepository{db: r.db, q: tx},
		Events:        &eventRepository{db: r.db, q: tx},
	}
	if err := fn(ctx, lock); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := r.db.rebind(`
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	id := uuid.NewString()
	_, err := r.q.ExecContext(ctx, query,
		id, reg.EventID, reg.UserID, string(reg.Status), reg.RegisteredAt.UTC(), reg.UpdatedAt.UTC(),
	)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return domain.ErrDuplicateRegistration
		}
		return err
	}
	reg.ID = id
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := r.db.rebind(`SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`)
	return scanRegistration(r.q.QueryRowContext(ctx, query, id))
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := r.db.rebind(`SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 AND user_id = $2`)
	return scanRegistration(r.q.QueryRowContext(ctx, query, eventID, userID))
}

func (r *registrationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := r.db.rebind(`SELECT COUNT(*) FROM registrations WHERE event_id = $1`)
	var n int
	if err := r.q.QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 ORDER BY registered_at ASC`, eventID)
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE user_id = $1 ORDER BY registered_at DESC`, userID)
}

func (r *registrationRepository) List(ctx context.Context) ([]*domain.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM registrations ORDER BY registered_at DESC`)
}

func (r *registrationRepository) ListByStatus(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE status = $1 ORDER BY registered_at ASC`, string(status))
}

func (r *registrationRepository) ListRegisteredBetween(ctx context.Context, start, end time.Time) ([]*domain.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE registered_at >= $1 AND registered_at <= $2 ORDER BY registered_at ASC`, start.UTC(), end.UTC())
}

func (r *registrationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Registration, error) {
	rows, err := r.q.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) CountByStatus(ctx context.Context) (map[domain.RegistrationStatus]int, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM registrations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.RegistrationStatus]int{
		domain.RegistrationPending:  0,
		domain.RegistrationApproved: 0,
		domain.RegistrationRejected: 0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[domain.RegistrationStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus, updatedAt time.Time) (*domain.Registration, error) {
	query := r.db.rebind(`
		UPDATE registrations SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + registrationColumns)
	return scanRegistration(r.q.QueryRowContext(ctx, query, string(status), updatedAt.UTC(), id))
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	query := r.db.rebind(`DELETE FROM registrations WHERE id = $1`)
	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRegistration(row scanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var status string
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &status, &reg.RegisteredAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	reg.Status = domain.RegistrationStatus(status)
	return reg, nil
}
