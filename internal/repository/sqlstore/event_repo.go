package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"

	"github.com/google/uuid"
)

const eventColumns = `id, title, description, venue, date, max_participants, created_by, status, rejection_reason, created_at, updated_at`

type eventRepository struct {
	db *DB
	q  querier
}

func NewEventRepository(db *DB) domain.EventRepository {
	return &eventRepository{
		db: db,
		q:  db.DB,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := r.db.rebind(`
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	id := uuid.NewString()
	_, err := r.q.ExecContext(ctx, query,
		id, e.Title, e.Description, e.Venue, e.Date.UTC(), nullInt(e.MaxParticipants), e.CreatedBy,
		string(e.Status), nullString(e.RejectionReason), e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := r.db.rebind(`SELECT ` + eventColumns + ` FROM events WHERE id = $1`)
	return scanEvent(r.q.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := r.db.rebind(`SELECT ` + eventColumns + ` FROM events ORDER BY date ASC`)
	return r.list(ctx, query)
}

func (r *eventRepository) ListAfter(ctx context.Context, t time.Time) ([]*domain.Event, error) {
	query := r.db.rebind(`SELECT ` + eventColumns + ` FROM events WHERE date > $1 ORDER BY date ASC`)
	return r.list(ctx, query, t.UTC())
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	if upd.Empty() {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	setClauses := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}
	n := 2
	if upd.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *upd.Title)
		n++
	}
	if upd.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *upd.Description)
		n++
	}
	if upd.Venue != nil {
		setClauses = append(setClauses, fmt.Sprintf("venue = $%d", n))
		args = append(args, *upd.Venue)
		n++
	}
	if upd.Date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, upd.Date.UTC())
		n++
	}
	if upd.MaxParticipants != nil {
		setClauses = append(setClauses, fmt.Sprintf("max_participants = $%d", n))
		args = append(args, *upd.MaxParticipants)
		n++
	}
	args = append(args, id)
	query := r.db.rebind(fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns))
	return scanEvent(r.q.QueryRowContext(ctx, query, args...))
}

func (r *eventRepository) SetStatus(ctx context.Context, id string, status domain.EventStatus, reason *string) (*domain.Event, error) {
	query := r.db.rebind(`
		UPDATE events SET status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + eventColumns)
	return scanEvent(r.q.QueryRowContext(ctx, query, string(status), nullString(reason), time.Now().UTC(), id))
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := r.db.rebind(`DELETE FROM events WHERE id = $1`)
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

func scanEvent(row scanner) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	var maxNull sql.NullInt64
	var reasonNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Venue, &e.Date, &maxNull, &e.CreatedBy,
		&status, &reasonNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.Status = domain.EventStatus(status)
	if maxNull.Valid {
		m := int(maxNull.Int64)
		e.MaxParticipants = &m
	}
	if reasonNull.Valid {
		e.RejectionReason = &reasonNull.String
	}
	return e, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
