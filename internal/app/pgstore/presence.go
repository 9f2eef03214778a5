package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"salachat/internal/app/presence"
	"salachat/internal/pkg/errs"
	"salachat/internal/pkg/logx"
)

// PresenceStore implements presence.Store on top of PostgreSQL. The primary
// key on participants.name serializes concurrent registrations of one name.
type PresenceStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPresenceStore constructs a PresenceStore over the given pool.
func NewPresenceStore(pool *pgxpool.Pool) *PresenceStore {
	return &PresenceStore{
		pool:   pool,
		logger: logx.Logger().With().Str("component", "presence_pg").Logger(),
	}
}

// Register inserts a new participant, mapping a unique violation to ErrNameTaken.
func (s *PresenceStore) Register(ctx context.Context, name string) (*presence.Participant, *errs.CustomError) {
	const query = `
		INSERT INTO participants (name, last_seen)
		VALUES ($1, now())
		RETURNING last_seen
	`

	p := presence.Participant{Name: name}
	if err := s.pool.QueryRow(ctx, query, name).Scan(&p.LastSeen); err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn().Str("name", name).Msg("Attempted to register an existing participant.")
			return nil, errs.NewError(errs.ErrNameTaken)
		}
		return nil, errs.Wrap(err, errs.ErrStorageFailure)
	}

	s.logger.Info().Str("name", name).Msg("Participant registered.")
	return &p, nil
}

// Touch resets the staleness clock for the named participant.
func (s *PresenceStore) Touch(ctx context.Context, name string) *errs.CustomError {
	const query = `UPDATE participants SET last_seen = now() WHERE name = $1`

	tag, err := s.pool.Exec(ctx, query, name)
	if err != nil {
		return errs.Wrap(err, errs.ErrStorageFailure)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewError(errs.ErrParticipantNotFound)
	}
	return nil
}

// List returns all current participants.
func (s *PresenceStore) List(ctx context.Context) ([]presence.Participant, *errs.CustomError) {
	const query = `SELECT name, last_seen FROM participants`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrStorageFailure)
	}
	defer rows.Close()

	out := make([]presence.Participant, 0)
	for rows.Next() {
		var p presence.Participant
		if err := rows.Scan(&p.Name, &p.LastSeen); err != nil {
			return nil, errs.Wrap(err, errs.ErrStorageFailure)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.ErrStorageFailure)
	}

	return out, nil
}

// Remove deletes the named participant if present and reports whether a row
// was removed.
func (s *PresenceStore) Remove(ctx context.Context, name string) (bool, *errs.CustomError) {
	const query = `DELETE FROM participants WHERE name = $1`

	tag, err := s.pool.Exec(ctx, query, name)
	if err != nil {
		return false, errs.Wrap(err, errs.ErrStorageFailure)
	}

	removed := tag.RowsAffected() > 0
	if removed {
		s.logger.Info().Str("name", name).Msg("Participant removed.")
	}
	return removed, nil
}

// RemoveIfStale deletes the named participant only if its last_seen still
// predates olderThan. The condition rides on the DELETE itself, so a row that
// was touched or re-registered since the stale scan is left alone.
func (s *PresenceStore) RemoveIfStale(ctx context.Context, name string, olderThan time.Time) (bool, *errs.CustomError) {
	const query = `DELETE FROM participants WHERE name = $1 AND last_seen < $2`

	tag, err := s.pool.Exec(ctx, query, name, olderThan)
	if err != nil {
		return false, errs.Wrap(err, errs.ErrStorageFailure)
	}

	removed := tag.RowsAffected() > 0
	if removed {
		s.logger.Info().Str("name", name).Msg("Stale participant removed.")
	}
	return removed, nil
}

// ListStale returns the participants whose last_seen predates olderThan.
func (s *PresenceStore) ListStale(ctx context.Context, olderThan time.Time) ([]presence.Participant, *errs.CustomError) {
	const query = `SELECT name, last_seen FROM participants WHERE last_seen < $1`

	rows, err := s.pool.Query(ctx, query, olderThan)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrStorageFailure)
	}
	defer rows.Close()

	var out []presence.Participant
	for rows.Next() {
		var p presence.Participant
		if err := rows.Scan(&p.Name, &p.LastSeen); err != nil {
			return nil, errs.Wrap(err, errs.ErrStorageFailure)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.ErrStorageFailure)
	}

	return out, nil
}

// IsRegistered reports whether the name currently belongs to a participant.
func (s *PresenceStore) IsRegistered(ctx context.Context, name string) (bool, *errs.CustomError) {
	const query = `SELECT EXISTS (SELECT 1 FROM participants WHERE name = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, errs.Wrap(err, errs.ErrStorageFailure)
	}
	return exists, nil
}
