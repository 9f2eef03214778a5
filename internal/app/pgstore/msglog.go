package pgstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"salachat/internal/app/msglog"
	"salachat/internal/pkg/errs"
	"salachat/internal/pkg/logx"
)

// MessageLog implements msglog.Log on top of PostgreSQL. The seq identity
// column preserves insertion order; edits lock the message row so conflicting
// writes on one id serialize in the database.
type MessageLog struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMessageLog constructs a MessageLog over the given pool. Sender
// registration checks run against the participants table in the same database.
func NewMessageLog(pool *pgxpool.Pool) *MessageLog {
	return &MessageLog{
		pool:   pool,
		logger: logx.Logger().With().Str("component", "msglog_pg").Logger(),
	}
}

// Append validates and inserts a new message at the end of the log.
func (l *MessageLog) Append(ctx context.Context, from, to, text, kind string) (*msglog.Message, *errs.CustomError) {
	if cerr := msglog.ValidateFields(to, text, kind); cerr != nil {
		return nil, cerr
	}

	// Status messages fire during or after removal, so the sender may
	// legitimately no longer be registered.
	if kind != msglog.KindStatus {
		const existsQuery = `SELECT EXISTS (SELECT 1 FROM participants WHERE name = $1)`

		var registered bool
		if err := l.pool.QueryRow(ctx, existsQuery, from).Scan(&registered); err != nil {
			return nil, errs.Wrap(err, errs.ErrStorageFailure)
		}
		if !registered {
			l.logger.Warn().Str("from", from).Msg("Rejected message from unknown sender.")
			return nil, errs.NewError(errs.ErrUnknownSender)
		}
	}

	const insertQuery = `
		INSERT INTO messages (id, from_name, to_name, body, kind, sent_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING sent_at
	`

	m := msglog.Message{
		ID:   uuid.NewString(),
		From: from,
		To:   to,
		Text: text,
		Kind: kind,
	}
	if err := l.pool.QueryRow(ctx, insertQuery, m.ID, from, to, text, kind).Scan(&m.SentAt); err != nil {
		return nil, errs.Wrap(err, errs.ErrStorageFailure)
	}
	m.Time = m.SentAt.Format(msglog.DisplayTimeLayout)

	return &m, nil
}

// ListFor returns the messages visible to viewer, oldest first. A positive
// limit keeps only the newest matching entries.
func (l *MessageLog) ListFor(ctx context.Context, viewer string, limit int) ([]msglog.Message, *errs.CustomError) {
	if limit < 0 {
		return nil, errs.NewError(errs.ErrInvalidLimit)
	}

	const unlimited = `
		SELECT id, from_name, to_name, body, kind, sent_at
		FROM messages
		WHERE to_name = $1 OR to_name = $2 OR from_name = $2
		ORDER BY seq
	`
	const newestSuffix = `
		SELECT id, from_name, to_name, body, kind, sent_at
		FROM (
			SELECT seq, id, from_name, to_name, body, kind, sent_at
			FROM messages
			WHERE to_name = $1 OR to_name = $2 OR from_name = $2
			ORDER BY seq DESC
			LIMIT $3
		) recent
		ORDER BY seq
	`

	var rows pgx.Rows
	var err error
	if limit > 0 {
		rows, err = l.pool.Query(ctx, newestSuffix, msglog.BroadcastTarget, viewer, limit)
	} else {
		rows, err = l.pool.Query(ctx, unlimited, msglog.BroadcastTarget, viewer)
	}
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrStorageFailure)
	}
	defer rows.Close()

	out := make([]msglog.Message, 0)
	for rows.Next() {
		var m msglog.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Kind, &m.SentAt); err != nil {
			return nil, errs.Wrap(err, errs.ErrStorageFailure)
		}
		m.Time = m.SentAt.Format(msglog.DisplayTimeLayout)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.ErrStorageFailure)
	}

	return out, nil
}

// Update edits to, body, and kind of an existing message inside a transaction
// that locks the row, preserving id, from_name, and sent_at.
func (l *MessageLog) Update(ctx context.Context, id, editor, to, text, kind string) *errs.CustomError {
	if cerr := msglog.ValidateFields(to, text, kind); cerr != nil {
		return cerr
	}

	msgID, err := uuid.Parse(id)
	if err != nil {
		return errs.NewError(errs.ErrMessageNotFound)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(err, errs.ErrStorageFailure)
	}
	defer tx.Rollback(ctx)

	var owner string
	if err := tx.QueryRow(ctx, `SELECT from_name FROM messages WHERE id = $1 FOR UPDATE`, msgID).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NewError(errs.ErrMessageNotFound)
		}
		return errs.Wrap(err, errs.ErrStorageFailure)
	}

	if owner != editor {
		l.logger.Warn().Str("id", id).Str("editor", editor).Msg("Rejected edit by non-owner.")
		return errs.NewError(errs.ErrNotMessageOwner)
	}

	if _, err := tx.Exec(ctx, `UPDATE messages SET to_name = $2, body = $3, kind = $4 WHERE id = $1`, msgID, to, text, kind); err != nil {
		return errs.Wrap(err, errs.ErrStorageFailure)
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(err, errs.ErrStorageFailure)
	}
	return nil
}

// Delete removes the message if the requester is its original sender.
func (l *MessageLog) Delete(ctx context.Context, id, requester string) *errs.CustomError {
	msgID, err := uuid.Parse(id)
	if err != nil {
		return errs.NewError(errs.ErrMessageNotFound)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(err, errs.ErrStorageFailure)
	}
	defer tx.Rollback(ctx)

	var owner string
	if err := tx.QueryRow(ctx, `SELECT from_name FROM messages WHERE id = $1 FOR UPDATE`, msgID).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NewError(errs.ErrMessageNotFound)
		}
		return errs.Wrap(err, errs.ErrStorageFailure)
	}

	if owner != requester {
		l.logger.Warn().Str("id", id).Str("requester", requester).Msg("Rejected delete by non-owner.")
		return errs.NewError(errs.ErrNotMessageOwner)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE id = $1`, msgID); err != nil {
		return errs.Wrap(err, errs.ErrStorageFailure)
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(err, errs.ErrStorageFailure)
	}
	return nil
}
