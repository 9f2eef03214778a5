package msglog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salachat/internal/pkg/errs"
	"salachat/internal/pkg/logx"
)

// MemoryLog is the in-memory Log implementation. A single RWMutex guards both
// the ordered entries slice and the id index, so a reader never observes a
// half-inserted record and writes on one id are mutually exclusive.
type MemoryLog struct {
	// mu protects entries and index.
	mu sync.RWMutex

	// entries holds the log in insertion (chronological) order.
	entries []*Message

	// index maps a message id to its record.
	index map[string]*Message

	// senders answers registration checks for non-status appends.
	senders SenderRegistry

	// now supplies timestamps; replaceable for tests.
	now func() time.Time

	// structured logger with log context.
	logger zerolog.Logger
}

// NewMemoryLog constructs an empty in-memory message log backed by the given
// sender registry.
func NewMemoryLog(senders SenderRegistry) *MemoryLog {
	return NewMemoryLogWithNow(senders, time.Now)
}

// NewMemoryLogWithNow constructs a log with an injectable clock.
func NewMemoryLogWithNow(senders SenderRegistry, now func() time.Time) *MemoryLog {
	return &MemoryLog{
		index:   make(map[string]*Message),
		senders: senders,
		now:     now,
		logger:  logx.Logger().With().Str("component", "msglog").Logger(),
	}
}

// Append validates and appends a new message to the end of the log.
func (l *MemoryLog) Append(ctx context.Context, from, to, text, kind string) (*Message, *errs.CustomError) {
	if cerr := ValidateFields(to, text, kind); cerr != nil {
		return nil, cerr
	}

	// Status messages fire during or after removal, so the sender may
	// legitimately no longer be registered.
	if kind != KindStatus {
		registered, cerr := l.senders.IsRegistered(ctx, from)
		if cerr != nil {
			return nil, cerr
		}
		if !registered {
			l.logger.Warn().Str("from", from).Msg("Rejected message from unknown sender.")
			return nil, errs.NewError(errs.ErrUnknownSender)
		}
	}

	sentAt := l.now()
	m := &Message{
		ID:     uuid.NewString(),
		From:   from,
		To:     to,
		Text:   text,
		Kind:   kind,
		Time:   sentAt.Format(DisplayTimeLayout),
		SentAt: sentAt,
	}

	l.mu.Lock()
	l.entries = append(l.entries, m)
	l.index[m.ID] = m
	l.mu.Unlock()

	out := *m
	return &out, nil
}

// ListFor returns the messages visible to viewer, oldest first. A positive
// limit keeps only the newest matching entries.
func (l *MemoryLog) ListFor(ctx context.Context, viewer string, limit int) ([]Message, *errs.CustomError) {
	if limit < 0 {
		return nil, errs.NewError(errs.ErrInvalidLimit)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	visible := make([]Message, 0, len(l.entries))
	for _, m := range l.entries {
		if VisibleTo(m, viewer) {
			visible = append(visible, *m)
		}
	}

	if limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}

	return visible, nil
}

// Update edits to, text, and kind of an existing message in place. Only the
// original sender may edit; id, from, and timestamp are preserved.
func (l *MemoryLog) Update(ctx context.Context, id, editor, to, text, kind string) *errs.CustomError {
	if cerr := ValidateFields(to, text, kind); cerr != nil {
		return cerr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.index[id]
	if !ok {
		return errs.NewError(errs.ErrMessageNotFound)
	}

	if m.From != editor {
		l.logger.Warn().Str("id", id).Str("editor", editor).Msg("Rejected edit by non-owner.")
		return errs.NewError(errs.ErrNotMessageOwner)
	}

	m.To = to
	m.Text = text
	m.Kind = kind
	return nil
}

// Delete removes the message from the log. Only the original sender may delete.
func (l *MemoryLog) Delete(ctx context.Context, id, requester string) *errs.CustomError {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.index[id]
	if !ok {
		return errs.NewError(errs.ErrMessageNotFound)
	}

	if m.From != requester {
		l.logger.Warn().Str("id", id).Str("requester", requester).Msg("Rejected delete by non-owner.")
		return errs.NewError(errs.ErrNotMessageOwner)
	}

	delete(l.index, id)
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	return nil
}
