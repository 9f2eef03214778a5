/*
Package msglog holds the append-only record of chat events and the per-viewer
visibility rules.

Messages are addressed rather than routed: a broadcast carries the reserved
target name, a direct message carries the recipient's name, and a viewer also
sees their own sent messages. The log assigns each message an opaque id and a
display timestamp at creation; only the original sender may later edit or
delete it.
*/
package msglog

import (
	"context"
	"time"

	"salachat/internal/pkg/errs"
)

// BroadcastTarget is the reserved address meaning "all current participants".
const BroadcastTarget = "Todos"

// DisplayTimeLayout is the wall-clock format shown next to each message.
const DisplayTimeLayout = "15:04:05"

// Recognized message kinds.
const (
	// KindStatus marks system-generated join/leave events.
	KindStatus = "status"

	// KindBroadcast marks a message addressed to the whole room.
	KindBroadcast = "broadcast"

	// KindDirect marks a private message addressed to one participant.
	KindDirect = "direct"
)

// Message represents one entry in the chat log. The JSON shape mirrors what
// polling clients render directly, including the pre-formatted time string.
type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Kind string `json:"type"`
	Time string `json:"time"`

	// SentAt is the creation instant used for ordering and never changes,
	// even across edits.
	SentAt time.Time `json:"-"`
}

// SenderRegistry answers whether a name currently belongs to a registered
// participant. The presence store satisfies it.
type SenderRegistry interface {
	IsRegistered(ctx context.Context, name string) (bool, *errs.CustomError)
}

// Log is the message storage contract.
//
// Implementations must keep insertion order as chronological order and must
// serialize conflicting writes on the same message id.
type Log interface {
	// Append validates the fields, checks that from is a registered
	// participant (skipped for KindStatus, which fires during or after
	// removal), and appends a new message to the end of the log.
	Append(ctx context.Context, from, to, text, kind string) (*Message, *errs.CustomError)

	// ListFor returns the messages visible to viewer in chronological order.
	// A positive limit keeps only the newest matching entries, still oldest
	// first within that window; limit zero means no limit.
	ListFor(ctx context.Context, viewer string, limit int) ([]Message, *errs.CustomError)

	// Update mutates to, text, and kind in place, preserving id, from, and
	// timestamp. Only the original sender may edit.
	Update(ctx context.Context, id, editor, to, text, kind string) *errs.CustomError

	// Delete removes the message. Only the original sender may delete.
	Delete(ctx context.Context, id, requester string) *errs.CustomError
}

// VisibleTo reports whether viewer may see the message: broadcasts are public,
// direct messages are visible to both ends of the conversation.
func VisibleTo(m *Message, viewer string) bool {
	return m.To == BroadcastTarget || m.To == viewer || m.From == viewer
}

// ValidateFields checks the semantic invariants shared by Append and Update:
// no empty field and a recognized kind.
func ValidateFields(to, text, kind string) *errs.CustomError {
	if to == "" || text == "" || kind == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}

	switch kind {
	case KindStatus, KindBroadcast, KindDirect:
		return nil
	default:
		return errs.NewError(errs.ErrInvalidKind)
	}
}
