/*
Package presence tracks the set of participants currently in the room and the
time each one last signaled liveness.

It defines the Participant record and the Store interface shared by the
in-memory and database-backed implementations. A participant exists from its
registration until it leaves or the eviction sweep removes it for staleness;
the same name may register again afterward as a fresh participant.
*/
package presence

import (
	"context"
	"time"

	"salachat/internal/pkg/errs"
)

// Participant represents a single registered chat participant.
type Participant struct {
	// Name is the unique identifier of the participant.
	Name string `json:"name"`

	// LastSeen is the timestamp of the participant's last presence signal.
	LastSeen time.Time `json:"lastSeen"`
}

// Store is the presence storage contract.
//
// Implementations must serialize conflicting writes on the same name: two
// concurrent Register calls for one name yield exactly one success and one
// ErrNameTaken.
type Store interface {
	// Register creates a new participant with LastSeen set to now.
	// It fails with ErrNameTaken if the name is already registered.
	Register(ctx context.Context, name string) (*Participant, *errs.CustomError)

	// Touch resets the participant's staleness clock.
	// It fails with ErrParticipantNotFound if the name is not registered.
	Touch(ctx context.Context, name string) *errs.CustomError

	// List returns all current participants. Order is not significant.
	List(ctx context.Context) ([]Participant, *errs.CustomError)

	// Remove deletes the participant if present and reports whether a record
	// was actually removed. Removing an absent name is not an error, so
	// concurrent removals race safely and only one caller observes true.
	Remove(ctx context.Context, name string) (bool, *errs.CustomError)

	// RemoveIfStale deletes the participant only if its LastSeen still
	// predates olderThan, and reports whether a record was removed. The
	// staleness recheck and the delete are atomic, so a participant that was
	// touched or re-registered after being scanned survives the removal.
	RemoveIfStale(ctx context.Context, name string, olderThan time.Time) (bool, *errs.CustomError)

	// ListStale returns the participants whose LastSeen is strictly older
	// than the given instant.
	ListStale(ctx context.Context, olderThan time.Time) ([]Participant, *errs.CustomError)

	// IsRegistered reports whether the name currently belongs to a participant.
	IsRegistered(ctx context.Context, name string) (bool, *errs.CustomError)
}
