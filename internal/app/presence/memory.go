package presence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salachat/internal/pkg/errs"
	"salachat/internal/pkg/logx"
)

// MemoryStore is the in-memory Store implementation. A single RWMutex guards
// the participants map, which serializes conflicting writes per name.
type MemoryStore struct {
	// mu protects concurrent access to the participants map.
	mu sync.RWMutex

	// participants maps a participant name to its record.
	participants map[string]*Participant

	// now supplies timestamps; replaceable for tests.
	now func() time.Time

	// structured logger with store context.
	logger zerolog.Logger
}

// NewMemoryStore constructs an empty in-memory presence store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithNow(time.Now)
}

// NewMemoryStoreWithNow constructs a store with an injectable clock.
func NewMemoryStoreWithNow(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		participants: make(map[string]*Participant),
		now:          now,
		logger:       logx.Logger().With().Str("component", "presence").Logger(),
	}
}

// Register creates a new participant, failing with ErrNameTaken if the name
// is already present.
func (s *MemoryStore) Register(ctx context.Context, name string) (*Participant, *errs.CustomError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[name]; ok {
		s.logger.Warn().Str("name", name).Msg("Attempted to register an existing participant.")
		return nil, errs.NewError(errs.ErrNameTaken)
	}

	p := &Participant{
		Name:     name,
		LastSeen: s.now(),
	}
	s.participants[name] = p

	s.logger.Info().Str("name", name).Int("total", len(s.participants)).Msg("Participant registered.")

	out := *p
	return &out, nil
}

// Touch resets the staleness clock for the named participant.
func (s *MemoryStore) Touch(ctx context.Context, name string) *errs.CustomError {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[name]
	if !ok {
		return errs.NewError(errs.ErrParticipantNotFound)
	}

	p.LastSeen = s.now()
	return nil
}

// List returns a snapshot of all current participants.
func (s *MemoryStore) List(ctx context.Context) ([]Participant, *errs.CustomError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, *p)
	}
	return out, nil
}

// Remove deletes the named participant if present and reports whether a
// record was removed.
func (s *MemoryStore) Remove(ctx context.Context, name string) (bool, *errs.CustomError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[name]; !ok {
		return false, nil
	}

	delete(s.participants, name)
	s.logger.Info().Str("name", name).Int("total", len(s.participants)).Msg("Participant removed.")
	return true, nil
}

// RemoveIfStale deletes the named participant only if its LastSeen still
// predates olderThan. The recheck runs under the write lock, so a record that
// was touched or re-registered since it was scanned is left alone.
func (s *MemoryStore) RemoveIfStale(ctx context.Context, name string, olderThan time.Time) (bool, *errs.CustomError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[name]
	if !ok || !p.LastSeen.Before(olderThan) {
		return false, nil
	}

	delete(s.participants, name)
	s.logger.Info().Str("name", name).Int("total", len(s.participants)).Msg("Stale participant removed.")
	return true, nil
}

// ListStale returns the participants whose LastSeen predates olderThan.
func (s *MemoryStore) ListStale(ctx context.Context, olderThan time.Time) ([]Participant, *errs.CustomError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Participant
	for _, p := range s.participants {
		if p.LastSeen.Before(olderThan) {
			out = append(out, *p)
		}
	}
	return out, nil
}

// IsRegistered reports whether the name currently belongs to a participant.
func (s *MemoryStore) IsRegistered(ctx context.Context, name string) (bool, *errs.CustomError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.participants[name]
	return ok, nil
}
