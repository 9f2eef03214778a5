package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"salachat/internal/pkg/errs"
)

func TestRegisterAndConflict(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()
	ctx := context.Background()

	p, cerr := store.Register(ctx, "ana")
	req.Nil(cerr)
	req.Equal("ana", p.Name)
	req.False(p.LastSeen.IsZero())

	_, cerr = store.Register(ctx, "ana")
	req.NotNil(cerr)
	req.Equal(errs.ErrNameTaken, cerr.Code)
}

func TestConcurrentRegisterSameName(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan *errs.CustomError, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, cerr := store.Register(ctx, "ana")
			results <- cerr
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for cerr := range results {
		if cerr == nil {
			successes++
		} else {
			req.Equal(errs.ErrNameTaken, cerr.Code)
			conflicts++
		}
	}
	req.Equal(1, successes)
	req.Equal(attempts-1, conflicts)
}

func TestTouchAdvancesLastSeen(t *testing.T) {
	req := require.New(t)

	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithNow(func() time.Time { return current })
	ctx := context.Background()

	p, cerr := store.Register(ctx, "ana")
	req.Nil(cerr)
	registeredAt := p.LastSeen

	current = current.Add(5 * time.Second)
	req.Nil(store.Touch(ctx, "ana"))

	list, cerr := store.List(ctx)
	req.Nil(cerr)
	req.Len(list, 1)
	req.True(list[0].LastSeen.After(registeredAt))
}

func TestTouchUnknownParticipant(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()

	cerr := store.Touch(context.Background(), "ghost")
	req.NotNil(cerr)
	req.Equal(errs.ErrParticipantNotFound, cerr.Code)
}

func TestRemoveReportsAndIsIdempotent(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()
	ctx := context.Background()

	_, cerr := store.Register(ctx, "ana")
	req.Nil(cerr)

	removed, cerr := store.Remove(ctx, "ana")
	req.Nil(cerr)
	req.True(removed)

	removed, cerr = store.Remove(ctx, "ana")
	req.Nil(cerr)
	req.False(removed)

	registered, cerr := store.IsRegistered(ctx, "ana")
	req.Nil(cerr)
	req.False(registered)
}

func TestReRegisterAfterRemoval(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore()
	ctx := context.Background()

	_, cerr := store.Register(ctx, "ana")
	req.Nil(cerr)

	removed, cerr := store.Remove(ctx, "ana")
	req.Nil(cerr)
	req.True(removed)

	p, cerr := store.Register(ctx, "ana")
	req.Nil(cerr)
	req.Equal("ana", p.Name)
}

func TestRemoveIfStaleRechecksLastSeen(t *testing.T) {
	req := require.New(t)

	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithNow(func() time.Time { return current })
	ctx := context.Background()

	_, cerr := store.Register(ctx, "ana")
	req.Nil(cerr)

	current = current.Add(11 * time.Second)
	cutoff := current.Add(-10 * time.Second)

	// A heartbeat after the scan instant keeps the record alive.
	req.Nil(store.Touch(ctx, "ana"))

	removed, cerr := store.RemoveIfStale(ctx, "ana", cutoff)
	req.Nil(cerr)
	req.False(removed)

	registered, cerr := store.IsRegistered(ctx, "ana")
	req.Nil(cerr)
	req.True(registered)

	// Without the heartbeat the record goes; an absent name reports false.
	current = current.Add(11 * time.Second)
	cutoff = current.Add(-10 * time.Second)

	removed, cerr = store.RemoveIfStale(ctx, "ana", cutoff)
	req.Nil(cerr)
	req.True(removed)

	removed, cerr = store.RemoveIfStale(ctx, "ana", cutoff)
	req.Nil(cerr)
	req.False(removed)
}

func TestListStale(t *testing.T) {
	req := require.New(t)

	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithNow(func() time.Time { return current })
	ctx := context.Background()

	_, cerr := store.Register(ctx, "old")
	req.Nil(cerr)

	current = current.Add(11 * time.Second)
	_, cerr = store.Register(ctx, "fresh")
	req.Nil(cerr)

	cutoff := current.Add(-10 * time.Second)
	stale, cerr := store.ListStale(ctx, cutoff)
	req.Nil(cerr)
	req.Len(stale, 1)
	req.Equal("old", stale[0].Name)
}
