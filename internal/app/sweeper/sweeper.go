/*
Package sweeper runs the periodic eviction job that removes participants who
stopped signaling presence.

Each sweep scans for stale participants and processes them independently: the
participant is removed first, and only an actual removal emits the departure
status message, so a rerun never announces the same departure twice. Removal
rechecks staleness atomically, so a participant that signaled presence or
re-registered after the scan survives the sweep. Failures are logged per
participant and never abort the sweep or the schedule.
*/
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"salachat/internal/app/msglog"
	"salachat/internal/app/presence"
	"salachat/internal/pkg/logx"
)

// DepartureText is the status message body announcing that a participant left.
const DepartureText = "sai da sala..."

// sweepTimeout bounds one full sweep pass against a slow store.
const sweepTimeout = 30 * time.Second

// Sweeper periodically evicts stale participants and records their departure
// in the message log.
type Sweeper struct {
	cron       *cron.Cron
	presence   presence.Store
	messages   msglog.Log
	interval   time.Duration
	staleAfter time.Duration

	// now supplies the staleness reference instant; replaceable for tests.
	now func() time.Time

	// structured logger with sweeper context.
	logger zerolog.Logger
}

// cronLog adapts the component logger to the cron.Logger interface so the
// scheduler can report skipped overlapping runs.
type cronLog struct {
	logger zerolog.Logger
}

func (c cronLog) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (c cronLog) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// New constructs a Sweeper that runs every interval and evicts participants
// whose last presence signal is older than staleAfter.
func New(p presence.Store, m msglog.Log, interval, staleAfter time.Duration) *Sweeper {
	logger := logx.Logger().With().Str("component", "sweeper").Logger()

	return &Sweeper{
		// A slow pass against the database can outlast the interval; skipping
		// the overlapping run keeps at most one sweep in flight.
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLog{logger: logger}))),
		presence:   p,
		messages:   m,
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
		logger:     logger,
	}
}

// Start registers the recurring sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.Sweep); err != nil {
		return fmt.Errorf("failed to schedule eviction sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("stale_after", s.staleAfter).
		Msg("Eviction sweeper started.")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Eviction sweeper stopped.")
}

// Sweep performs one eviction pass. It never returns an error: store failures
// are logged and the remaining stale participants are still processed.
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cutoff := s.now().Add(-s.staleAfter)

	stale, cerr := s.presence.ListStale(ctx, cutoff)
	if cerr != nil {
		s.logger.Error().Err(cerr).Msg("Failed to scan for stale participants. Skipping sweep.")
		return
	}

	if len(stale) == 0 {
		return
	}

	evicted := 0
	for _, p := range stale {
		if s.evict(ctx, p.Name, cutoff) {
			evicted++
		}
	}

	s.logger.Info().
		Int("stale", len(stale)).
		Int("evicted", evicted).
		Msg("Eviction sweep finished.")
}

// evict removes one participant and announces the departure. Removal is
// conditional on the participant still being stale at the cutoff, so one that
// was touched, re-registered, or already removed since the scan is silently
// skipped and the departure is announced at most once per staleness episode.
func (s *Sweeper) evict(ctx context.Context, name string, cutoff time.Time) bool {
	removed, cerr := s.presence.RemoveIfStale(ctx, name, cutoff)
	if cerr != nil {
		s.logger.Error().Err(cerr).Str("name", name).Msg("Failed to remove stale participant.")
		return false
	}
	if !removed {
		return false
	}

	if _, cerr := s.messages.Append(ctx, name, msglog.BroadcastTarget, DepartureText, msglog.KindStatus); cerr != nil {
		s.logger.Error().Err(cerr).Str("name", name).Msg("Participant evicted but departure message failed.")
		return true
	}

	s.logger.Info().Str("name", name).Msg("Stale participant evicted.")
	return true
}
