package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/viniciuslks7/API-Starwars/observe"
)

// DefaultCleanupSchedule sweeps expired entries every five minutes.
const DefaultCleanupSchedule = "@every 5m"

// ErrNilStore is returned when a Janitor is created without a store.
var ErrNilStore = errors.New("cache: store is nil")

// Janitor periodically removes expired entries from a Store. Expiry is
// otherwise lazy, so entries that are never read again would linger.
type Janitor struct {
	store  Store
	logger observe.Logger
	cron   *cron.Cron
}

// NewJanitor schedules CleanupExpired on store using a cron spec
// (standard five-field expressions or descriptors such as "@every 1m").
// An empty schedule uses DefaultCleanupSchedule.
func NewJanitor(store Store, schedule string, logger observe.Logger) (*Janitor, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}

	j := &Janitor{
		store:  store,
		logger: logger.With(observe.String("component", "cache.janitor")),
	}
	j.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{logger: j.logger})))

	if _, err := j.cron.AddFunc(schedule, func() { j.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("cache: invalid cleanup schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start begins the schedule in its own goroutine.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx
// to expire.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Sweep removes expired entries now and returns how many were removed.
func (j *Janitor) Sweep(ctx context.Context) int {
	removed := j.store.CleanupExpired(ctx)
	if removed > 0 {
		j.logger.Debug(ctx, "expired cache entries removed",
			observe.Int("removed", removed),
			observe.Int("remaining", j.store.Stats().Entries),
		)
	}
	return removed
}

// cronLogger adapts observe.Logger to cron.Logger.
type cronLogger struct {
	logger observe.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(context.Background(), msg, observe.KeyValues(keysAndValues...)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := append(observe.KeyValues(keysAndValues...), observe.Err(err))
	l.logger.Error(context.Background(), msg, fields...)
}
