package scheduler

import (
	"context"
	"sync"
	"time"

	"ZeroDTEScanner/internal/logging"
	"ZeroDTEScanner/internal/scanner"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// Scheduler runs a scan cycle, waits Interval after it ends, and repeats.
// The wait is measured from the end of each cycle, so a slow scan pushes the
// next one back instead of making it start immediately.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Window   Window
	Interval time.Duration
	Ctx      context.Context
	// Now is the clock used for window checks and report timestamps.
	Now func() time.Time

	running sync.Mutex // held for the duration of a cycle

	mu      sync.Mutex
	stopped bool
	entry   cron.EntryID
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, w Window, interval time.Duration) *Scheduler {
	cl := logging.CronLogger{Logger: &log.DefaultLogger}
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cl))),
		Scanner:  sc,
		Window:   w,
		Interval: interval,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// fireAt is a cron schedule that fires once at a fixed instant.
type fireAt time.Time

func (f fireAt) Next(t time.Time) time.Time {
	if t.Before(time.Time(f)) {
		return time.Time(f)
	}
	return time.Time{}
}

// Start starts the cron. With runNow the first cycle begins immediately,
// otherwise it begins one Interval from now.
func (s *Scheduler) Start(runNow bool) {
	s.Cron.Start()
	log.Info().Str("interval", s.Interval.String()).
		Str("open", s.Window.Open.String()).
		Str("close", s.Window.Close.String()).
		Msg("scheduler started")
	if runNow {
		go s.cycle()
		return
	}
	s.arm(time.Now().Add(s.Interval))
}

// Stop prevents further cycles and waits for a running one to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	<-s.Cron.Stop().Done()
	s.running.Lock()
	s.running.Unlock()
	log.Info().Msg("scheduler stopped")
}

// Next returns when the cycle after one that ended at end is due.
func (s *Scheduler) Next(end time.Time) time.Time {
	return end.Add(s.Interval)
}

// Tick runs one cycle at now if the window is open and reports whether it ran.
func (s *Scheduler) Tick(now time.Time) (scanner.Summary, bool) {
	if !s.Window.Contains(now) {
		log.Debug().Str("now", now.Format(time.RFC3339)).Msg("market closed, waiting")
		return scanner.Summary{}, false
	}
	if err := s.Ctx.Err(); err != nil {
		return scanner.Summary{}, false
	}
	return s.Scanner.Run(s.Ctx, now), true
}

// cycle runs one guarded tick and then arms the next one. Re-arming is
// deferred so a panic recovered by the cron chain does not end the loop.
func (s *Scheduler) cycle() {
	s.running.Lock()
	defer s.running.Unlock()
	if s.isStopped() {
		return
	}
	defer func() { s.arm(time.Now().Add(s.Interval)) }()
	s.Tick(s.Now())
}

// arm replaces the pending entry with one that fires at the given instant.
func (s *Scheduler) arm(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.entry != 0 {
		s.Cron.Remove(s.entry)
	}
	s.entry = s.Cron.Schedule(fireAt(at), cron.FuncJob(s.cycle))
}

func (s *Scheduler) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
