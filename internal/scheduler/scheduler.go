// internal/scheduler/scheduler.go
package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Handler is the callback invoked for each source file when a refresh fires.
type Handler func(source string)

// Scheduler periodically re-ingests a fixed set of source files on a cron
// schedule. It is an external consumer of the store's API: the core never
// watches the filesystem itself.
type Scheduler struct {
	schedule string
	sources  []string
	handler  Handler
	cron     *cron.Cron
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a Scheduler that fires the handler once per source each time
// the schedule triggers.
func New(schedule string, sources []string, handler Handler) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		sources:  append([]string(nil), sources...),
		handler:  handler,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the refresh entry and starts the cron ticker.
func (s *Scheduler) Start() error {
	if len(s.sources) == 0 {
		return fmt.Errorf("no sources to refresh")
	}
	if _, err := s.cron.AddFunc(s.schedule, s.refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	slog.Info("refresh scheduled", "schedule", s.schedule, "sources", len(s.sources))
	return nil
}

// Stop stops the cron ticker.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// refresh fires the handler for every registered source.
func (s *Scheduler) refresh() {
	for _, src := range s.sources {
		slog.Info("refreshing source", "path", src)
		s.handler(src)
	}
}
