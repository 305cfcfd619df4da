package tool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	defaultHealthCron       = "*/5 * * * *"
	defaultFailureThreshold = 3
	defaultProbeTimeout     = 10 * time.Second
)

// HealthSchedulerConfig controls background health sweeps.
type HealthSchedulerConfig struct {
	Registry *Registry
	// CronExpr is a UTC standard 5-field cron expression; default */5 * * * *.
	CronExpr string
	// FailureThreshold is the number of consecutive probe failures before a
	// tool is marked unhealthy; default 3.
	FailureThreshold int
	ProbeTimeout     time.Duration
	Logger           *slog.Logger
	Now              func() time.Time
}

// HealthScheduler periodically probes tools that declared a ProbeFunc and
// flips their advisory status between ready and unhealthy. Dispatch is never
// blocked by status; the catalog simply reports it.
type HealthScheduler struct {
	registry  *Registry
	schedule  cron.Schedule
	threshold int
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	failures map[string]int
	reports  map[string]HealthReport
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewHealthScheduler creates a health scheduler over a registry.
func NewHealthScheduler(cfg HealthSchedulerConfig) (*HealthScheduler, error) {
	if cfg.Registry == nil {
		return nil, errors.New("tool: health scheduler registry is nil")
	}
	expr := cfg.CronExpr
	if expr == "" {
		expr = defaultHealthCron
	}
	schedule, err := ParseHealthCron(expr)
	if err != nil {
		return nil, err
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &HealthScheduler{
		registry:  cfg.Registry,
		schedule:  schedule,
		threshold: cfg.FailureThreshold,
		timeout:   cfg.ProbeTimeout,
		logger:    cfg.Logger,
		now:       cfg.Now,
		failures:  make(map[string]int),
		reports:   make(map[string]HealthReport),
	}, nil
}

// Start begins scheduler execution. Calling Start on a running scheduler is
// a no-op.
func (s *HealthScheduler) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("tool: health scheduler is nil")
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.RunOnce(loopCtx)
		for {
			next := s.schedule.Next(s.now().UTC())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-loopCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.RunOnce(loopCtx)
			}
		}
	}()

	return nil
}

// Stop terminates scheduler execution and waits for the sweep loop to exit.
func (s *HealthScheduler) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce sweeps every probed tool a single time.
func (s *HealthScheduler) RunOnce(ctx context.Context) {
	for _, desc := range s.registry.Descriptors() {
		if desc.Probe == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.probeOne(ctx, desc)
	}
}

// LastReport returns the most recent probe result for a tool.
func (s *HealthScheduler) LastReport(name string) (HealthReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[name]
	return report, ok
}

func (s *HealthScheduler) probeOne(ctx context.Context, desc Descriptor) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	err := desc.Probe(probeCtx)
	duration := time.Since(start)

	previous, _ := s.registry.ToolStatus(desc.Name)

	s.mu.Lock()
	if err != nil {
		s.failures[desc.Name]++
	} else {
		s.failures[desc.Name] = 0
	}
	failures := s.failures[desc.Name]
	s.mu.Unlock()

	status := StatusReady
	if failures >= s.threshold {
		status = StatusUnhealthy
	} else if err != nil && previous == StatusUnhealthy {
		// Stay unhealthy until a probe succeeds.
		status = StatusUnhealthy
	}
	s.registry.SetToolStatus(desc.Name, status)

	report := HealthReport{
		Tool:       desc.Name,
		Status:     status,
		CheckedAt:  start,
		DurationMS: duration.Milliseconds(),
		Failures:   failures,
	}
	if err != nil {
		report.Error = err.Error()
	}

	s.mu.Lock()
	s.reports[desc.Name] = report
	s.mu.Unlock()

	emitHealthObservation(HealthObservation{
		Tool:           desc.Name,
		Status:         status,
		PreviousStatus: previous,
		FailureCount:   failures,
		DurationMS:     duration.Milliseconds(),
		ErrorMessage:   report.Error,
	})

	if status != previous {
		s.logger.Info("tool status changed",
			"tool", desc.Name,
			"from", previous,
			"to", status,
			"failures", failures)
	}
}
