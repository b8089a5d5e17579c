package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrNoReportFunc is returned by Start when no report function is set.
var ErrNoReportFunc = errors.New("scheduler: report function not set")

// Scheduler runs the periodic usage report.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
	logger     *zap.Logger
}

// New creates a scheduler for the given cron spec, evaluated in UTC.
func New(spec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("scheduler"),
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		return ErrNoReportFunc
	}
	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("report triggered", zap.String("spec", s.spec))
		if err := s.reportFunc(s.ctx); err != nil {
			s.logger.Error("report failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

// Run starts the scheduler and blocks until ctx is done. Reports get a
// context derived from ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	if err := s.Start(); err != nil {
		s.cancel()
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop cancels a running report and waits for it to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
