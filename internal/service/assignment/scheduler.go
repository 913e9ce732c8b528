package assignment

import (
	"context"
	"sync"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/logx"
)

// State of the automatic matching loop.
type State string

// List of scheduler states
const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

const defaultPassTimeout = 30 * time.Second

// Scheduler runs passes of an Engine on a fixed interval.
type Scheduler struct {
	engine      *Engine
	logger      logx.Logger
	passTimeout time.Duration

	mu       sync.Mutex
	state    State
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(engine *Engine, passTimeout time.Duration, logger logx.Logger) *Scheduler {
	if passTimeout <= 0 {
		passTimeout = defaultPassTimeout
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Scheduler{
		engine:      engine,
		logger:      logger,
		passTimeout: passTimeout,
		state:       StateStopped,
	}
}

// Start launches the loop. The first pass runs immediately.
func (s *Scheduler) Start(interval time.Duration) error {
	if interval <= 0 {
		return apperr.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return apperr.ErrAlreadyRunning
	}
	s.state = StateRunning
	s.interval = interval
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.loop(interval, s.stop)

	s.logger.Info("automatic matching started",
		logx.String("event", "dispatch_started"),
		logx.Duration("interval", interval),
	)
	return nil
}

// Stop prevents future passes. A pass already running is not interrupted and
// keeps every assignment it commits. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return
	}
	close(s.stop)
	s.state = StateStopped
	s.logger.Info("automatic matching stopped", logx.String("event", "dispatch_stopped"))
}

// State returns the loop state and its interval.
func (s *Scheduler) State() (State, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.interval
}

// Wait blocks until every loop started so far has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(interval time.Duration, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.pass()
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		select {
		case <-stop:
			return
		default:
		}
	}
}

// pass is detached from Stop so claims already in flight commit.
func (s *Scheduler) pass() {
	ctx, cancel := context.WithTimeout(context.Background(), s.passTimeout)
	defer cancel()

	n, err := s.engine.run(ctx, TriggerScheduled)
	if err != nil {
		s.logger.Warn("scheduled pass failed",
			logx.String("event", "dispatch_pass_failed"),
			logx.Int("assigned", n),
			logx.Err(err),
		)
		return
	}
	if n > 0 {
		s.logger.Debug("scheduled pass finished",
			logx.String("event", "dispatch_pass"),
			logx.Int("assigned", n),
		)
	}
}
