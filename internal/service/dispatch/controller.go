// Package dispatch is the control surface of automatic matching.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/service/assignment"
)

// Runner executes one matching pass.
type Runner interface {
	RunOnce(ctx context.Context) (int, error)
}

// Loop is the lifecycle of the automatic matching loop.
type Loop interface {
	Start(interval time.Duration) error
	Stop()
	State() (assignment.State, time.Duration)
	Wait()
}

// Status describes the automatic matching loop.
type Status struct {
	State    assignment.State
	Interval time.Duration
}

// Controller is the only owner of the matching loop.
type Controller struct {
	runner   Runner
	loop     Loop
	interval time.Duration
	logger   logx.Logger
}

// NewController creates a Controller that starts the loop with the given interval.
func NewController(runner Runner, loop Loop, interval time.Duration, logger logx.Logger) *Controller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Controller{runner: runner, loop: loop, interval: interval, logger: logger}
}

// StartAutomatic starts periodic matching. It fails with apperr.ErrAlreadyRunning
// when the loop is already running.
func (c *Controller) StartAutomatic() error {
	return c.loop.Start(c.interval)
}

// StopAutomatic stops periodic matching. A pass in progress still completes.
func (c *Controller) StopAutomatic() {
	c.loop.Stop()
}

// TriggerManual runs one pass now, independently of the loop.
func (c *Controller) TriggerManual(ctx context.Context) (int, error) {
	n, err := c.runner.RunOnce(ctx)
	if err != nil {
		c.logger.Warn("manual pass failed",
			logx.String("event", "dispatch_pass_failed"),
			logx.String("trigger", assignment.TriggerManual),
			logx.Int("assigned", n),
			logx.Err(err),
		)
		if !errors.Is(err, apperr.ErrUnavailable) &&
			(errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
			err = fmt.Errorf("manual pass: %w: %w", apperr.ErrUnavailable, err)
		}
		return n, err
	}
	c.logger.Info("manual pass finished",
		logx.String("event", "dispatch_pass"),
		logx.String("trigger", assignment.TriggerManual),
		logx.Int("assigned", n),
	)
	return n, nil
}

// Status reports the loop state.
func (c *Controller) Status() Status {
	state, interval := c.loop.State()
	if state != assignment.StateRunning {
		interval = c.interval
	}
	return Status{State: state, Interval: interval}
}

// Shutdown stops the loop and waits for any in-flight pass.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.loop.Stop()
	done := make(chan struct{})
	go func() {
		c.loop.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
