package internal

import (
	"os"
	"os/signal"
	"sync/atomic"
	"time"
)

// Cancellation is a one-way running -> stopped flag shared between the scan
// and whoever interrupts it. The scan only polls it.
type Cancellation struct {
	stopped atomic.Bool
}

func NewCancellation() *Cancellation { return &Cancellation{} }

// Stop marks the scan as stopped. Calling it more than once is a no-op.
func (c *Cancellation) Stop() { c.stopped.Store(true) }

// Stopped reports whether Stop was called. A nil Cancellation never stops.
func (c *Cancellation) Stopped() bool {
	return c != nil && c.stopped.Load()
}

// StopOnSignal calls Stop when one of sigs arrives. onStop, if not nil, runs once
// after the flag is set. The returned func detaches the handler.
func (c *Cancellation) StopOnSignal(onStop func(os.Signal), sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)
	go func() {
		select {
		case sig := <-ch:
			c.Stop()
			if onStop != nil {
				onStop(sig)
			}
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// StopAfter calls Stop once d has elapsed, then onStop if it is not nil. d <= 0
// disables the timer. The returned func cancels a timer that has not fired yet.
func (c *Cancellation) StopAfter(d time.Duration, onStop func()) func() {
	if d <= 0 {
		return func() {}
	}
	t := time.AfterFunc(d, func() {
		c.Stop()
		if onStop != nil {
			onStop()
		}
	})
	return func() { t.Stop() }
}
