// Package playback plays one audio resource at a time and notifies
// subscribers when it ends or fails.
package playback

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// ErrStopped is delivered to a Play channel whose playback was stopped or
// superseded by a newer Play.
var ErrStopped = errors.New("playback stopped")

// Stream is one running playback.
type Stream interface {
	// Wait blocks until playback finishes and reports a playback failure.
	Wait() error
	// Stop interrupts playback. It is safe to call more than once.
	Stop()
}

// Sink starts playback of a resource.
type Sink interface {
	Open(res Resource) (Stream, error)
}

type session struct {
	res     Resource
	stream  Stream
	stopped bool
}

type endedSub struct {
	id int
	fn func()
}

type errorSub struct {
	id int
	fn func(error)
}

// Controller owns the single active playback.
//
// Subscribers are one-shot: they fire for the next playback that ends or
// fails and are then cleared. Stop clears them without firing.
type Controller struct {
	sink   Sink
	logger *slog.Logger

	mu      sync.Mutex
	active  *session
	ended   []endedSub
	errored []errorSub
	nextID  int
}

// NewController creates a controller playing through sink.
func NewController(sink Sink, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{sink: sink, logger: logger}
}

// Play stops any active playback and starts res. The returned channel
// receives exactly one value: nil when playback ends, the playback error,
// or ErrStopped. By then res has been released and the subscribers notified.
func (c *Controller) Play(res Resource) <-chan error {
	done := make(chan error, 1)

	c.mu.Lock()
	c.stopLocked()

	stream, err := c.sink.Open(res)
	if err != nil {
		_, errored := c.takeSubscribersLocked()
		c.mu.Unlock()

		c.release(res)
		for _, sub := range errored {
			sub.fn(err)
		}
		done <- err
		return done
	}

	s := &session{res: res, stream: stream}
	c.active = s
	c.mu.Unlock()

	go c.monitor(s, done)
	return done
}

func (c *Controller) monitor(s *session, done chan<- error) {
	err := s.stream.Wait()

	c.mu.Lock()
	if s.stopped || c.active != s {
		c.mu.Unlock()
		done <- ErrStopped
		return
	}
	c.active = nil
	ended, errored := c.takeSubscribersLocked()
	c.mu.Unlock()

	c.release(s.res)
	if err != nil {
		c.logger.Warn("playback failed", "location", s.res.Location(), "error", err)
		for _, sub := range errored {
			sub.fn(err)
		}
	} else {
		for _, sub := range ended {
			sub.fn()
		}
	}
	done <- err
}

// Stop interrupts the active playback, releases its resource and clears
// subscribers without notifying them. It does nothing when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	s := c.active
	if s == nil {
		return
	}
	s.stopped = true
	c.active = nil
	s.stream.Stop()
	c.release(s.res)
	c.ended = nil
	c.errored = nil
}

// IsPlaying reports whether a playback is active.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// OnEnded registers fn for the next natural end of playback.
func (c *Controller) OnEnded(fn func()) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.ended = append(c.ended, endedSub{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.ended = slices.DeleteFunc(c.ended, func(s endedSub) bool { return s.id == id })
	}
}

// OnError registers fn for the next playback failure.
func (c *Controller) OnError(fn func(error)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.errored = append(c.errored, errorSub{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.errored = slices.DeleteFunc(c.errored, func(s errorSub) bool { return s.id == id })
	}
}

func (c *Controller) takeSubscribersLocked() ([]endedSub, []errorSub) {
	ended, errored := c.ended, c.errored
	c.ended, c.errored = nil, nil
	return ended, errored
}

func (c *Controller) release(res Resource) {
	if err := res.Release(); err != nil {
		c.logger.Warn("failed to release audio resource", "location", res.Location(), "error", err)
	}
}
