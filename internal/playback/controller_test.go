package playback

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResource struct {
	name     string
	released atomic.Int32
}

func (r *fakeResource) Location() string { return r.name }

func (r *fakeResource) Release() error {
	r.released.Add(1)
	return nil
}

type fakeStream struct {
	done chan error
	once sync.Once
}

func (s *fakeStream) Wait() error { return <-s.done }

func (s *fakeStream) Stop() {
	s.once.Do(func() { s.done <- nil })
}

func (s *fakeStream) finish(err error) {
	s.once.Do(func() { s.done <- err })
}

type fakeSink struct {
	mu      sync.Mutex
	streams []*fakeStream
	openErr error
}

func (k *fakeSink) Open(res Resource) (Stream, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.openErr != nil {
		return nil, k.openErr
	}
	s := &fakeStream{done: make(chan error, 1)}
	k.streams = append(k.streams, s)
	return s, nil
}

func (k *fakeSink) last() *fakeStream {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.streams[len(k.streams)-1]
}

func receive(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not settle")
		return nil
	}
}

func TestPlay_NaturalEnd(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(sink, nil)

	var ended, errored atomic.Int32
	c.OnEnded(func() { ended.Add(1) })
	c.OnError(func(error) { errored.Add(1) })

	res := &fakeResource{name: "a"}
	done := c.Play(res)
	assert.True(t, c.IsPlaying())

	sink.last().finish(nil)
	require.NoError(t, receive(t, done))

	assert.False(t, c.IsPlaying())
	assert.Equal(t, int32(1), ended.Load())
	assert.Equal(t, int32(0), errored.Load())
	assert.Equal(t, int32(1), res.released.Load())

	// subscribers are one-shot
	done = c.Play(&fakeResource{name: "b"})
	sink.last().finish(nil)
	require.NoError(t, receive(t, done))
	assert.Equal(t, int32(1), ended.Load())
}

func TestPlay_Error(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(sink, nil)

	boom := errors.New("device busy")
	var got error
	var ended atomic.Int32
	c.OnError(func(err error) { got = err })
	c.OnEnded(func() { ended.Add(1) })

	res := &fakeResource{name: "a"}
	done := c.Play(res)
	sink.last().finish(boom)

	assert.ErrorIs(t, receive(t, done), boom)
	assert.ErrorIs(t, got, boom)
	assert.Equal(t, int32(0), ended.Load())
	assert.Equal(t, int32(1), res.released.Load())
}

func TestPlay_SupersedesActive(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(sink, nil)

	var ended atomic.Int32
	c.OnEnded(func() { ended.Add(1) })

	first := &fakeResource{name: "first"}
	firstDone := c.Play(first)

	second := &fakeResource{name: "second"}
	secondDone := c.Play(second)

	assert.ErrorIs(t, receive(t, firstDone), ErrStopped)
	assert.Equal(t, int32(1), first.released.Load())
	assert.Equal(t, int32(0), second.released.Load())
	assert.True(t, c.IsPlaying())

	sink.last().finish(nil)
	require.NoError(t, receive(t, secondDone))
	// the earlier subscriber was cleared when the first playback was stopped
	assert.Equal(t, int32(0), ended.Load())
}

func TestStop_Active(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(sink, nil)

	var calls atomic.Int32
	c.OnEnded(func() { calls.Add(1) })
	c.OnError(func(error) { calls.Add(1) })

	res := &fakeResource{name: "a"}
	done := c.Play(res)
	c.Stop()

	assert.ErrorIs(t, receive(t, done), ErrStopped)
	assert.False(t, c.IsPlaying())
	assert.Equal(t, int32(1), res.released.Load())
	assert.Equal(t, int32(0), calls.Load())

	// stopping twice is harmless
	c.Stop()
	assert.Equal(t, int32(1), res.released.Load())
}

func TestStop_IdleKeepsSubscribers(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(sink, nil)

	var ended atomic.Int32
	c.OnEnded(func() { ended.Add(1) })
	c.Stop()

	done := c.Play(&fakeResource{name: "a"})
	sink.last().finish(nil)
	require.NoError(t, receive(t, done))
	assert.Equal(t, int32(1), ended.Load())
}

func TestPlay_OpenFailure(t *testing.T) {
	boom := errors.New("no device")
	sink := &fakeSink{openErr: boom}
	c := NewController(sink, nil)

	var got error
	c.OnError(func(err error) { got = err })

	res := &fakeResource{name: "a"}
	done := c.Play(res)
	assert.ErrorIs(t, receive(t, done), boom)
	assert.ErrorIs(t, got, boom)
	assert.Equal(t, int32(1), res.released.Load())
	assert.False(t, c.IsPlaying())
}

func TestUnsubscribe(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(sink, nil)

	var kept, dropped atomic.Int32
	c.OnEnded(func() { kept.Add(1) })
	unsubscribe := c.OnEnded(func() { dropped.Add(1) })
	unsubscribe()

	done := c.Play(&fakeResource{name: "a"})
	sink.last().finish(nil)
	require.NoError(t, receive(t, done))

	assert.Equal(t, int32(1), kept.Load())
	assert.Equal(t, int32(0), dropped.Load())
}

func TestFileResource(t *testing.T) {
	res, err := NewFileResource([]byte("RIFF"), "")
	require.NoError(t, err)

	data, err := os.ReadFile(res.Location())
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), data)
	assert.Contains(t, res.Location(), ".wav")

	require.NoError(t, res.Release())
	_, err = os.Stat(res.Location())
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, res.Release())
}
