package playback

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
)

// ErrNoPlayer is returned when no supported audio player is installed.
var ErrNoPlayer = errors.New("no audio player found (install ffplay, afplay, aplay or paplay)")

// knownPlayers are probed in order by DetectExecSink.
var knownPlayers = []ExecSink{
	{Command: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{Command: "afplay"},
	{Command: "aplay", Args: []string{"-q"}},
	{Command: "paplay"},
}

// ExecSink plays resources with an external player command. The resource
// location is appended to Args.
type ExecSink struct {
	Command string
	Args    []string
}

// DetectExecSink returns the first known player found on PATH. A non-empty
// command overrides detection.
func DetectExecSink(command string, args ...string) (*ExecSink, error) {
	if command != "" {
		if _, err := exec.LookPath(command); err != nil {
			return nil, fmt.Errorf("audio player %q: %w", command, err)
		}
		return &ExecSink{Command: command, Args: args}, nil
	}
	for _, p := range knownPlayers {
		if _, err := exec.LookPath(p.Command); err == nil {
			sink := p
			return &sink, nil
		}
	}
	return nil, ErrNoPlayer
}

// Open starts the player process.
func (s *ExecSink) Open(res Resource) (Stream, error) {
	args := append(append([]string(nil), s.Args...), res.Location())
	cmd := exec.Command(s.Command, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", s.Command, err)
	}
	return &execStream{cmd: cmd}, nil
}

type execStream struct {
	cmd     *exec.Cmd
	stopped atomic.Bool
	once    sync.Once
}

// Wait blocks until the player exits. A killed player reports nil.
func (s *execStream) Wait() error {
	err := s.cmd.Wait()
	if s.stopped.Load() {
		return nil
	}
	if err != nil {
		return fmt.Errorf("audio player failed: %w", err)
	}
	return nil
}

func (s *execStream) Stop() {
	s.once.Do(func() {
		s.stopped.Store(true)
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	})
}
