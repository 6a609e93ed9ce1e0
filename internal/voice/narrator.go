// Package voice reads text aloud by synthesizing it in chunks and playing
// each chunk in turn.
package voice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Vdnsh/groq-qna/internal/domain"
	"github.com/Vdnsh/groq-qna/internal/playback"
	"github.com/Vdnsh/groq-qna/pkg/textchunk"
)

const (
	// DefaultChunkSize is the rune length above which text is split up front.
	DefaultChunkSize = 1000
	// MinChunkSize stops the too-long fallback from splitting further.
	MinChunkSize = 100
)

// Synthesizer turns text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *domain.SpeechRequest) (*domain.Audio, error)
}

// Player plays one resource at a time.
type Player interface {
	Play(res playback.Resource) <-chan error
	Stop()
}

// Option configures a Narrator.
type Option func(*Narrator)

// WithChunkSize overrides DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(nr *Narrator) {
		if n > 0 {
			nr.chunkSize = n
		}
	}
}

// WithProgress registers fn, called before each chunk is synthesized.
func WithProgress(fn func(index, total int, chunk string)) Option {
	return func(nr *Narrator) { nr.progress = fn }
}

// WithNormalize strips markdown markers and emoji from each chunk before it
// is synthesized. Off by default: text goes upstream as given.
func WithNormalize() Option {
	return func(nr *Narrator) { nr.normalize = true }
}

// WithResourceFactory overrides how synthesized audio becomes a playable resource.
func WithResourceFactory(fn func(audio *domain.Audio) (playback.Resource, error)) Option {
	return func(nr *Narrator) { nr.newResource = fn }
}

// Narrator speaks text through a Synthesizer and a Player.
type Narrator struct {
	synth       Synthesizer
	player      Player
	chunkSize   int
	normalize   bool
	progress    func(index, total int, chunk string)
	newResource func(audio *domain.Audio) (playback.Resource, error)
	logger      *slog.Logger

	// speaking serializes Speak calls; mu guards cancel.
	speaking sync.Mutex
	mu       sync.Mutex
	cancel   context.CancelFunc
}

// NewNarrator creates a Narrator.
func NewNarrator(synth Synthesizer, player Player, logger *slog.Logger, opts ...Option) *Narrator {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Narrator{
		synth:       synth,
		player:      player,
		chunkSize:   DefaultChunkSize,
		newResource: fileResource,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Speak synthesizes and plays text, chunk by chunk, returning when the last
// chunk finishes. A newer Speak or Stop interrupts it with playback.ErrStopped.
func (n *Narrator) Speak(ctx context.Context, text, voice string) error {
	if n.normalize {
		text = NormalizeText(text)
	}
	if strings.TrimSpace(text) == "" {
		return domain.NewInvalidInputError("Text is required")
	}

	// interrupt the previous narration and wait for it to let go of the player
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	n.mu.Unlock()
	n.speaking.Lock()
	defer n.speaking.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	n.mu.Lock()
	n.cancel = cancel
	n.mu.Unlock()
	defer cancel()

	return n.speak(ctx, text, voice, n.chunkSize)
}

// Stop interrupts the current Speak, if any.
func (n *Narrator) Stop() {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.mu.Unlock()
	n.player.Stop()
}

func (n *Narrator) speak(ctx context.Context, text, voice string, limit int) error {
	chunks := []string{text}
	if utf8.RuneCountInString(text) > limit {
		chunks = textchunk.Split(text, limit)
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return playback.ErrStopped
		}
		if n.progress != nil {
			n.progress(i, len(chunks), chunk)
		}

		audio, err := n.synth.Synthesize(ctx, &domain.SpeechRequest{Text: chunk, Voice: voice})
		if err != nil {
			if ctx.Err() != nil {
				return playback.ErrStopped
			}
			if !IsTooLong(err) {
				return err
			}
			next, ok := shrink(chunk, limit)
			if !ok {
				return err
			}
			n.logger.Info("speech input too long, splitting", "runes", utf8.RuneCountInString(chunk), "limit", next)
			if err := n.speak(ctx, chunk, voice, next); err != nil {
				return err
			}
			continue
		}

		if err := n.play(ctx, audio); err != nil {
			return err
		}
	}
	return nil
}

// shrink returns the next, strictly smaller limit for a chunk the upstream
// rejected as too long. It fails once the limit would drop under
// MinChunkSize or the chunk has no sentence boundary left to split on.
func shrink(chunk string, limit int) (int, bool) {
	next := min(limit, utf8.RuneCountInString(chunk)) / 2
	if next < MinChunkSize {
		return 0, false
	}
	if pieces := textchunk.Split(chunk, next); len(pieces) < 2 {
		return 0, false
	}
	return next, true
}

func (n *Narrator) play(ctx context.Context, audio *domain.Audio) error {
	res, err := n.newResource(audio)
	if err != nil {
		return err
	}
	done := n.player.Play(res)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		n.player.Stop()
		<-done
		return playback.ErrStopped
	}
}

// IsTooLong reports whether err says the speech input exceeded a size limit.
func IsTooLong(err error) bool {
	if err == nil {
		return false
	}
	if domain.UpstreamStatus(err) == http.StatusRequestEntityTooLarge {
		return true
	}
	msg := err.Error()
	var de *domain.DomainError
	if errors.As(err, &de) {
		msg = de.UserMessage()
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "too long") ||
		strings.Contains(lower, "request too large") ||
		strings.Contains(lower, "tokens per day")
}

func fileResource(audio *domain.Audio) (playback.Resource, error) {
	return playback.NewFileResource(audio.Data, extension(audio.ContentType))
}

// extension maps an audio content type to a file extension.
func extension(contentType string) string {
	switch {
	case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
		return "mp3"
	case strings.Contains(contentType, "ogg"):
		return "ogg"
	case strings.Contains(contentType, "flac"):
		return "flac"
	default:
		return "wav"
	}
}
