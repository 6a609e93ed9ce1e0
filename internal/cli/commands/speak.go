package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/ui"
	"github.com/Vdnsh/groq-qna/internal/playback"
	"github.com/Vdnsh/groq-qna/internal/voice"
)

var (
	speakFile          string
	speakVoice         string
	speakStripMarkdown bool
)

// speakCmd is the speak command
var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "read text aloud",
	Long: `Synthesize text with the server's /api/tts and play it.

Long text is split at sentence boundaries and played chunk by chunk; a chunk the
server rejects as too long is split further. Without text or --file the last
answer of the active chat is read. Press ctrl+c to stop.`,
	Example: `  $ voxctl speak "Hello from the terminal"
  $ voxctl speak -f notes.txt --voice gail
  $ voxctl speak --strip-markdown
  $ voxctl speak`,
	RunE: runSpeak,
}

func init() {
	speakCmd.Flags().StringVarP(&speakFile, "file", "f", "", "Read the text from a file")
	speakCmd.Flags().StringVar(&speakVoice, "voice", "", "Voice to use (default: selected voice)")
	speakCmd.Flags().BoolVar(&speakStripMarkdown, "strip-markdown", false, "Remove markdown markers and emoji before speaking")

	speakCmd.SilenceUsage = true
}

func runSpeak(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	text, err := speakText(ctx, s, args)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("nothing to speak")
	}

	v := s.voice(ctx)
	if speakVoice != "" {
		if v = matchVoice(availableVoices(ctx, s), speakVoice); v == "" {
			ui.PrintError("unknown voice: %s", speakVoice)
			return fmt.Errorf("invalid voice")
		}
	}

	opts := []voice.Option{voice.WithProgress(func(index, total int, chunk string) {
		if total > 1 {
			ui.PrintInfo("Speaking part %d/%d: %s", index+1, total, ui.Preview(chunk, 50))
		}
	})}
	if speakStripMarkdown {
		opts = append(opts, voice.WithNormalize())
	}
	narrator, _, err := s.narrator(opts...)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("no audio player")
	}

	ui.PrintInfo("Speaking with %s...", v)
	err = narrator.Speak(ctx, text, v)
	switch {
	case err == nil:
		ui.PrintSuccess("Done")
		return nil
	case errors.Is(err, playback.ErrStopped):
		ui.PrintWarning("Stopped")
		return nil
	default:
		ui.PrintError("speech failed: %s", errorMessage(err))
		return fmt.Errorf("speech failed")
	}
}

// speakText picks the text from args, --file, or the active chat's last answer
func speakText(ctx context.Context, s *session, args []string) (string, error) {
	if speakFile != "" {
		data, err := os.ReadFile(speakFile)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	activeID, ok, err := s.store.ActiveChatID(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no text given and no active chat")
	}
	chat, err := s.store.Get(ctx, activeID)
	if err != nil {
		return "", err
	}
	last, ok := chat.LastAssistantMessage()
	if !ok {
		return "", fmt.Errorf("the active chat has no answer to read")
	}
	return last.Content, nil
}
