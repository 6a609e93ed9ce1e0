package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/types"
	"github.com/Vdnsh/groq-qna/internal/cli/ui"
	"github.com/Vdnsh/groq-qna/internal/domain"
)

// voiceCmd is the voice command
var voiceCmd = &cobra.Command{
	Use:   "voice [name]",
	Short: "show or select the speech voice",
	Long: `Show or select the voice used to read answers aloud.

Without an argument you are prompted to pick from the server's voice list
(the built-in list is used when the server is unreachable). A name may be given
as the full voice ID or just its first word, case-insensitively.`,
	Example: `  # Pick interactively
  $ voxctl voice

  # Select directly
  $ voxctl voice gail
  $ voxctl voice Quinn-PlayAI`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVoice,
}

func init() {
	voiceCmd.SilenceUsage = true
}

func runVoice(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	voices := availableVoices(ctx, s)
	current := s.voice(ctx)

	var selected string
	if len(args) == 1 {
		selected = matchVoice(voices, args[0])
		if selected == "" {
			ui.PrintError("unknown voice: %s", args[0])
			fmt.Println("\nAvailable voices:")
			for _, v := range voices {
				fmt.Printf("  • %s (%s)\n", v.ID, v.Name)
			}
			return fmt.Errorf("invalid voice")
		}
	} else {
		options := make([]string, 0, len(voices))
		defaultOption := ""
		for _, v := range voices {
			opt := fmt.Sprintf("%s - %s", v.ID, v.Name)
			options = append(options, opt)
			if v.ID == current {
				defaultOption = opt
			}
		}

		var choice string
		prompt := &survey.Select{
			Message: "Choose a voice:",
			Options: options,
		}
		if defaultOption != "" {
			prompt.Default = defaultOption
		}
		if err := survey.AskOne(prompt, &choice); err != nil {
			return fmt.Errorf("voice prompt failed: %w", err)
		}
		selected, _, _ = strings.Cut(choice, " - ")
	}

	if err := s.store.SetSelectedVoice(ctx, selected); err != nil {
		ui.PrintError("failed to save voice: %v", err)
		return fmt.Errorf("voice save failed")
	}
	ui.PrintSuccess("Voice set to %s", selected)
	return nil
}

// availableVoices asks the server, falling back to the built-in list
func availableVoices(ctx context.Context, s *session) []types.Voice {
	resp, err := s.client.Voices(ctx)
	if err == nil && len(resp.Voices) > 0 {
		return resp.Voices
	}
	if err != nil {
		s.log.Warn("failed to fetch voices, using built-in list", "error", err)
	}
	out := make([]types.Voice, 0, len(domain.Voices))
	for _, v := range domain.Voices {
		out = append(out, types.Voice{ID: v.ID, Name: v.Name})
	}
	return out
}

// matchVoice resolves name to a voice ID: exact ID first, then the part
// before the dash ("gail" matches "Gail-PlayAI").
func matchVoice(voices []types.Voice, name string) string {
	name = strings.TrimSpace(name)
	for _, v := range voices {
		if strings.EqualFold(v.ID, name) {
			return v.ID
		}
	}
	for _, v := range voices {
		short, _, _ := strings.Cut(v.ID, "-")
		if strings.EqualFold(short, name) {
			return v.ID
		}
	}
	return ""
}
