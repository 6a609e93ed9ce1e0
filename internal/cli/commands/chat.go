package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/tui"
	"github.com/Vdnsh/groq-qna/internal/cli/ui"
	"github.com/Vdnsh/groq-qna/internal/playback"
)

var (
	chatNew   bool
	chatID    string
	chatSpeak bool
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start interactive chat",
	Long: `Start an interactive chat session.

Features:
  • 多轮对话，历史保存在本地 chat store
  • answers can be read aloud with the selected voice
  • 终端 TUI`,
	Example: `  # Continue the active chat
  $ voxctl chat

  # Start a new chat and read every answer aloud
  $ voxctl chat --new --speak

  # Keyboard controls:
  • Enter 发送 • ctrl+s 朗读最后的回答 • ctrl+x 停止
  • tab 切换 voice • ctrl+n new chat • Esc 退出`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNew, "new", false, "Start a new chat")
	chatCmd.Flags().StringVar(&chatID, "id", "", "Open the chat with this ID")
	chatCmd.Flags().BoolVar(&chatSpeak, "speak", false, "Read every answer aloud")

	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Println("\nRun 'voxctl chat' to start interactive session.")
		return fmt.Errorf("invalid arguments")
	}
	if chatNew && chatID != "" {
		ui.PrintError("--new and --id cannot be used together")
		return fmt.Errorf("invalid flags")
	}

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	ctx := context.Background()
	chat, err := s.resolveChat(ctx, chatID, chatNew)
	if err != nil {
		ui.PrintError("failed to open chat: %v", err)
		return fmt.Errorf("chat open failed")
	}

	ui.PrintChatBanner(chat.Title, s.client.Server())

	deps := tui.Deps{
		Store:     s.store,
		API:       s.client,
		Voice:     s.voice(ctx),
		AutoSpeak: chatSpeak || s.cfg.AutoSpeak,
	}

	// chat still works without a player, only speaking is disabled
	narrator, controller, err := s.narrator()
	switch {
	case err == nil:
		deps.Speaker = narrator
		deps.Playing = controller.IsPlaying
	case errors.Is(err, playback.ErrNoPlayer):
		ui.PrintWarning("%v; speech disabled", err)
	default:
		ui.PrintWarning("audio player unavailable: %v; speech disabled", err)
	}

	if ok, err := s.client.Ready(ctx); err != nil {
		ui.PrintWarning("server %s unreachable: %v", s.client.Server(), err)
	} else if !ok {
		ui.PrintWarning("server %s has no API key configured, questions will fail", s.client.Server())
	}

	program := tui.NewChatProgram(deps, chat)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
