package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/ui"
)

// renameCmd is the rename command
var renameCmd = &cobra.Command{
	Use:   "rename <chat-id> <title>",
	Short: "rename a chat",
	Long: `Rename a chat. An empty title resets it to "New Chat".`,
	Example: `  $ voxctl rename 0192f1c4-... "Trip planning"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRename,
}

func init() {
	renameCmd.SilenceUsage = true
}

func runRename(cmd *cobra.Command, args []string) error {
	id := args[0]
	title := strings.Join(args[1:], " ")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	ok, err := s.store.Rename(ctx, id, title)
	if err != nil {
		ui.PrintError("failed to rename: %v", err)
		return fmt.Errorf("rename failed")
	}
	if !ok {
		ui.PrintError("chat '%s' not found", id)
		return fmt.Errorf("chat not found")
	}

	chat, err := s.store.Get(ctx, id)
	if err != nil {
		ui.PrintError("failed to load chat: %v", err)
		return fmt.Errorf("rename failed")
	}
	ui.PrintSuccess("Renamed chat to '%s'", chat.Title)
	return nil
}
