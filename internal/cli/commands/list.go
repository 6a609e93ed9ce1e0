package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/ui"
)

// listCmd is the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list saved chats",
	Long: `List saved chats in a tree view, newest first.

The output includes:
  • chat title and ID
  • message count and last update
  • a preview of the last message
  • which chat is active`,
	Example: `  $ voxctl list`,
	RunE:    runList,
}

func init() {
	listCmd.SilenceUsage = true
}

func runList(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Printf("\nRun '%s --help' for usage.\n", cmd.CommandPath())
		return fmt.Errorf("invalid arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	chats, err := s.store.List(ctx)
	if err != nil {
		ui.PrintError("failed to list chats: %v", err)
		return fmt.Errorf("list failed")
	}
	activeID, _, err := s.store.ActiveChatID(ctx)
	if err != nil {
		ui.PrintError("failed to read active chat: %v", err)
		return fmt.Errorf("list failed")
	}

	fmt.Println(ui.RenderChatTree(chats, activeID, time.Now()))
	fmt.Println(ui.RenderChatSummary(len(chats)))
	return nil
}
