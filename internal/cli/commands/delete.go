package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/ui"
	"github.com/Vdnsh/groq-qna/internal/domain"
)

var deleteForce bool

// deleteCmd is the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "delete a chat",
	Long: `Delete a chat and all of its messages.

By default, you will be prompted to confirm the deletion. Use --force to skip confirmation.
Deleting the active chat makes the newest remaining chat active.`,
	Example: `  # Delete a chat
  $ voxctl delete 0192f1c4-...

  # Force delete without confirmation
  $ voxctl delete 0192f1c4-... --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")

	deleteCmd.SilenceUsage = true
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	chat, err := s.store.Get(ctx, id)
	if domain.IsNotFound(err) {
		ui.PrintError("chat '%s' not found", id)
		return fmt.Errorf("chat not found")
	}
	if err != nil {
		ui.PrintError("failed to load chat: %v", err)
		return fmt.Errorf("deletion failed")
	}

	// Confirm deletion unless --force
	if !deleteForce {
		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete chat '%s' (%d messages)?", chat.Title, len(chat.Messages)),
		}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return fmt.Errorf("confirmation prompt failed: %w", err)
		}
		if !confirm {
			ui.PrintInfo("Deletion cancelled")
			return nil
		}
	}

	if _, err := s.store.Delete(ctx, id); err != nil {
		ui.PrintError("failed to delete: %v", err)
		return fmt.Errorf("deletion failed")
	}

	ui.PrintSuccess("Successfully deleted chat '%s'", chat.Title)
	return nil
}
