package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/loader"
	"github.com/Vdnsh/groq-qna/internal/cli/ui"
	"github.com/Vdnsh/groq-qna/internal/domain/entity"
)

var exportOutput string

// exportCmd is the export command
var exportCmd = &cobra.Command{
	Use:   "export [chat-id]",
	Short: "export a chat as a YAML transcript",
	Long: `Export a chat as a YAML transcript (kind: ChatTranscript).
Without an ID the active chat is exported. Without --output the transcript is
written to stdout.`,
	Example: `  $ voxctl export > chat.yaml
  $ voxctl export 0192f1c4-... -o chat.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

// importCmd is the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "import a YAML transcript as a new chat",
	Long: `Import a YAML transcript (kind: ChatTranscript) as a new chat and make it active.

Example file:
  kind: ChatTranscript
  spec:
    title: Trip planning
    messages:
    - role: user
      content: Where should I go in May?
    - role: assistant
      content: Lisbon is lovely in May.`,
	Example: `  $ voxctl import chat.yaml`,
	Args:    cobra.ExactArgs(1),
	RunE:    runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the transcript to a file")

	exportCmd.SilenceUsage = true
	importCmd.SilenceUsage = true
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	id := ""
	if len(args) == 1 {
		id = args[0]
	} else {
		active, ok, err := s.store.ActiveChatID(ctx)
		if err != nil || !ok {
			ui.PrintError("no chat ID given and no active chat")
			return fmt.Errorf("export failed")
		}
		id = active
	}

	chat, err := s.store.Get(ctx, id)
	if err != nil {
		ui.PrintError("%s", errorMessage(err))
		return fmt.Errorf("export failed")
	}

	data, err := loader.FromChat(chat).Marshal()
	if err != nil {
		ui.PrintError("failed to encode transcript: %v", err)
		return fmt.Errorf("export failed")
	}

	if exportOutput == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportOutput, data, 0644); err != nil {
		ui.PrintError("failed to write file: %v", err)
		return fmt.Errorf("export failed")
	}
	ui.PrintSuccess("Exported '%s' to %s", chat.Title, exportOutput)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	file, err := loader.LoadFromFile(args[0])
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("import failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	chat, err := importTranscript(ctx, s, file)
	if err != nil {
		ui.PrintError("failed to import: %v", err)
		return fmt.Errorf("import failed")
	}

	ui.PrintSuccess("Imported '%s' (%d messages) as %s", chat.Title, len(chat.Messages), chat.ID)
	return nil
}

// importTranscript replays the transcript into a new chat.
// An explicit title wins over the one derived from the first question.
func importTranscript(ctx context.Context, s *session, file *loader.TranscriptFile) (*entity.Chat, error) {
	chat, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range file.NewMessages() {
		if _, err := s.store.AppendMessage(ctx, chat.ID, msg); err != nil {
			return nil, err
		}
	}
	if file.Spec.Title != "" {
		if _, err := s.store.Rename(ctx, chat.ID, file.Spec.Title); err != nil {
			return nil, err
		}
	}
	return s.store.Get(ctx, chat.ID)
}
