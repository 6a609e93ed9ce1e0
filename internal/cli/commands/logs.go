package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/ui"
)

var logsClear bool

// logsCmd is the logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "show the server's performance log",
	Long: `Show the timing records the server keeps for completion and speech calls,
newest first. Use --clear to empty the log.`,
	Example: `  $ voxctl logs
  $ voxctl logs --clear`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&logsClear, "clear", false, "Clear the performance log")

	logsCmd.SilenceUsage = true
}

func runLogs(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	if logsClear {
		resp, err := s.client.ClearLogs(ctx)
		if err != nil {
			ui.PrintError("failed to clear logs: %s", errorMessage(err))
			return fmt.Errorf("clear failed")
		}
		ui.PrintSuccess("%s", resp.Message)
		return nil
	}

	resp, err := s.client.Logs(ctx)
	if err != nil {
		ui.PrintError("failed to fetch logs: %s", errorMessage(err))
		return fmt.Errorf("logs failed")
	}

	fmt.Println(ui.RenderLogsTable(resp.Logs))
	ui.PrintInfo("%d records", resp.Count)
	return nil
}
