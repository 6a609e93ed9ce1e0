package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/ui"
	"github.com/Vdnsh/groq-qna/internal/domain"
)

// statusCmd is the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "check the server and its upstream connection",
	Long: `Check that the server is reachable, has an API key configured and can
reach the upstream completion API.`,
	Example: `  $ voxctl status
  $ voxctl status -s http://qna.internal:8080`,
	RunE: runStatus,
}

func init() {
	statusCmd.SilenceUsage = true
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session setup failed")
	}
	defer s.Close()

	ui.PrintBold("Server: %s", s.client.Server())

	check, err := s.client.UpstreamCheck(ctx)
	if err != nil {
		ui.PrintErrorBox("Server unreachable", err.Error())
		return fmt.Errorf("status check failed")
	}

	if !check.HasAPIKey {
		ui.PrintErrorBox("API key missing", check.Error)
		return fmt.Errorf("status check failed")
	}
	if !check.Success {
		ui.PrintErrorBox("Upstream check failed", check.Error)
		return fmt.Errorf("status check failed")
	}

	ui.PrintSuccessBox(check.Message, check.Answer)
	return nil
}

// errorMessage prefers the user-facing message of domain errors
func errorMessage(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de.UserMessage()
	}
	return err.Error()
}
