package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/ui"
)

const version = "0.1.0"

// serverOverride replaces the configured server for one invocation
var serverOverride string

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "voxctl",
	Short:   "Groq Q&A voice chat CLI",
	Version: version,
	Long: `A command-line client for the Groq Q&A server. Chats are kept locally,
answers come from the server's /api/ask and can be read aloud through /api/tts.`,
	Example: `  # Point the client at a server
  $ voxctl config set-server http://localhost:8080

  # Start interactive chat, reading every answer aloud
  $ voxctl chat --speak

  # List saved chats
  $ voxctl list

  # Read a file aloud
  $ voxctl speak -f notes.txt

  # Get help on a specific command
  $ voxctl chat --help`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&serverOverride, "server", "s", "", "API server address (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(configCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("voxctl version %s\n", version)
}
