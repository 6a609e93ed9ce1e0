package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the command output and the chat TUI
const (
	ColorAccent  = lipgloss.Color("86")  // Cyan
	ColorDim     = lipgloss.Color("240") // Dark gray
	ColorSpeech  = lipgloss.Color("212") // Pink, anything read aloud
	ColorPrompt  = lipgloss.Color("63")
	ColorSuccess = lipgloss.Color("42")
	ColorError   = lipgloss.Color("196")
)

// Styles defines the lipgloss styles used in the CLI
var Styles = struct {
	Bold   lipgloss.Style
	Dim    lipgloss.Style
	Accent lipgloss.Style
	Speech lipgloss.Style
	Prompt lipgloss.Style
	Error  lipgloss.Style

	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold:   lipgloss.NewStyle().Bold(true),
	Dim:    lipgloss.NewStyle().Foreground(ColorDim),
	Accent: lipgloss.NewStyle().Foreground(ColorAccent),
	Speech: lipgloss.NewStyle().Foreground(ColorSpeech),
	Prompt: lipgloss.NewStyle().Foreground(ColorPrompt),
	Error:  lipgloss.NewStyle().Foreground(ColorError),

	// status boxes share the chat banner width
	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1).
		Width(60),
}
