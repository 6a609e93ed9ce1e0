package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mattn/go-runewidth"

	"github.com/Vdnsh/groq-qna/internal/domain/entity"
)

// previewWidth is the display width of the last-message preview
const previewWidth = 48

var (
	// Tree node styles
	chatStyle      = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // Gray
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("229")) // Yellow
	highlightStyle = lipgloss.NewStyle().Foreground(ColorSpeech).Bold(true)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)
)

// RenderChatTree renders chats (already ordered newest first) as a tree.
// The active chat is marked.
func RenderChatTree(chats []entity.Chat, activeID string, now time.Time) string {
	if len(chats) == 0 {
		return keyStyle.Render("No chats found")
	}

	root := tree.Root(keyStyle.Render("Chats"))
	for _, chat := range chats {
		root.Child(buildChatNode(chat, chat.ID == activeID, now))
	}
	return root.String()
}

func buildChatNode(chat entity.Chat, active bool, now time.Time) *tree.Tree {
	label := chatStyle.Render(chat.Title)
	if active {
		label = highlightStyle.Render("* ") + label + keyStyle.Render(" (active)")
	}

	node := tree.New().Root(label)
	node.Child(formatKeyValue("ID:", chat.ID))
	node.Child(formatKeyValue("Messages:", valueStyle.Render(fmt.Sprintf("%d", len(chat.Messages)))))
	node.Child(formatKeyValue("Updated:", RelativeTime(time.UnixMilli(chat.UpdatedAt), now)))
	if last, ok := chat.LastMessage(); ok {
		node.Child(formatKeyValue("Last:", fmt.Sprintf("%s %s", keyStyle.Render(string(last.Role)+":"), Preview(last.Content, previewWidth))))
	}
	return node
}

// formatKeyValue formats a key-value pair
func formatKeyValue(key, value string) string {
	return fmt.Sprintf("%s %s",
		keyStyle.Render(key),
		value,
	)
}

// Preview flattens s to one line and truncates it to width display cells.
func Preview(s string, width int) string {
	flat := strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(flat, width, "…")
}

// RelativeTime formats t relative to now ("just now", "5m ago", "3h ago"),
// falling back to a date after a week.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.Local().Format("2006-01-02")
	}
}

// RenderChatSummary renders a summary line
func RenderChatSummary(count int) string {
	label := "chats"
	if count == 1 {
		label = "chat"
	}
	summary := fmt.Sprintf("Total: %s %s",
		highlightStyle.Render(fmt.Sprintf("%d", count)),
		keyStyle.Render(label),
	)
	return summaryStyle.Render(summary)
}
