package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/Vdnsh/groq-qna/internal/cli/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// RenderLogsTable renders performance records as a table
func RenderLogsTable(records []types.LogRecord) string {
	if len(records) == 0 {
		return keyStyle.Render("No performance logs")
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.StartTime.Local().Format("15:04:05"),
			r.Type,
			coloredStatus(r.Status),
			formatDuration(r.Duration),
			formatDetail(r),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(keyStyle).
		Headers("TIME", "TYPE", "STATUS", "DURATION", "DETAIL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.String()
}

func coloredStatus(status string) string {
	switch status {
	case "success":
		return color.GreenString(status)
	case "pending":
		return color.YellowString(status)
	case "error":
		return color.RedString(status)
	default:
		return status
	}
}

func formatDuration(ms *float64) string {
	if ms == nil {
		return "-"
	}
	if *ms >= 1000 {
		return strconv.FormatFloat(*ms/1000, 'f', 2, 64) + "s"
	}
	return strconv.FormatFloat(*ms, 'f', 0, 64) + "ms"
}

func formatDetail(r types.LogRecord) string {
	if r.Error != "" {
		return Preview(r.Error, 40)
	}
	switch {
	case r.Tokens != nil:
		return fmt.Sprintf("%d tokens", r.Tokens.Total)
	case r.AudioSize != nil:
		return FormatBytes(*r.AudioSize)
	}
	return ""
}

// FormatBytes formats n as B, KB or MB
func FormatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
