package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	green  = lipgloss.Color("#2f7d4f")
	red    = lipgloss.Color("#c0392b")
	yellow = lipgloss.Color("#d4a017")
	muted  = lipgloss.Color("#66706b")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(green)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(green)
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(yellow)
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(red)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(muted)
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// statusStyle colours a status word
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "ok", "healthy", "valid":
		return okStyle
	case "empty", "not_in_category", "degraded":
		return warnStyle
	default:
		return failStyle
	}
}
