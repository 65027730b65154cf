package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// printTable renders rows under headers with a rounded border.
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}

			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
}

// printFields renders label/value pairs as an aligned block.
func printFields(w io.Writer, title string, pairs ...string) {
	labels := make([]string, 0, len(pairs)/2)
	values := make([]string, 0, len(pairs)/2)

	for i := 0; i+1 < len(pairs); i += 2 {
		labels = append(labels, faintStyle.Render(pairs[i]))
		values = append(values, pairs[i+1])
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().PaddingRight(2).Render(lipgloss.JoinVertical(lipgloss.Left, labels...)),
		lipgloss.JoinVertical(lipgloss.Left, values...),
	)

	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, body)
}
