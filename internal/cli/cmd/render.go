package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dshills/keychord/internal/app"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func renderBindings(w io.Writer, bindings []app.BindingInfo) error {
	if len(bindings) == 0 {
		_, err := fmt.Fprintln(w, "no bindings")
		return err
	}

	rows := make([][]string, len(bindings))
	for i, b := range bindings {
		rows[i] = []string{b.Name, b.Keys, b.Action, strconv.FormatUint(b.Fires, 10)}
	}
	return renderTable(w, []string{"NAME", "KEYS", "ACTION", "FIRES"}, rows)
}
