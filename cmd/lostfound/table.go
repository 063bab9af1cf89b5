package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
)

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newTable(headers ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row(headers))
	return tw
}

func statusCell(status string, colorize bool) string {
	if !colorize {
		return status
	}
	switch status {
	case model.ItemStatusPending:
		return text.Colors{text.FgYellow}.Sprint(status)
	case model.ItemStatusActive:
		return text.Colors{text.FgGreen}.Sprint(status)
	case model.ItemStatusMatched:
		return text.Colors{text.FgBlue, text.Bold}.Sprint(status)
	default:
		return status
	}
}

func renderItems(items []model.Item, colorize bool) string {
	tw := newTable("ID", "Type", "Name", "Category", "Location", "Status", "Reporter", "Reported", "Matched with")
	for _, it := range items {
		tw.AppendRow(table.Row{
			it.ID,
			it.Type,
			it.Name,
			it.Category,
			it.Location,
			statusCell(it.Status, colorize),
			it.ReportedBy,
			it.Date.Local().Format("2006-01-02 15:04"),
			it.MatchedWith,
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "", "", "Total", len(items)})
	return tw.Render()
}

func renderMatches(matches []matching.Candidate) string {
	tw := newTable("ID", "Name", "Category", "Location", "Color", "Reporter", "Score")
	for _, m := range matches {
		tw.AppendRow(table.Row{m.ItemID, m.Name, m.Category, m.Location, m.Color, m.ReportedBy, fmt.Sprintf("%.2f", m.Score)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
