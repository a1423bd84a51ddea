package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/initbot"
	"github.com/mattn/go-runewidth"
)

// Column widths of the list table, in terminal cells.
const (
	maxIDWidth     = 14
	maxStatusWidth = 22
	maxTitleWidth  = 70
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := initbot.InitiativeFilter{Limit: c.Limit}
	if c.Status != "" {
		filter.Status = &c.Status
	}
	if c.Year != "" {
		filter.Year = &c.Year
	}
	if c.Title != "" {
		filter.Title = &c.Title
	}

	initiatives, err := deps.Initiatives.FindInitiatives(deps.Ctx, filter)
	if err != nil {
		return deps.fail(err)
	}

	if len(initiatives) == 0 {
		fmt.Fprintln(deps.Stdout, "No initiatives found. Use 'initbot fetch' to download them.")
		return nil
	}

	fmt.Fprint(deps.Stdout, FormatTable(initiatives))
	return nil
}

// FormatTable renders initiatives as aligned columns. Widths are measured
// in terminal cells so umlauts and wide characters line up.
func FormatTable(initiatives []*initbot.Initiative) string {
	rows := [][]string{{"ID", "STATUS", "SUBMITTED", "TITLE"}}
	for _, i := range initiatives {
		rows = append(rows, []string{
			runewidth.Truncate(i.ID, maxIDWidth, "…"),
			runewidth.Truncate(i.Status, maxStatusWidth, "…"),
			i.SubmittedOn,
			runewidth.Truncate(i.Title, maxTitleWidth, "…"),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for col, cell := range row {
			widths[col] = max(widths[col], runewidth.StringWidth(cell))
		}
	}

	var sb strings.Builder
	for _, row := range rows {
		for col, cell := range row {
			if col == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[col]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
