package report

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

var cellEscaper = strings.NewReplacer("|", `\|`)

// tableCell keeps a value on one line and escapes column separators
func tableCell(s string) string {
	return cellEscaper.Replace(strings.Join(strings.Fields(s), " "))
}

// markdownTable renders a GitHub-flavored Markdown table
func markdownTable(header []string, rows [][]string) string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(header)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = tableCell(c)
		}
		table.Append(cells)
	}
	table.Render()
	return b.String()
}
