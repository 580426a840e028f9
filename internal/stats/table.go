package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth keeps long phrases from stretching the table.
const maxCellWidth = 24

// formatTable lays out rows in aligned columns. Widths are terminal cell
// widths, so wide and accented characters line up.
func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	cells := make([][]string, 0, len(rows)+1)
	if len(headers) > 0 {
		cells = append(cells, headers)
	}
	for _, row := range rows {
		clipped := make([]string, colCount)
		for i := range clipped {
			if i < len(row) {
				clipped[i] = runewidth.Truncate(row[i], maxCellWidth, "…")
			}
		}
		cells = append(cells, clipped)
	}

	widths := make([]int, colCount)
	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(cells))
	for _, row := range cells {
		var b strings.Builder
		for i, width := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(padCell(cell, width, rightAlignCols[i]))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - runewidth.StringWidth(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}
