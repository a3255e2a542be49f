package ui

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

// TitleWidth is the widest a title cell is printed in a list.
const TitleWidth = 50

const cellEllipsis = "..."

// Column is one table column. Cells wider than MaxWidth are cut with an
// ellipsis; zero means no limit.
type Column struct {
	Header   string
	MaxWidth int
}

// TableBuilder collects rows and renders an aligned table.
type TableBuilder struct {
	columns []Column
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(columns []Column, capacity int) *TableBuilder {
	return &TableBuilder{columns: columns, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row. Cells beyond the last column are dropped.
func (builder *TableBuilder) AddRow(cells ...string) {
	builder.rows = append(builder.rows, cells)
}

// String renders the table.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.columns, builder.rows)
}

// FormatTable renders columns and rows as an aligned table. Cells are put
// on one line and cut to their column's MaxWidth before widths are measured.
func FormatTable(columns []Column, rows [][]string) string {
	headers := make([]string, len(columns))
	widths := make([]int, len(columns))
	for i, column := range columns {
		headers[i] = formatCell(column.Header, column.MaxWidth)
		widths[i] = ansi.PrintableRuneWidth(headers[i])
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > len(columns) {
			row = row[:len(columns)]
		}
		formatted := make([]string, len(row))
		for i, cell := range row {
			formatted[i] = formatCell(cell, columns[i].MaxWidth)
			if width := ansi.PrintableRuneWidth(formatted[i]); width > widths[i] {
				widths[i] = width
			}
		}
		cells = append(cells, formatted)
	}

	var builder strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			builder.WriteString(cell)
			if i == len(row)-1 {
				builder.WriteByte('\n')
				continue
			}
			padding := widths[i] - ansi.PrintableRuneWidth(cell)
			builder.WriteString(strings.Repeat(" ", padding+2))
		}
	}

	writeRow(headers)
	for _, row := range cells {
		writeRow(row)
	}
	return builder.String()
}

// TruncateCell flattens value onto one line and cuts it to max visible
// columns, ending in an ellipsis. ANSI sequences do not count toward the
// width. A max of zero or less leaves the width alone.
func TruncateCell(value string, max int) string {
	return formatCell(value, max)
}

func formatCell(value string, max int) string {
	value = singleLine(value)
	if max <= 0 || ansi.PrintableRuneWidth(value) <= max {
		return value
	}
	if max <= len(cellEllipsis) {
		return cellEllipsis[:max]
	}
	return truncate.StringWithTail(value, uint(max), cellEllipsis)
}

func singleLine(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}
