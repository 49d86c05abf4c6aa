// Package feed reads spreadsheet enrichment files. A column-name mapping
// binds named fields to header cells by exact text match; non-empty cells
// under unmapped, non-excluded headers are collected into a side attributes
// map so ad-hoc datasheet columns survive without a schema change.
package feed

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Options struct {
	// Sheet selects a worksheet by name; empty means the first sheet.
	Sheet string

	// HeaderRow is the 1-based row holding the column headers.
	HeaderRow int

	// ColumnMap maps field names to the header text that carries them.
	ColumnMap map[string]string

	// Exclude lists headers that must never land in Attributes.
	Exclude []string

	// WithAttributes collects unmapped columns into Row.Attributes.
	WithAttributes bool
}

type Row struct {
	Fields     map[string]string
	Attributes map[string]string
}

// Read loads the workbook and returns one Row per data row below the
// header. When a mapped header text appears in more than one column the
// first occurrence wins.
func Read(path string, opts Options) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	headerRow := opts.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}
	if len(rows) < headerRow {
		return nil, fmt.Errorf("sheet %q has no header row %d", sheet, headerRow)
	}

	header := rows[headerRow-1]
	columns := mapColumns(header, opts.ColumnMap)

	mappedHeaders := make(map[string]bool, len(opts.ColumnMap))
	for _, name := range opts.ColumnMap {
		mappedHeaders[name] = true
	}
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		excluded[strings.TrimSpace(name)] = true
	}

	var data []Row
	for _, cells := range rows[headerRow:] {
		row := Row{Fields: make(map[string]string, len(columns))}

		for idx, field := range columns {
			if idx < len(cells) {
				row.Fields[field] = cells[idx]
			}
		}

		if opts.WithAttributes {
			row.Attributes = make(map[string]string)
			for idx, cell := range cells {
				if cell == "" || idx >= len(header) {
					continue
				}
				name := header[idx]
				if mappedHeaders[name] || excluded[strings.TrimSpace(name)] {
					continue
				}
				row.Attributes[name] = cell
			}
		}

		data = append(data, row)
	}

	return data, nil
}

func mapColumns(header []string, columnMap map[string]string) map[int]string {
	columns := make(map[int]string)
	claimed := make(map[string]bool)

	for idx, cell := range header {
		for field, mapped := range columnMap {
			if cell == mapped && !claimed[field] {
				columns[idx] = field
				claimed[field] = true
				break
			}
		}
	}

	return columns
}
