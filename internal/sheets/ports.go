// Package sheets mirrors the expense list into a spreadsheet.
package sheets

import "context"

// RowsWriter replaces the whole content of a sheet with rows.
type RowsWriter interface {
	ReplaceRows(ctx context.Context, sheet string, rows [][]string) error
}
