// Package export serializes the expense list to CSV.
package export

import (
	"bytes"
	"errors"
	"strings"

	"expenses/internal/core"
)

// Filename is the name offered for the download.
const Filename = "expenses.csv"

// ContentType is sent with the download.
const ContentType = "text/csv; charset=utf-8"

var ErrNothingToExport = errors.New("no expenses to export")

// Header is the first CSV row.
var Header = []string{"Title", "Amount", "Date", "Category", "Notes"}

// Rows returns one row per record in store order, without the header.
func Rows(list []core.Expense) [][]string {
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{e.Title, e.Amount.String(), e.Date.String(), e.Category, e.Notes})
	}
	return rows
}

// CSV renders the header and every record. Every field is quoted, which
// encoding/csv does not do, so the rows are written by hand.
func CSV(list []core.Expense) ([]byte, error) {
	if len(list) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	writeRow(&buf, Header)
	for _, row := range Rows(list) {
		buf.WriteByte('\n')
		writeRow(&buf, row)
	}
	return buf.Bytes(), nil
}

func writeRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
}
