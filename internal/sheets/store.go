package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRowNotFound   = errors.New("row not found")
	ErrSheetNotFound = errors.New("sheet not found")
)

// Store treats a spreadsheet tab as a table of string rows. Row and column
// numbers are 1-based, as shown in the spreadsheet UI.
//
// There is no locking: two writers updating the same tab can overwrite each other.
type Store interface {
	ReadRows(ctx context.Context, spreadsheetID, sheet string) ([][]string, error)
	// FindRow scans column keyCol for key (trimmed, case-insensitive).
	FindRow(ctx context.Context, spreadsheetID, sheet string, keyCol int, key string) (int, []string, error)
	UpdateCell(ctx context.Context, spreadsheetID, sheet string, row, col int, value string) error
	AppendRow(ctx context.Context, spreadsheetID, sheet string, values []string) error
	ClearAndWrite(ctx context.Context, spreadsheetID, sheet string, rows [][]string) error
	// EnsureSheet creates the tab when it does not exist yet.
	EnsureSheet(ctx context.Context, spreadsheetID, sheet string) error
}

// ColumnLetter converts a 1-based column number to A1 notation (1 -> A, 27 -> AA).
func ColumnLetter(col int) string {
	if col < 1 {
		return ""
	}
	var sb []byte
	for col > 0 {
		col--
		sb = append([]byte{byte('A' + col%26)}, sb...)
		col /= 26
	}
	return string(sb)
}

// CellRange returns the A1 reference of a single cell on sheet.
func CellRange(sheet string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", quoteSheet(sheet), ColumnLetter(col), row)
}

func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

func findInRows(rows [][]string, keyCol int, key string) (int, []string, error) {
	want := strings.ToLower(strings.TrimSpace(key))
	if want == "" || keyCol < 1 {
		return 0, nil, ErrRowNotFound
	}
	for i, row := range rows {
		if keyCol-1 < len(row) && strings.ToLower(strings.TrimSpace(row[keyCol-1])) == want {
			return i + 1, row, nil
		}
	}
	return 0, nil, ErrRowNotFound
}

// HeaderIndex maps lowercased header names of the first row to 1-based columns.
func HeaderIndex(rows [][]string) map[string]int {
	idx := map[string]int{}
	if len(rows) == 0 {
		return idx
	}
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		if name != "" {
			idx[name] = i + 1
		}
	}
	return idx
}
