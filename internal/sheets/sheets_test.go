package sheets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}
	for in, want := range cases {
		assert.Equal(t, want, ColumnLetter(in), in)
	}
	assert.Equal(t, "", ColumnLetter(0))
	assert.Equal(t, "'Itikaf 2025'!C4", CellRange("Itikaf 2025", 4, 3))
	assert.Equal(t, "'Jum''at'!A1", CellRange("Jum'at", 1, 1))
}

func TestMemoryStore_FindAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.ReadRows(ctx, "doc", "tab")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	require.NoError(t, s.ClearAndWrite(ctx, "doc", "tab", [][]string{
		{"Kode", "Nama", "Malam 1"},
		{"IT-001", "Ahmad"},
		{"it-002", "Budi"},
	}))

	row, values, err := s.FindRow(ctx, "doc", "tab", 1, " IT-002 ")
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	assert.Equal(t, "Budi", values[1])

	_, _, err = s.FindRow(ctx, "doc", "tab", 1, "IT-999")
	assert.ErrorIs(t, err, ErrRowNotFound)

	require.NoError(t, s.UpdateCell(ctx, "doc", "tab", 3, 3, "✓"))
	require.NoError(t, s.AppendRow(ctx, "doc", "tab", []string{"IT-003", "Citra"}))

	rows, err := s.ReadRows(ctx, "doc", "tab")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"it-002", "Budi", "✓"}, rows[2])
	assert.Equal(t, map[string]int{"kode": 1, "nama": 2, "malam 1": 3}, HeaderIndex(rows))
}

func TestMemoryStore_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.ClearAndWrite(ctx, "d", "t", [][]string{{"a"}}))

	rows, _ := s.ReadRows(ctx, "d", "t")
	rows[0][0] = "mutated"

	again, _ := s.ReadRows(ctx, "d", "t")
	assert.Equal(t, "a", again[0][0])
}
