package sheets

import (
	"context"
	"sync"
)

// MemoryStore keeps spreadsheets in process. Used in tests and when no Google
// credentials are configured.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string][][]string)}
}

func (m *MemoryStore) tab(spreadsheetID, sheet string, create bool) ([][]string, bool) {
	doc, ok := m.docs[spreadsheetID]
	if !ok {
		if !create {
			return nil, false
		}
		doc = make(map[string][][]string)
		m.docs[spreadsheetID] = doc
	}
	rows, ok := doc[sheet]
	if !ok && create {
		doc[sheet] = [][]string{}
		return doc[sheet], true
	}
	return rows, ok
}

func (m *MemoryStore) ReadRows(_ context.Context, spreadsheetID, sheet string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.tab(spreadsheetID, sheet, false)
	if !ok {
		return nil, ErrSheetNotFound
	}
	return copyRows(rows), nil
}

func (m *MemoryStore) FindRow(ctx context.Context, spreadsheetID, sheet string, keyCol int, key string) (int, []string, error) {
	rows, err := m.ReadRows(ctx, spreadsheetID, sheet)
	if err != nil {
		return 0, nil, err
	}
	return findInRows(rows, keyCol, key)
}

func (m *MemoryStore) UpdateCell(_ context.Context, spreadsheetID, sheet string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tab(spreadsheetID, sheet, false)
	if !ok {
		return ErrSheetNotFound
	}
	for len(rows) < row {
		rows = append(rows, []string{})
	}
	r := rows[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	rows[row-1] = r
	m.docs[spreadsheetID][sheet] = rows
	return nil
}

func (m *MemoryStore) AppendRow(_ context.Context, spreadsheetID, sheet string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tab(spreadsheetID, sheet, false)
	if !ok {
		return ErrSheetNotFound
	}
	m.docs[spreadsheetID][sheet] = append(rows, append([]string(nil), values...))
	return nil
}

func (m *MemoryStore) ClearAndWrite(_ context.Context, spreadsheetID, sheet string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tab(spreadsheetID, sheet, true)
	m.docs[spreadsheetID][sheet] = copyRows(rows)
	return nil
}

func (m *MemoryStore) EnsureSheet(_ context.Context, spreadsheetID, sheet string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tab(spreadsheetID, sheet, true)
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
