package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"portal_backend/internal/config"
	"portal_backend/internal/logger"
)

const valueInputOption = "USER_ENTERED"

// GoogleStore talks to the Sheets v4 API with a service account.
type GoogleStore struct {
	srv *gsheets.Service
}

func NewGoogleStore(ctx context.Context, cfg config.GoogleConfig) (*GoogleStore, error) {
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, fmt.Errorf("google sheets: no service account credentials configured")
	}

	srv, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google sheets: create service: %w", err)
	}
	return &GoogleStore{srv: srv}, nil
}

func (s *GoogleStore) ReadRows(ctx context.Context, spreadsheetID, sheet string) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(spreadsheetID, quoteSheet(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, v := range raw {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func (s *GoogleStore) FindRow(ctx context.Context, spreadsheetID, sheet string, keyCol int, key string) (int, []string, error) {
	rows, err := s.ReadRows(ctx, spreadsheetID, sheet)
	if err != nil {
		return 0, nil, err
	}
	return findInRows(rows, keyCol, key)
}

func (s *GoogleStore) UpdateCell(ctx context.Context, spreadsheetID, sheet string, row, col int, value string) error {
	rng := CellRange(sheet, row, col)
	_, err := s.srv.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (s *GoogleStore) AppendRow(ctx context.Context, spreadsheetID, sheet string, values []string) error {
	_, err := s.srv.Spreadsheets.Values.Append(spreadsheetID, quoteSheet(sheet), &gsheets.ValueRange{
		Values: [][]interface{}{toInterfaces(values)},
	}).ValueInputOption(valueInputOption).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

func (s *GoogleStore) ClearAndWrite(ctx context.Context, spreadsheetID, sheet string, rows [][]string) error {
	if _, err := s.srv.Spreadsheets.Values.Clear(spreadsheetID, quoteSheet(sheet), &gsheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = toInterfaces(row)
	}
	_, err := s.srv.Spreadsheets.Values.Update(spreadsheetID, quoteSheet(sheet)+"!A1", &gsheets.ValueRange{
		Values: values,
	}).ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", sheet, err)
	}
	return nil
}

func (s *GoogleStore) EnsureSheet(ctx context.Context, spreadsheetID, sheet string) error {
	doc, err := s.srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			return nil
		}
	}

	_, err = s.srv.Spreadsheets.BatchUpdate(spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: sheet},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet, err)
	}
	logger.CtxInfo(ctx, "Spreadsheet tab created", "spreadsheet_id", spreadsheetID, "sheet", sheet)
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

var _ Store = (*GoogleStore)(nil)
