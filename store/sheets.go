package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/types"
)

const (
	// DefaultSheetName is the tab holding the connection board.
	DefaultSheetName = "Sheet1"

	// valueInputRaw writes cells verbatim. The acquired-at cell must
	// survive a read-back byte for byte; letting the sheet coerce it
	// into a locale-formatted date serial would break the re-read.
	valueInputRaw = "RAW"

	// insertRows makes appends grow the data region instead of
	// overwriting whatever follows it.
	insertRows = "INSERT_ROWS"
)

// NewSheetsService builds an authenticated Sheets API client from
// service-account credentials JSON.
func NewSheetsService(ctx context.Context, credentialsJSON []byte) (*sheets.Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("store: parsing credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("store: building sheets client: %w", err)
	}
	return svc, nil
}

// SheetStore is a RowStore backed by one tab of a Google Sheet.
// All API failures surface as ErrUnavailable; the sheet offers no
// transactions, so no stronger guarantee is claimed.
type SheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
	logger        logger.Logger
}

// NewSheetStore returns a SheetStore over the given spreadsheet tab.
// An empty sheetName selects DefaultSheetName.
func NewSheetStore(svc *sheets.Service, spreadsheetID, sheetName string, log logger.Logger) (*SheetStore, error) {
	if svc == nil {
		return nil, errors.New("store: sheets service cannot be nil")
	}
	if spreadsheetID == "" {
		return nil, errors.New("store: spreadsheet ID cannot be empty")
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SheetStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheet:         sheetName,
		logger:        log.WithComponent("store"),
	}, nil
}

// readRange covers the four board columns for the whole data region.
func (s *SheetStore) readRange() string {
	return s.sheet + "!A:D"
}

// rowRange addresses the four cells of a single row by handle.
func (s *SheetStore) rowRange(handle types.RowHandle) string {
	n := int(handle) + 1 // A1 notation is 1-based
	return fmt.Sprintf("%s!A%d:D%d", s.sheet, n, n)
}

// ListRows implements RowStore.
func (s *SheetStore) ListRows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange()).Context(ctx).Do()
	if err != nil {
		s.logger.Warnw("Sheet read failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, padRow(row))
	}
	return rows, nil
}

// AppendRow implements RowStore. The handle is recovered from the range
// the API reports the row landed at, which under concurrent appends from
// other processes is the only truth available.
func (s *SheetStore) AppendRow(ctx context.Context, row []string) (types.RowHandle, error) {
	vr := &sheets.ValueRange{Values: [][]any{cellsOf(row)}}
	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.sheet, vr).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
	if err != nil {
		s.logger.Warnw("Sheet append failed", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return 0, fmt.Errorf("%w: append reported no updated range", ErrUnavailable)
	}

	rowNum, err := parseRowNumber(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return types.RowHandle(rowNum - 1), nil
}

// UpdateRow implements RowStore.
func (s *SheetStore) UpdateRow(ctx context.Context, handle types.RowHandle, row []string) error {
	if handle < 0 {
		return fmt.Errorf("%w: negative handle %d", ErrStaleHandle, handle)
	}

	vr := &sheets.ValueRange{Values: [][]any{cellsOf(row)}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rowRange(handle), vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		s.logger.Warnw("Sheet update failed", "row", handle, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// cellsOf widens a padded string row into the API's cell type.
func cellsOf(row []string) []any {
	padded := padRow(row)
	cells := make([]any, len(padded))
	for i, c := range padded {
		cells[i] = c
	}
	return cells
}

// parseRowNumber extracts the 1-based row number from an A1-notation
// range such as "Sheet1!A5:D5" or "'My Board'!A12:D12".
func parseRowNumber(a1 string) (int, error) {
	ref := a1
	if idx := strings.LastIndexByte(a1, '!'); idx >= 0 {
		ref = a1[idx+1:]
	}
	if idx := strings.IndexByte(ref, ':'); idx >= 0 {
		ref = ref[:idx]
	}

	start := 0
	for start < len(ref) && (ref[start] < '0' || ref[start] > '9') {
		start++
	}
	end := start
	n := 0
	for end < len(ref) && ref[end] >= '0' && ref[end] <= '9' {
		n = n*10 + int(ref[end]-'0')
		end++
	}
	if end == start || n == 0 {
		return 0, fmt.Errorf("no row number in range %q", a1)
	}
	return n, nil
}
