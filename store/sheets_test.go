package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/testutil"
	"github.com/example/sheetlease/types"
)

// newFakeSheets starts an HTTP server impersonating the Sheets API and
// returns a SheetStore pointed at it.
func newFakeSheets(t *testing.T, handler http.HandlerFunc) *SheetStore {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(srv.URL))
	testutil.RequireNoError(t, err)

	s, err := NewSheetStore(svc, "board-spreadsheet", "", logger.NewNoOpLogger())
	testutil.RequireNoError(t, err)
	return s
}

func TestNewSheetStore_Validation(t *testing.T) {
	svc := &sheets.Service{}

	if _, err := NewSheetStore(nil, "id", "", nil); err == nil {
		t.Error("expected error for nil service")
	}
	if _, err := NewSheetStore(svc, "", "", nil); err == nil {
		t.Error("expected error for empty spreadsheet ID")
	}

	s, err := NewSheetStore(svc, "id", "", nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, DefaultSheetName, s.sheet)
}

func TestSheetStore_ListRows(t *testing.T) {
	s := newFakeSheets(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"range":"Sheet1!A1:D2","values":[["alice","printer","","2024-01-02T10:00:00Z"],["bob","lab-3"]]}`))
	})

	rows, err := s.ListRows(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertLen(t, rows, 2)
	testutil.AssertEqual(t, "alice", rows[0][0])
	// Ragged trailing cells come back padded to the board width.
	testutil.AssertLen(t, rows[1], RowWidth)
	testutil.AssertEqual(t, "", rows[1][2])
}

func TestSheetStore_ListRows_APIFailure(t *testing.T) {
	s := newFakeSheets(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":503}}`, http.StatusServiceUnavailable)
	})

	_, err := s.ListRows(context.Background())
	testutil.AssertErrorIs(t, err, ErrUnavailable)
}

func TestSheetStore_AppendRow(t *testing.T) {
	var inputOption string
	s := newFakeSheets(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":append") {
			t.Errorf("expected append call, got %s", r.URL.Path)
		}
		inputOption = r.URL.Query().Get("valueInputOption")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"updates":{"updatedRange":"Sheet1!A5:D5"}}`))
	})

	h, err := s.AppendRow(context.Background(), []string{"alice", "printer", "", "2024-01-02T10:00:00Z"})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, types.RowHandle(4), h)

	// RAW keeps the acquired-at cell a verbatim string. USER_ENTERED
	// would let the sheet coerce it into a date serial, and the
	// locale-formatted read-back would no longer parse as a claim time.
	testutil.AssertEqual(t, "RAW", inputOption)
}

func TestSheetStore_AppendRow_MissingUpdatedRange(t *testing.T) {
	s := newFakeSheets(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	_, err := s.AppendRow(context.Background(), []string{"alice", "printer", "t", ""})
	testutil.AssertErrorIs(t, err, ErrUnavailable)
}

func TestSheetStore_UpdateRow(t *testing.T) {
	var requestedPath, inputOption string
	s := newFakeSheets(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		inputOption = r.URL.Query().Get("valueInputOption")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"updatedCells":4}`))
	})

	err := s.UpdateRow(context.Background(), 2, []string{"alice", "", "", ""})
	testutil.AssertNoError(t, err)
	// Handle 2 addresses sheet row 3 in A1 notation.
	testutil.AssertContains(t, requestedPath, "A3:D3")
	testutil.AssertEqual(t, "RAW", inputOption)
}

func TestSheetStore_UpdateRow_NegativeHandle(t *testing.T) {
	s := newFakeSheets(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected for a negative handle")
	})

	err := s.UpdateRow(context.Background(), -1, []string{"alice", "", "", ""})
	testutil.AssertErrorIs(t, err, ErrStaleHandle)
}

func TestParseRowNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{"SimpleRange", "Sheet1!A5:D5", 5, false},
		{"SingleCell", "Sheet1!A12", 12, false},
		{"QuotedSheetName", "'Connection Board'!A3:D3", 3, false},
		{"NoSheetPrefix", "A7:D7", 7, false},
		{"NoDigits", "Sheet1!A:D", 0, true},
		{"Empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRowNumber(tt.input)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, tt.expected, got)
		})
	}
}
