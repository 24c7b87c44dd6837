package reviewpipe

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into the first sheet of a new workbook and
// returns the serialized file.
func buildWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestIngest_XLSX(t *testing.T) {
	// WHAT: A spreadsheet with a header row and two data rows imports.
	// WHY: XLSX is the main format review vendors hand over.
	data := buildWorkbook(t,
		[]any{"source", "text", "rating", "max_rating"},
		[]any{"Ozon", "Отличный товар", 4.5, 5},
		[]any{"WB", "Нормально", "3", "5"},
	)

	res := New(Config{}).Ingest(context.Background(), "reviews.xlsx", data)
	if res.TotalRows != 2 || res.SuccessCount != 2 {
		t.Fatalf("counts: got %d/%d, errors=%v", res.TotalRows, res.SuccessCount, res.Errors)
	}
	if got := res.Reviews[0].NormalizedRating; got != 90 {
		t.Errorf("row 1 normalized_rating: got %d, want 90", got)
	}
	if got := res.Reviews[1].NormalizedRating; got != 60 {
		t.Errorf("row 2 normalized_rating: got %d, want 60", got)
	}
}

func TestIngest_XLSXPositionalAlignment(t *testing.T) {
	// WHAT: Header index i maps to cell index i; short rows leave the
	// trailing columns absent.
	// WHY: Spreadsheets omit trailing empty cells rather than writing "".
	data := buildWorkbook(t,
		[]any{"source", "text", "rating"},
		[]any{"Ozon", "Хорошо"},
	)

	res := New(Config{}).Ingest(context.Background(), "reviews.xlsx", data)
	if res.SuccessCount != 1 {
		t.Fatalf("success_count: got %d, errors=%v", res.SuccessCount, res.Errors)
	}
	rev := res.Reviews[0]
	if rev.Rating != nil {
		t.Errorf("rating: got %v, want absent", *rev.Rating)
	}
	if rev.Text == nil || *rev.Text != "Хорошо" {
		t.Errorf("text: got %v", rev.Text)
	}
}

func TestIngest_XLSXPaddedHeaders(t *testing.T) {
	// WHAT: Header cells with stray spaces still map to the right fields.
	// WHY: Hand-edited spreadsheets carry invisible padding.
	data := buildWorkbook(t,
		[]any{" source ", "rating ", " max_rating"},
		[]any{"Ozon", 4, 5},
	)

	res := New(Config{}).Ingest(context.Background(), "reviews.xlsx", data)
	if res.SuccessCount != 1 {
		t.Fatalf("success_count: got %d, errors=%v", res.SuccessCount, res.Errors)
	}
	if got := res.Reviews[0].NormalizedRating; got != 80 {
		t.Errorf("normalized_rating: got %d, want 80", got)
	}
}

func TestIngest_XLSXEmptyHeader(t *testing.T) {
	// WHAT: A workbook whose first row is blank is batch-fatal.
	// WHY: Without headers no cell can be attributed to a field.
	data := buildWorkbook(t,
		[]any{"", "", ""},
		[]any{"Ozon", "text", 4},
	)

	res := New(Config{}).Ingest(context.Background(), "reviews.xlsx", data)
	if res.TotalRows != 0 || len(res.Errors) != 1 {
		t.Fatalf("got total=%d errors=%v", res.TotalRows, res.Errors)
	}
	if !strings.Contains(res.Errors[0], "заголовков") {
		t.Errorf("unexpected error: %s", res.Errors[0])
	}
}

func TestIngest_XLSXCorrupt(t *testing.T) {
	// WHAT: Bytes that are not a zip archive fail as a parse error.
	// WHY: Renamed .doc files show up as .xlsx uploads all the time.
	res := New(Config{}).Ingest(context.Background(), "reviews.xlsx", []byte("not a workbook"))
	if res.TotalRows != 0 || len(res.Errors) != 1 {
		t.Fatalf("got total=%d errors=%v", res.TotalRows, res.Errors)
	}
	if !strings.Contains(res.Errors[0], "Ошибка парсинга XLSX") {
		t.Errorf("unexpected error: %s", res.Errors[0])
	}
}
