package reviewpipe

import (
	"fmt"
	"strings"
)

// Format identifies an upload file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// RawRow is one uninterpreted record decoded from an uploaded file,
// keyed by source-format column headers. Keys preserves the source
// column order so error dumps read the same way the file does.
type RawRow struct {
	Keys  []string
	Cells map[string]any
}

// NewRawRow returns an empty row ready for Set calls.
func NewRawRow() RawRow {
	return RawRow{Cells: make(map[string]any)}
}

// Set stores a cell value, appending the key on first sight.
func (r *RawRow) Set(key string, val any) {
	if r.Cells == nil {
		r.Cells = make(map[string]any)
	}
	if _, ok := r.Cells[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Cells[key] = val
}

// Get returns the cell value for key, or nil when absent.
func (r RawRow) Get(key string) any {
	if r.Cells == nil {
		return nil
	}
	return r.Cells[key]
}

// CleanKeys returns a copy of the row with surrounding whitespace
// stripped from every key. Headers in user files routinely carry
// stray padding; cleaning happens once per row before normalization.
func (r RawRow) CleanKeys() RawRow {
	out := NewRawRow()
	for _, k := range r.Keys {
		out.Set(strings.TrimSpace(k), r.Cells[k])
	}
	return out
}

// String renders the row in source column order for error messages.
func (r RawRow) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", k, r.Cells[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Review is a normalized review row: the fixed field shape every raw
// row is coerced into. Pointer fields distinguish "absent" from zero.
// NormalizedRating is always set, defaulting to 0 when the row carries
// no computable rating.
type Review struct {
	Importance       *int     `json:"importance"`
	Source           *string  `json:"source"`
	Text             *string  `json:"text"`
	Advantages       *string  `json:"advantages"`
	Disadvantages    *string  `json:"disadvantages"`
	RawRating        *string  `json:"raw_rating"`
	Rating           *float64 `json:"rating"`
	MaxRating        *float64 `json:"max_rating"`
	NormalizedRating int      `json:"normalized_rating"`
}

// IsEmpty reports whether the row carries no meaningful data: source,
// text, advantages, disadvantages, rating, max_rating and raw_rating
// all absent. Importance alone does not make a row meaningful.
func (r Review) IsEmpty() bool {
	return r.Source == nil &&
		r.Text == nil &&
		r.Advantages == nil &&
		r.Disadvantages == nil &&
		r.Rating == nil &&
		r.MaxRating == nil &&
		r.RawRating == nil
}

// RowError describes one constraint violation confined to one row.
type RowError struct {
	RowNumber int    // 1-based position in the decoded file
	FieldPath string // empty for row-level errors (empty row, unexpected failure)
	Message   string
	Offending any    // raw cell value that triggered the error
	Raw       RawRow // original row, for the user's reference
}

// Render formats the error the way the upload UI presents it: row
// number, field, message, offending value and the raw row dump, so the
// uploader can fix the source file without guessing.
func (e RowError) Render() string {
	if e.FieldPath == "" {
		return fmt.Sprintf("Строка #%d: %s. Данные: %s", e.RowNumber, e.Message, e.Raw)
	}
	return fmt.Sprintf("Строка #%d: поле '%s' — %s. В файле: «%v». Исходные данные: %s",
		e.RowNumber, e.FieldPath, e.Message, e.Offending, e.Raw)
}

// BatchResult is the aggregate outcome of one ingestion call.
// Counts are always populated: TotalRows is the number of decoded rows
// regardless of how many survived validation, and an empty Errors list
// is not required for partial success.
type BatchResult struct {
	SuccessCount int      `json:"success_count"`
	TotalRows    int      `json:"total_rows"`
	EmptyRows    int      `json:"empty_rows"`
	Errors       []string `json:"errors"`
	Reviews      []Review `json:"reviews"`
}
