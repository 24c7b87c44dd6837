// Package reviewpipe turns an uploaded spreadsheet of user-authored
// product reviews into validated, normalized review records.
//
// Supported formats:
//   - .json: UTF-8 text, top-level array of flat objects
//   - .csv:  UTF-8 text, first line is the header row
//   - .xlsx: OOXML spreadsheet, first worksheet, first row is the header
//
// The pipeline tolerates malformed rows without aborting the batch:
// every row is normalized and validated independently, and failures
// are collected into a per-row error report. Only format-level
// failures (unsupported extension, corrupt file, missing header) are
// batch-fatal.
//
// Usage:
//
//	pipe := reviewpipe.New(reviewpipe.Config{})
//	result := pipe.Ingest(ctx, "reviews.csv", data)
//	fmt.Println(result.SuccessCount, "of", result.TotalRows, "rows imported")
package reviewpipe

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Pipeline is the review ingestion engine. It holds no per-call state:
// concurrent Ingest calls are independent.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Detect returns the upload format based on file extension
// (case-insensitive). Any other extension is ErrUnsupportedFormat.
func (p *Pipeline) Detect(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Decode parses the file bytes into an ordered sequence of raw rows.
// Decoding stays entirely in memory. Failures wrap ErrParseFailure and
// invalidate the whole upload.
func (p *Pipeline) Decode(format Format, data []byte) ([]RawRow, error) {
	var rows []RawRow
	var err error
	switch format {
	case FormatJSON:
		rows, err = decodeJSON(data)
	case FormatCSV:
		rows, err = decodeCSV(data)
	case FormatXLSX:
		rows, err = decodeXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return rows, nil
}

// Ingest runs the whole pipeline over one uploaded file: detect,
// decode, then normalize and validate each row. The result always
// carries the full counts and error list; no row's failure affects
// any other row.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte) *BatchResult {
	res := &BatchResult{
		Errors:  []string{},
		Reviews: []Review{},
	}

	if int64(len(data)) > p.cfg.MaxFileSize {
		res.Errors = append(res.Errors,
			fmt.Sprintf("Файл слишком большой: %d байт (максимум %d)", len(data), p.cfg.MaxFileSize))
		return res
	}

	format, err := p.Detect(filename)
	if err != nil {
		res.Errors = append(res.Errors, "Формат файла должен быть .json, .csv или .xlsx")
		return res
	}

	rows, err := p.Decode(format, data)
	if err != nil {
		res.Errors = append(res.Errors,
			fmt.Sprintf("Ошибка парсинга %s: %v", strings.ToUpper(string(format)), trimSentinel(err)))
		return res
	}

	res.TotalRows = len(rows)
	for i, raw := range rows {
		p.processRow(i+1, raw, res)
	}
	res.SuccessCount = len(res.Reviews)

	p.logger.Debug("batch ingested",
		"file", filename,
		"format", format,
		"total", res.TotalRows,
		"ok", res.SuccessCount,
		"empty", res.EmptyRows,
		"errors", len(res.Errors))

	return res
}

// ProcessRow normalizes and validates a single row outside of a batch.
// Used for manual review entry, so hand-typed and uploaded rows get the
// same coercion and bounds. An empty row counts as a row error here.
func (p *Pipeline) ProcessRow(rowNum int, raw RawRow) (Review, []RowError) {
	raw = raw.CleanKeys()
	rev := Normalize(raw)
	if rev.IsEmpty() {
		return rev, []RowError{emptyRowError(rowNum, raw)}
	}
	if errs := validateRow(rowNum, raw, rev); len(errs) > 0 {
		return rev, errs
	}
	return rev, nil
}

// processRow normalizes and validates one row, accumulating into res.
// A panic inside row processing is converted into a row-local error:
// a coercion bug in one row must never abort the batch.
func (p *Pipeline) processRow(rowNum int, raw RawRow, res *BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("row processing panicked", "row", rowNum, "panic", r)
			res.Errors = append(res.Errors, RowError{
				RowNumber: rowNum,
				Message:   fmt.Sprintf("Непредвиденная ошибка: %v", r),
				Raw:       raw,
			}.Render())
		}
	}()

	raw = raw.CleanKeys()
	rev := Normalize(raw)

	if rev.IsEmpty() {
		res.EmptyRows++
		res.Errors = append(res.Errors, emptyRowError(rowNum, raw).Render())
		return
	}

	if errs := validateRow(rowNum, raw, rev); len(errs) > 0 {
		for _, e := range errs {
			res.Errors = append(res.Errors, e.Render())
		}
		return
	}

	res.Reviews = append(res.Reviews, rev)
}

// trimSentinel strips the wrapped sentinel prefix so user-facing
// messages carry only the human-readable cause.
func trimSentinel(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrParseFailure, ErrUnsupportedFormat} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}
