package reviewpipe

import "unicode/utf8"

// maxSourceLen bounds the source field, matching the persistence
// schema's column width.
const maxSourceLen = 100

// validateRow applies the schema constraints to a normalized review.
// It returns nil when the row is valid; otherwise one RowError per
// violated field. It never panics across this boundary: the caller
// wraps unexpected failures into a generic row error.
func validateRow(rowNum int, raw RawRow, rev Review) []RowError {
	var errs []RowError

	fieldErr := func(field, msg string, offending any) {
		errs = append(errs, RowError{
			RowNumber: rowNum,
			FieldPath: field,
			Message:   msg,
			Offending: offending,
			Raw:       raw,
		})
	}

	if rev.Importance != nil && *rev.Importance < 1 {
		fieldErr("importance", "значение должно быть не меньше 1", raw.Get("importance"))
	}
	if rev.Source != nil && utf8.RuneCountInString(*rev.Source) > maxSourceLen {
		fieldErr("source", "длина не должна превышать 100 символов", raw.Get("source"))
	}
	if rev.Rating != nil && *rev.Rating < 0 {
		fieldErr("rating", "значение должно быть не меньше 0", raw.Get("rating"))
	}
	if rev.MaxRating != nil && *rev.MaxRating < 0 {
		fieldErr("max_rating", "значение должно быть не меньше 0", raw.Get("max_rating"))
	}
	// normalized_rating is computed, not read from the row, so the
	// offending value is the computed number.
	if rev.NormalizedRating < 0 || rev.NormalizedRating > 100 {
		fieldErr("normalized_rating", "значение должно быть от 0 до 100", rev.NormalizedRating)
	}

	return errs
}

// emptyRowError builds the distinct error for a row with no meaningful
// data. Such rows are tallied separately and excluded from the result.
func emptyRowError(rowNum int, raw RawRow) RowError {
	return RowError{
		RowNumber: rowNum,
		Message:   "не содержит значимых данных, не загружена",
		Raw:       raw,
	}
}
