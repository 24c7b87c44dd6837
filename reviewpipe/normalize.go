package reviewpipe

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// safeInt coerces an arbitrary cell value to an int. Empty and
// non-numeric values degrade to nil; coercion failures never
// propagate across this boundary.
func safeInt(val any) *int {
	switch v := val.(type) {
	case nil:
		return nil
	case int:
		return &v
	case int64:
		n := int(v)
		return &n
	case float64:
		// Spreadsheet and JSON numbers arrive as floats; truncate
		// toward zero the way int() does for numeric input.
		n := int(v)
		return &n
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// safeFloat coerces an arbitrary cell value to a float64, accepting a
// comma as the decimal separator ("4,7" → 4.7). Empty and non-numeric
// values degrade to nil.
func safeFloat(val any) *float64 {
	switch v := val.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// optString passes a cell value through as an optional string.
// Empty strings are treated as absent; scalar non-strings are
// rendered, so a numeric "source" column still imports.
func optString(val any) *string {
	switch v := val.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return &v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	case int:
		s := strconv.Itoa(v)
		return &s
	case int64:
		s := strconv.FormatInt(v, 10)
		return &s
	case bool:
		s := strconv.FormatBool(v)
		return &s
	default:
		return nil
	}
}

var (
	// "4.7/5", "4,7 из 5", "8 / 10 баллов": number, separator, number, tail.
	ratingPairRe = regexp.MustCompile(`(?i)^\s*(\d+(\.\d+)?)\s*(/|из)\s*(\d+(\.\d+)?)(.*)?$`)
	// "4.5", "4.5 stars": bare number with optional tail.
	ratingSingleRe = regexp.MustCompile(`^\s*(\d+(\.\d+)?)(.*)?$`)
)

// ParseRating parses a free-text rating expression into
// (rating, max_rating). Commas are normalized to periods first, so
// "4,7 из 5" and "4.7/5" both yield (4.7, 5). A bare number yields
// (n, nil); anything else yields (nil, nil).
func ParseRating(raw string) (*float64, *float64) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return nil, nil
	}
	if m := ratingPairRe.FindStringSubmatch(s); m != nil {
		r, err1 := strconv.ParseFloat(m[1], 64)
		mx, err2 := strconv.ParseFloat(m[4], 64)
		if err1 == nil && err2 == nil {
			return &r, &mx
		}
	}
	if m := ratingSingleRe.FindStringSubmatch(s); m != nil {
		if r, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &r, nil
		}
	}
	return nil, nil
}

// formatRatingSide renders one side of a synthesized raw_rating string.
func formatRatingSide(v *float64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Normalize coerces one raw row into the fixed Review shape. It never
// fails: every coercion failure degrades to an absent field.
//
// Rating resolution, in priority order:
//  1. raw_rating present, rating and max_rating both absent: parse
//     raw_rating to derive them.
//  2. raw_rating absent, rating or max_rating present: synthesize
//     raw_rating as "{rating|0}/{max_rating|0}".
//
// Explicit numeric rating/max_rating always win over the raw string,
// which also makes Normalize idempotent on already-normalized rows.
func Normalize(row RawRow) Review {
	row = row.CleanKeys()

	rev := Review{
		Importance:    safeInt(row.Get("importance")),
		Source:        optString(row.Get("source")),
		Text:          optString(row.Get("text")),
		Advantages:    optString(row.Get("advantages")),
		Disadvantages: optString(row.Get("disadvantages")),
		RawRating:     optString(row.Get("raw_rating")),
		Rating:        safeFloat(row.Get("rating")),
		MaxRating:     safeFloat(row.Get("max_rating")),
	}

	if rev.RawRating != nil {
		if rev.Rating == nil && rev.MaxRating == nil {
			rev.Rating, rev.MaxRating = ParseRating(*rev.RawRating)
		}
	} else if rev.Rating != nil || rev.MaxRating != nil {
		s := formatRatingSide(rev.Rating) + "/" + formatRatingSide(rev.MaxRating)
		rev.RawRating = &s
	}

	if rev.Rating != nil && rev.MaxRating != nil && *rev.MaxRating > 0 {
		// Half values round to the nearest even integer.
		rev.NormalizedRating = int(math.RoundToEven(*rev.Rating / *rev.MaxRating * 100))
	} else {
		rev.NormalizedRating = 0
	}

	return rev
}
