package reviewpipe

import "errors"

// ErrUnsupportedFormat is returned when the file extension is not one
// of json, csv or xlsx. Batch-fatal: no rows are processed.
var ErrUnsupportedFormat = errors.New("reviewpipe: unsupported file format")

// ErrParseFailure is returned when a supported file cannot be decoded
// (corrupt bytes, missing header, wrong top-level shape). Batch-fatal.
var ErrParseFailure = errors.New("reviewpipe: parse failure")
