package catalog

import "errors"

// ErrNotFound is returned when a product, review or directory entry does
// not exist or belongs to another user.
var ErrNotFound = errors.New("catalog: not found")

// ErrInvalidInput is returned when request input fails validation.
var ErrInvalidInput = errors.New("catalog: invalid input")
