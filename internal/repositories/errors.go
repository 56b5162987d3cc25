package repositories

import "errors"

// ErrNotFound is returned by updates and deletes that matched no row.
// Single-row reads return (nil, nil) instead.
var ErrNotFound = errors.New("record not found")
