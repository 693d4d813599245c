package fsutil

import "errors"

// ErrEmptyOutputPath is returned when a write is requested with an empty output path.
var ErrEmptyOutputPath = errors.New("output path is empty")

// ErrEmptyInputPath is returned when a read is requested with an empty input path.
var ErrEmptyInputPath = errors.New("input path is empty")
