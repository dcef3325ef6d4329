package report

import (
	"errors"
)

// Sentinel kinds for report errors.
var (
	ErrWriteReport = errors.New("write report failed")
)
