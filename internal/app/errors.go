package service

import (
	"errors"
)

// Sentinel kinds for pipeline errors.
var (
	ErrRunFailed = errors.New("pipeline run failed")
)
