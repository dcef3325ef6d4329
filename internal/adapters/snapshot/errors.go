package snapshot

import (
	"errors"
)

// Sentinel kinds for snapshot errors.
var (
	ErrBadDir      = errors.New("bad snapshot directory")
	ErrNoSnapshot  = errors.New("no snapshot")
	ErrBadSnapshot = errors.New("malformed snapshot")
)
