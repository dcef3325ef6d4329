package ingest

import (
	"errors"
)

// Sentinel kinds for ingest errors.
var (
	ErrFetchFailed   = errors.New("source fetch failed")
	ErrBadPayload    = errors.New("malformed source payload")
	ErrUnknownSource = errors.New("unknown source")
)
