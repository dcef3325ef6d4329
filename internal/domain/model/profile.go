package model

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// profileNamespace seeds deterministic profile IDs. Generated once for this
// project; changing it would re-key every profile.
var profileNamespace = uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")

// CanonicalProfile is the merged, cross-platform representation of one
// person. It owns at least one raw record, and every raw record in a batch
// belongs to exactly one profile.
type CanonicalProfile struct {
	ID          string              `json:"id"`
	PrimaryName string              `json:"primary_name"`
	Country     string              `json:"country,omitempty"`
	Handles     map[Platform]string `json:"handles"`
	Records     []RawRecord         `json:"records"`
	// Notes carries aggregation warnings, e.g. a same-platform duplicate
	// that was dropped in favor of a higher-rated record.
	Notes []string `json:"notes,omitempty"`
}

// PlatformCount returns the number of distinct platforms the profile
// appears on.
func (p CanonicalProfile) PlatformCount() int {
	return len(p.Handles)
}

// Record returns the surviving raw record for the given platform.
func (p CanonicalProfile) Record(platform Platform) (RawRecord, bool) {
	for _, r := range p.Records {
		if r.Platform == platform {
			return r, true
		}
	}
	return RawRecord{}, false
}

// NewProfileID derives a stable profile ID from the set of merged handles.
// The ID depends only on the sorted platform:handle pairs, so it survives
// re-runs and input reordering.
func NewProfileID(handles map[Platform]string) string {
	keys := make([]string, 0, len(handles))
	for platform, handle := range handles {
		keys = append(keys, string(platform)+":"+handle)
	}
	sort.Strings(keys)
	return uuid.NewSHA1(profileNamespace, []byte(strings.Join(keys, "|"))).String()
}
