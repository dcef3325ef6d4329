// Package match clusters raw per-platform records into identity groups
// using fuzzy name similarity and a disjoint-set over record indices.
package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/internal/domain/normalize"
)

// DefaultThreshold is the similarity (0-100) at or above which two records
// are considered the same person.
const DefaultThreshold = 88

// maxSimilarity is the score for an exact match.
const maxSimilarity = 100

// Matcher computes pairwise record similarity and forms clusters by
// transitive closure of matches. Safe for concurrent reads; Cluster itself
// is single-threaded by design.
type Matcher struct {
	threshold float64
	lev       *metrics.Levenshtein
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithThreshold overrides the match threshold. Values outside (0, 100]
// are ignored.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold > 0 && threshold <= maxSimilarity {
			m.threshold = threshold
		}
	}
}

// New creates a Matcher with default configuration.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		threshold: DefaultThreshold,
		lev:       metrics.NewLevenshtein(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the configured match threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// compareKey is the precomputed comparison material for one record.
type compareKey struct {
	handle string // normalized handle
	sorted string // token-sorted normalized name, falling back to handle
}

func makeKey(r model.RawRecord) compareKey {
	name := normalize.Name(r.Name)
	handle := normalize.Name(r.Handle)
	base := name
	if base == "" {
		base = handle
	}
	tokens := strings.Fields(base)
	sort.Strings(tokens)
	return compareKey{handle: handle, sorted: strings.Join(tokens, " ")}
}

// Similarity scores two records in [0, 100]. A record whose normalized
// name and handle are both empty never matches anything (score 0). Equal
// non-empty normalized handles are an exact match. Otherwise the score is
// the edit-distance similarity of the token-sorted normalized names, so
// "Jane Doe" and "Doe Jane" score 100. Symmetric by construction.
func (m *Matcher) Similarity(a, b model.RawRecord) float64 {
	return m.similarity(makeKey(a), makeKey(b))
}

func (m *Matcher) similarity(a, b compareKey) float64 {
	if a.sorted == "" || b.sorted == "" {
		return 0
	}
	if a.handle != "" && a.handle == b.handle {
		return maxSimilarity
	}
	return strutil.Similarity(a.sorted, b.sorted, m.lev) * maxSimilarity
}

// Cluster partitions record indices into disjoint identity groups: every
// input index appears in exactly one group. Matched pairs are merged in a
// union-find, so groups are the transitive closure of direct matches;
// chained merges are accepted behavior, not an error. Output is
// order-canonical: groups sorted by their smallest member, members
// ascending. O(n²) pairwise comparisons; batches are bounded (hundreds to
// low thousands), so no blocking pre-pass is applied here.
func (m *Matcher) Cluster(records []model.RawRecord) [][]int {
	keys := make([]compareKey, len(records))
	for i, r := range records {
		keys[i] = makeKey(r)
	}

	uf := newUnionFind(len(records))
	for i := 0; i < len(records); i++ {
		if keys[i].sorted == "" {
			continue // insufficient signal: always a singleton
		}
		for j := i + 1; j < len(records); j++ {
			if m.similarity(keys[i], keys[j]) >= m.threshold {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]int, len(records))
	for i := range records {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	clusters := make([][]int, 0, len(groups))
	for _, members := range groups {
		sort.Ints(members)
		clusters = append(clusters, members)
	}
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i][0] < clusters[j][0]
	})
	return clusters
}
