package match_test

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/talentradar/talentradar/internal/domain/match"
	"github.com/talentradar/talentradar/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(name, handle string, platform model.Platform) model.RawRecord {
	return model.RawRecord{Name: name, Handle: handle, Platform: platform, Rating: 1500, Rank: 1}
}

// clusterKeys renders clusters as order-independent sets of record keys so
// runs over shuffled input can be compared.
func clusterKeys(records []model.RawRecord, clusters [][]int) []string {
	out := make([]string, 0, len(clusters))
	for _, c := range clusters {
		keys := make([]string, 0, len(c))
		for _, i := range c {
			keys = append(keys, records[i].Key())
		}
		sort.Strings(keys)
		out = append(out, strings.Join(keys, ","))
	}
	sort.Strings(out)
	return out
}

func TestSimilarity(t *testing.T) {
	Convey("Given a matcher with default threshold", t, func() {
		m := match.New()

		Convey("Token order does not matter", func() {
			a := rec("Jane Doe", "jdoe", model.PlatformCodeforces)
			b := rec("Doe Jane", "jdoe2", model.PlatformLeetCode)
			So(m.Similarity(a, b), ShouldEqual, 100)
		})

		Convey("Similarity is symmetric", func() {
			a := rec("Gennady Korotkevich", "tourist", model.PlatformCodeforces)
			b := rec("Genady Korotkevich", "tourist_", model.PlatformAtCoder)
			So(m.Similarity(a, b), ShouldEqual, m.Similarity(b, a))
		})

		Convey("Equal normalized handles are an exact match", func() {
			a := rec("", "jdoe", model.PlatformKaggle)
			b := rec("Jane Doe", "JDoe", model.PlatformCodeforces)
			So(m.Similarity(a, b), ShouldEqual, 100)
		})

		Convey("Unrelated names score low", func() {
			a := rec("Jane Doe", "jdoe", model.PlatformCodeforces)
			b := rec("Wei Zhang", "wzhang", model.PlatformAtCoder)
			So(m.Similarity(a, b), ShouldBeLessThan, match.DefaultThreshold)
		})

		Convey("A record with no name and no handle never matches", func() {
			empty := rec("", "", model.PlatformCodeforces)
			other := rec("Jane Doe", "jdoe", model.PlatformLeetCode)
			So(m.Similarity(empty, other), ShouldEqual, 0)
			So(m.Similarity(empty, empty), ShouldEqual, 0)
		})

		Convey("Punctuation-only names count as empty", func() {
			a := rec("???", "", model.PlatformCodeforces)
			b := rec("???", "", model.PlatformAtCoder)
			So(m.Similarity(a, b), ShouldEqual, 0)
		})
	})
}

func TestCluster(t *testing.T) {
	Convey("Given a batch of raw records", t, func() {
		m := match.New()
		records := []model.RawRecord{
			rec("Jane Doe", "jdoe", model.PlatformCodeforces),
			rec("Doe Jane", "jdoe2", model.PlatformLeetCode),
			rec("Wei Zhang", "wzhang", model.PlatformAtCoder),
			rec("", "", model.PlatformKaggle),
		}

		Convey("Every index lands in exactly one cluster", func() {
			clusters := m.Cluster(records)
			seen := make(map[int]int)
			for _, c := range clusters {
				for _, i := range c {
					seen[i]++
				}
			}
			So(seen, ShouldHaveLength, len(records))
			for _, n := range seen {
				So(n, ShouldEqual, 1)
			}
		})

		Convey("Permuted names merge, strangers stay apart", func() {
			clusters := m.Cluster(records)
			So(clusterKeys(records, clusters), ShouldResemble, []string{
				"atcoder:wzhang",
				"codeforces:jdoe,leetcode:jdoe2",
				"kaggle:",
			})
		})

		Convey("The empty record is always a singleton", func() {
			clusters := m.Cluster(records)
			for _, c := range clusters {
				for _, i := range c {
					if records[i].Handle == "" && records[i].Name == "" {
						So(c, ShouldHaveLength, 1)
					}
				}
			}
		})
	})
}

func TestClusterTransitivity(t *testing.T) {
	Convey("Given a chain a~b, b~c where a and c alone fall below threshold", t, func() {
		m := match.New()
		records := []model.RawRecord{
			rec("Maria Santos", "a1", model.PlatformCodeforces),
			rec("Maria Santoz", "b1", model.PlatformAtCoder),
			rec("Mario Santoz", "c1", model.PlatformLeetCode),
		}

		Convey("All three end in one cluster via transitive closure", func() {
			So(m.Similarity(records[0], records[1]), ShouldBeGreaterThanOrEqualTo, match.DefaultThreshold)
			So(m.Similarity(records[1], records[2]), ShouldBeGreaterThanOrEqualTo, match.DefaultThreshold)
			So(m.Similarity(records[0], records[2]), ShouldBeLessThan, match.DefaultThreshold)

			clusters := m.Cluster(records)
			So(clusters, ShouldHaveLength, 1)
			So(clusters[0], ShouldResemble, []int{0, 1, 2})
		})
	})
}

func TestClusterDeterminism(t *testing.T) {
	Convey("Given a batch with several identities", t, func() {
		m := match.New()
		base := []model.RawRecord{
			rec("Jane Doe", "jdoe", model.PlatformCodeforces),
			rec("Doe Jane", "jdoe2", model.PlatformLeetCode),
			rec("Jane Doe", "janed", model.PlatformKaggle),
			rec("Wei Zhang", "wzhang", model.PlatformAtCoder),
			rec("Wei Zhang", "weiz", model.PlatformCodeforces),
			rec("Maria Silva", "msilva", model.PlatformLeetCode),
			rec("", "", model.PlatformKaggle),
		}
		want := clusterKeys(base, m.Cluster(base))

		Convey("Shuffling the input yields identical clusters", func() {
			rng := rand.New(rand.NewSource(7))
			for trial := 0; trial < 20; trial++ {
				shuffled := make([]model.RawRecord, len(base))
				copy(shuffled, base)
				rng.Shuffle(len(shuffled), func(i, j int) {
					shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
				})
				So(clusterKeys(shuffled, m.Cluster(shuffled)), ShouldResemble, want)
			}
		})

		Convey("Re-clustering a merged group reproduces the grouping", func() {
			clusters := m.Cluster(base)
			for _, c := range clusters {
				members := make([]model.RawRecord, 0, len(c))
				for _, i := range c {
					members = append(members, base[i])
				}
				again := m.Cluster(members)
				So(again, ShouldHaveLength, 1)
			}
		})
	})
}

func TestClusterThreshold(t *testing.T) {
	Convey("Given a configurable threshold", t, func() {
		a := rec("Jonathan Smithson", "x", model.PlatformCodeforces)
		b := rec("Jonathan Smithsen", "y", model.PlatformAtCoder)

		Convey("A stricter matcher splits what the default merges", func() {
			loose := match.New()
			strict := match.New(match.WithThreshold(99))
			So(loose.Cluster([]model.RawRecord{a, b}), ShouldHaveLength, 1)
			So(strict.Cluster([]model.RawRecord{a, b}), ShouldHaveLength, 2)
		})

		Convey("Out-of-range thresholds are ignored", func() {
			m := match.New(match.WithThreshold(-5), match.WithThreshold(1000))
			So(m.Threshold(), ShouldEqual, match.DefaultThreshold)
		})
	})
}
