// Package seed generates synthetic cross-platform leaderboard records for
// demos and offline pipeline runs. The output feeds the file source.
//
// A configurable share of generated people appear on more than one
// platform, under the same name, a reordered name, or a name with a small
// typo, which exercises the fuzzy matcher the way real data does.
package seed

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/talentradar/talentradar/internal/domain/model"
)

// Platform rating scales for the synthetic records.
const (
	codeforcesMean   = 1500.0
	codeforcesSpread = 600.0
	atcoderMean      = 1200.0
	atcoderSpread    = 700.0
	leetcodeMean     = 1700.0
	leetcodeSpread   = 300.0
	kaggleMean       = 20000.0
	kaggleSpread     = 15000.0
)

var firstNames = []string{
	"Jane", "Maria", "Ken", "Ana", "Liang", "Sofia", "Ivan", "Aisha",
	"Diego", "Yuki", "Elena", "Omar", "Priya", "Lucas", "Mei", "Tom",
}

var lastNames = []string{
	"Doe", "Santos", "Tanaka", "Souza", "Chen", "Rossi", "Petrov", "Khan",
	"Garcia", "Sato", "Volkov", "Hassan", "Sharma", "Silva", "Wang", "Baker",
}

var countries = []string{
	"US", "BR", "JP", "CN", "IT", "RU", "IN", "EG", "ES", "DE", "", "",
}

var platforms = []model.Platform{
	model.PlatformCodeforces,
	model.PlatformAtCoder,
	model.PlatformLeetCode,
	model.PlatformKaggle,
}

// Config holds generation parameters.
type Config struct {
	People      int     // distinct synthetic people
	OverlapRate float64 // share of people present on a second platform
	TypoRate    float64 // share of overlapping names that get a typo
	Seed        int64   // RNG seed, fixed for reproducible fixtures
}

// DefaultConfig returns the parameters used by the seed-records CLI.
func DefaultConfig() Config {
	return Config{
		People:      200,
		OverlapRate: 0.3,
		TypoRate:    0.25,
		Seed:        1,
	}
}

// Generate produces raw records for the configured number of people.
func Generate(cfg Config) []model.RawRecord {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic fixtures

	var records []model.RawRecord
	for i := range cfg.People {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		name := first + " " + last
		country := countries[rng.Intn(len(countries))]
		handle := fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last), i)

		primary := platforms[rng.Intn(len(platforms))]
		records = append(records, record(rng, name, handle, country, primary, i))

		if rng.Float64() >= cfg.OverlapRate {
			continue
		}

		secondary := platforms[rng.Intn(len(platforms))]
		for secondary == primary {
			secondary = platforms[rng.Intn(len(platforms))]
		}
		altName := name
		switch {
		case rng.Float64() < cfg.TypoRate:
			altName = introduceTypo(rng, name)
		case rng.Float64() < 0.5:
			altName = last + " " + first
		}
		altHandle := fmt.Sprintf("%s%d_%s", strings.ToLower(last), i, strings.ToLower(first))
		records = append(records, record(rng, altName, altHandle, country, secondary, i))
	}
	return records
}

// WriteFile generates records and writes them as a JSON array.
func WriteFile(path string, cfg Config) (int, error) {
	records := Generate(cfg)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return 0, fmt.Errorf("write records: %w", err)
	}
	return len(records), nil
}

func record(rng *rand.Rand, name, handle, country string, platform model.Platform, i int) model.RawRecord {
	mean, spread := ratingScale(platform)
	rating := mean + rng.NormFloat64()*spread/3
	if rating < 0 {
		rating = 0
	}

	// Spread first-seen dates over the last three years so a slice of the
	// population qualifies as fresh entrants.
	daysAgo := rng.Intn(3 * 365)
	firstSeen := time.Now().UTC().AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour)

	return model.RawRecord{
		Name:      name,
		Handle:    handle,
		Country:   country,
		Rating:    rating,
		Rank:      i + 1,
		Platform:  platform,
		FirstSeen: firstSeen,
	}
}

func ratingScale(platform model.Platform) (mean, spread float64) {
	switch platform {
	case model.PlatformCodeforces:
		return codeforcesMean, codeforcesSpread
	case model.PlatformAtCoder:
		return atcoderMean, atcoderSpread
	case model.PlatformLeetCode:
		return leetcodeMean, leetcodeSpread
	case model.PlatformKaggle:
		return kaggleMean, kaggleSpread
	default:
		return 1000, 300
	}
}

// introduceTypo swaps one letter of the name for its neighbor.
func introduceTypo(rng *rand.Rand, name string) string {
	runes := []rune(name)
	if len(runes) < 4 {
		return name
	}
	i := 1 + rng.Intn(len(runes)-2)
	if runes[i] == ' ' || runes[i+1] == ' ' {
		return name
	}
	runes[i], runes[i+1] = runes[i+1], runes[i]
	return string(runes)
}
