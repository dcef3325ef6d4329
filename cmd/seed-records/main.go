// Command seed-records writes a synthetic records fixture for the file
// ingest source.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/talentradar/talentradar/internal/seed"
)

func main() {
	defaults := seed.DefaultConfig()

	var (
		output  = flag.String("output", "seed_records.json", "Output file for generated records")
		people  = flag.Int("people", defaults.People, "Number of distinct synthetic people")
		overlap = flag.Float64("overlap", defaults.OverlapRate, "Share of people present on a second platform")
		typos   = flag.Float64("typos", defaults.TypoRate, "Share of overlapping names that get a typo")
		rngSeed = flag.Int64("seed", defaults.Seed, "RNG seed for reproducible fixtures")
	)
	flag.Parse()

	cfg := seed.Config{
		People:      *people,
		OverlapRate: *overlap,
		TypoRate:    *typos,
		Seed:        *rngSeed,
	}

	n, err := seed.WriteFile(*output, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed-records:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d records to %s\n", n, *output)
}
