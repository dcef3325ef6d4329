// Package report renders the ranked leaderboard as a markdown file.
//
// Score reasons travel through the pipeline as structured values; this is
// the one place they become display strings.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/pkg/logger"
)

const defaultTopN = 100

// Writer renders and writes talent reports.
type Writer struct {
	topN           int
	countryLeaders int
	log            logger.Logger
}

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithTopN bounds how many profiles the main section lists.
func WithTopN(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.topN = n
		}
	}
}

// WithCountryLeaders sets how many leaders each country section lists.
// Zero disables the section.
func WithCountryLeaders(n int) Option {
	return func(w *Writer) {
		w.countryLeaders = n
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(w *Writer) {
		w.log = log
	}
}

// NewWriter creates a report writer.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		topN:           defaultTopN,
		countryLeaders: 3,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders profiles (already in rank order) to path. The write goes
// through a temp file so readers never see a partial report.
func (w *Writer) Write(ctx context.Context, path string, profiles []model.ScoredProfile) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrWriteReport)
	}

	content := w.Render(profiles)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteReport, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteReport, err)
	}

	if w.log != nil {
		w.log.Info(ctx, "wrote talent report",
			logger.String("path", path), logger.Int("profiles", len(profiles)))
	}
	return nil
}

// Render produces the markdown document.
func (w *Writer) Render(profiles []model.ScoredProfile) string {
	var sb strings.Builder
	sb.WriteString("# Talent Identification Report\n\n")

	writeCountryDisclaimer(&sb, profiles)

	top := profiles
	if len(top) > w.topN {
		top = top[:w.topN]
	}
	for i, p := range top {
		writeProfileSection(&sb, i+1, p)
	}

	if w.countryLeaders > 0 {
		writeCountryLeaders(&sb, profiles, w.countryLeaders)
	}
	return sb.String()
}

func writeCountryDisclaimer(sb *strings.Builder, profiles []model.ScoredProfile) {
	total := len(profiles)
	missing := 0
	missingByPlatform := map[model.Platform]int{}
	for _, p := range profiles {
		if p.Profile.Country != "" {
			continue
		}
		missing++
		for platform := range p.Profile.Handles {
			missingByPlatform[platform]++
		}
	}

	fmt.Fprintf(sb, "> Note: country metadata is sparse, %d/%d profiles lack a country.", missing, total)
	for _, platform := range []model.Platform{model.PlatformAtCoder, model.PlatformLeetCode, model.PlatformKaggle} {
		if n := missingByPlatform[platform]; n > 0 {
			fmt.Fprintf(sb, " %s missing: %d.", platform, n)
		}
	}
	sb.WriteString("\n\n")
}

func writeProfileSection(sb *strings.Builder, rank int, p model.ScoredProfile) {
	name := p.Profile.PrimaryName
	if name == "" {
		name = "Unknown"
	}
	handle := primaryHandle(p.Profile)

	fmt.Fprintf(sb, "## %d. %s (%s) - %.0f\n", rank, name, handle, p.Breakdown.Total)
	for _, reason := range p.Breakdown.Reasons {
		fmt.Fprintf(sb, "> - %s\n", FormatReason(reason))
	}
	sb.WriteString("\n")
}

func writeCountryLeaders(sb *strings.Builder, profiles []model.ScoredProfile, perCountry int) {
	leaders := map[string][]model.ScoredProfile{}
	var order []string
	for _, p := range profiles {
		c := p.Profile.Country
		if c == "" {
			continue
		}
		if _, ok := leaders[c]; !ok {
			order = append(order, c)
		}
		if len(leaders[c]) < perCountry {
			leaders[c] = append(leaders[c], p)
		}
	}
	if len(order) == 0 {
		return
	}

	sb.WriteString("## Country leaders\n\n")
	for _, c := range order {
		fmt.Fprintf(sb, "### %s\n", c)
		for i, p := range leaders[c] {
			fmt.Fprintf(sb, "%d. %s - %.0f\n", i+1, p.Profile.PrimaryName, p.Breakdown.Total)
		}
		sb.WriteString("\n")
	}
}

// primaryHandle prefers Codeforces, then AtCoder, then any handle sorted by
// platform for a stable pick.
func primaryHandle(p model.CanonicalProfile) string {
	if h, ok := p.Handles[model.PlatformCodeforces]; ok {
		return h
	}
	if h, ok := p.Handles[model.PlatformAtCoder]; ok {
		return h
	}
	best := ""
	bestPlatform := model.Platform("")
	for platform, h := range p.Handles {
		if bestPlatform == "" || platform < bestPlatform {
			bestPlatform = platform
			best = h
		}
	}
	return best
}

// FormatReason turns one structured reason into a display string.
func FormatReason(r model.Reason) string {
	switch r.Kind {
	case model.ReasonBase:
		return fmt.Sprintf("rating %.0f on %s, z %+.2f (+%.0f)", r.Rating, r.Platform, r.Z, r.Points)
	case model.ReasonMomentum:
		return fmt.Sprintf("momentum on %s, delta z %+.2f (%+.0f)", r.Platform, r.DeltaZ, r.Points)
	case model.ReasonGeo:
		return fmt.Sprintf("top %.1f%% in %s (+%.0f)", r.Percent, r.Country, r.Points)
	case model.ReasonRising:
		return fmt.Sprintf("rising star (+%.0f)", r.Points)
	case model.ReasonMultiPlatform:
		return fmt.Sprintf("active on %d platforms (+%.0f)", r.Count, r.Points)
	case model.ReasonRankBonus:
		return fmt.Sprintf("podium rank %d on %s (+%.0f)", r.Rank, r.Platform, r.Points)
	case model.ReasonFresh:
		return fmt.Sprintf("fresh entrant, first seen %s (+%.0f)", r.Date.Format("2006-01-02"), r.Points)
	default:
		return fmt.Sprintf("%s (%+.0f)", r.Kind, r.Points)
	}
}
