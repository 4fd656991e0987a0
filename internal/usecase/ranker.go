package usecase

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/naka-gawa/release-notes/internal/domain"
)

// Ranker writes the ranked contributor list of one report section.
type Ranker struct {
	// ShowCounts renders one "[login](url): count" line per contributor
	// instead of a single line of links.
	ShowCounts bool

	logger *zap.Logger
}

// NewRanker creates a Ranker.
func NewRanker(showCounts bool, logger *zap.Logger) *Ranker {
	return &Ranker{ShowCounts: showCounts, logger: logger}
}

// Rank orders contributors by count, highest first. Contributors with equal
// counts keep the order in which they were first seen. That tie-break is the
// only ordering guarantee; it is not alphabetical.
func Rank(tally *domain.Tally) []domain.ContributorCount {
	ranked := tally.Entries()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// Render writes the contributor heading followed by the ranked contributors.
func (r *Ranker) Render(w io.Writer, label string, tally *domain.Tally) error {
	ranked := Rank(tally)
	r.logSummary(label, ranked)

	var b strings.Builder
	fmt.Fprintf(&b, "\n### %s Contributors\n\n", domain.SectionHeading(label))
	if r.ShowCounts {
		for _, c := range ranked {
			fmt.Fprintf(&b, "[%s](%s): %d\n", c.Login, c.HTMLURL, c.Count)
		}
		b.WriteString("\n")
	} else {
		links := make([]string, 0, len(ranked))
		for _, c := range ranked {
			links = append(links, fmt.Sprintf("[%s](%s)", c.Login, c.HTMLURL))
		}
		b.WriteString(strings.Join(links, " "))
		b.WriteString("\n\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write contributors: %w", err)
	}
	return nil
}

func (r *Ranker) logSummary(label string, ranked []domain.ContributorCount) {
	if len(ranked) == 0 {
		r.logger.Debug("no contributors", zap.String("label", label))
		return
	}
	counts := make(stats.Float64Data, 0, len(ranked))
	for _, c := range ranked {
		counts = append(counts, float64(c.Count))
	}
	mean, err := counts.Mean()
	if err != nil {
		r.logger.Warn("failed to compute mean", zap.String("label", label), zap.Error(err))
		return
	}
	median, err := counts.Median()
	if err != nil {
		r.logger.Warn("failed to compute median", zap.String("label", label), zap.Error(err))
		return
	}
	r.logger.Debug("contributor summary",
		zap.String("label", label),
		zap.Int("contributors", len(ranked)),
		zap.String("top", ranked[0].Login),
		zap.Float64("mean_issues", mean),
		zap.Float64("median_issues", median),
	)
}
