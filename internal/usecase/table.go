package usecase

import (
	"fmt"
	"io"
	"strings"

	"github.com/naka-gawa/release-notes/internal/domain"
	"go.uber.org/zap"
)

const (
	notApplicable  = "n/a"
	ellipsisMarker = "..."
	tableHeader    = "\n| Title | Summary | Contributor |\n|---|---|---|\n"
)

// TableRenderer writes the markdown issue table of one report section.
type TableRenderer struct {
	// Limit is the number of body runes kept before the summary is cut.
	Limit int
	// ExcludePullRequests drops pull requests returned by the issues endpoint.
	ExcludePullRequests bool

	logger *zap.Logger
}

// NewTableRenderer creates a TableRenderer.
func NewTableRenderer(limit int, excludePullRequests bool, logger *zap.Logger) *TableRenderer {
	return &TableRenderer{
		Limit:               limit,
		ExcludePullRequests: excludePullRequests,
		logger:              logger,
	}
}

// Render writes the section title, the table header, one row per issue and
// the total line to w. Rows are written as they are produced. It returns the
// contributor tally for the rendered rows.
func (r *TableRenderer) Render(w io.Writer, label string, issues []domain.Issue) (*domain.Tally, error) {
	tally := domain.NewTally()
	if _, err := fmt.Fprintf(w, "\n## %s Updates\n%s", domain.SectionHeading(label), tableHeader); err != nil {
		return nil, fmt.Errorf("failed to write table header: %w", err)
	}

	emitted := 0
	for _, issue := range issues {
		if r.ExcludePullRequests && issue.IsPullRequest {
			r.logger.Debug("skipping pull request", zap.String("url", issue.HTMLURL))
			continue
		}
		if _, err := fmt.Fprintln(w, r.row(issue)); err != nil {
			return nil, fmt.Errorf("failed to write table row: %w", err)
		}
		tally.Add(issue.Author)
		emitted++
	}

	if _, err := fmt.Fprintf(w, "Total of %d out of %d\n\n", emitted, len(issues)); err != nil {
		return nil, fmt.Errorf("failed to write table total: %w", err)
	}
	return tally, nil
}

func (r *TableRenderer) row(issue domain.Issue) string {
	title := Sanitize(normalizeLineBreaks(issue.Title), TitleWidth)
	return fmt.Sprintf("|[%s](%s)|%s|[%s](%s)|",
		title, issue.HTMLURL,
		r.summary(issue.Body),
		issue.Author.Login, issue.Author.HTMLURL,
	)
}

// summary trims a body to Limit runes, marks the cut with "...", and removes
// what would break the table: line breaks, backticks and very long words.
func (r *TableRenderer) summary(body string) string {
	runes := []rune(body)
	summary := body
	if len(runes) > r.Limit {
		summary = string(runes[:r.Limit]) + ellipsisMarker
	}
	summary = strings.ReplaceAll(normalizeLineBreaks(summary), "`", "")
	summary = Sanitize(summary, BodyWidth)
	if summary == "" {
		return notApplicable
	}
	return summary
}
