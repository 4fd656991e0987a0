// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/release-notes/internal/domain"
	"github.com/naka-gawa/release-notes/internal/gateway"
)

const (
	// ClosedState is the only issue state reported on.
	ClosedState = "closed"
	// DefaultLimit is the default number of body runes kept in a summary.
	DefaultLimit = 180
	// DefaultMessage is the default thank-you message.
	DefaultMessage = "A big thank you to the contributors for this release!"

	notFoundMessage = "That repo and/or label was not found."
)

// ReportOptions holds everything a report run needs.
type ReportOptions struct {
	Repo   domain.Repository
	Labels []string
	// AllLabels replaces Labels with every label defined on Repo.
	AllLabels bool
	Since     time.Time
	Limit     int
	// Message is a thank-you message for the contributors. It is carried
	// through but not rendered yet; it is reserved for per-section text.
	Message             string
	ShowCounts          bool
	ExcludePullRequests bool
	PerPage             int
	// Concurrency bounds how many labels are fetched at once. Values below 2
	// fetch and render one label at a time.
	Concurrency int
}

// Reporter is the use case for generating release notes.
// It orchestrates fetching issues per label and rendering each section.
type Reporter struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger
}

// NewReporter creates a new Reporter instance.
func NewReporter(fetcher gateway.Fetcher, logger *zap.Logger) *Reporter {
	return &Reporter{
		fetcher: fetcher,
		logger:  logger,
	}
}

type fetchResult struct {
	issues []domain.Issue
	err    error
}

// Generate writes one section per label to w, in the order the labels were
// given. A failed label does not stop the others; all failures are returned
// together once every section has been written.
func (r *Reporter) Generate(ctx context.Context, w io.Writer, opts ReportOptions) error {
	labels := opts.Labels
	if opts.AllLabels {
		lister := NewLabelLister(r.fetcher, r.logger)
		var err error
		labels, err = lister.Labels(ctx, w, opts.Repo)
		if err != nil {
			return err
		}
	}
	r.logger.Info("generating release notes",
		zap.Stringer("repo", opts.Repo),
		zap.Strings("labels", labels),
		zap.Time("since", opts.Since),
	)

	table := NewTableRenderer(opts.Limit, opts.ExcludePullRequests, r.logger)
	ranker := NewRanker(opts.ShowCounts, r.logger)

	var prefetched []fetchResult
	if opts.Concurrency > 1 && len(labels) > 1 {
		prefetched = r.prefetch(ctx, opts, labels)
	}

	var errs error
	for i, label := range labels {
		var res fetchResult
		if prefetched != nil {
			res = prefetched[i]
		} else {
			res = r.fetch(ctx, opts, label)
		}
		if err := r.section(w, table, ranker, label, res); err != nil {
			r.logger.Error("skipping label", zap.String("label", label), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// prefetch fetches every label concurrently. Results keep the label order.
func (r *Reporter) prefetch(ctx context.Context, opts ReportOptions, labels []string) []fetchResult {
	results := make([]fetchResult, len(labels))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)
	for i, label := range labels {
		i, label := i, label
		eg.Go(func() error {
			// Failures stay per label, so the group is never cancelled.
			results[i] = r.fetch(egCtx, opts, label)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func (r *Reporter) fetch(ctx context.Context, opts ReportOptions, label string) fetchResult {
	issues, err := r.fetcher.FetchIssues(ctx, opts.Repo, gateway.IssueQuery{
		Label:   label,
		State:   ClosedState,
		Since:   opts.Since,
		PerPage: opts.PerPage,
	})
	return fetchResult{issues: issues, err: err}
}

func (r *Reporter) section(w io.Writer, table *TableRenderer, ranker *Ranker, label string, res fetchResult) error {
	if res.err != nil {
		if !errors.Is(res.err, gateway.ErrNotFound) {
			return fmt.Errorf("failed to fetch issues for label %q: %w", label, res.err)
		}
		r.logger.Warn("label not found", zap.String("label", label), zap.Error(res.err))
		if _, err := fmt.Fprintln(w, notFoundMessage); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		res.issues = nil
	}

	tally, err := table.Render(w, label, res.issues)
	if err != nil {
		return err
	}
	return ranker.Render(w, label, tally)
}
