package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/release-notes/internal/gateway"
	"github.com/naka-gawa/release-notes/internal/usecase"
)

const sinceLayout = "2006-01-02"

func newReportCommand(global *globalOptions) *cobra.Command {
	var (
		labels       []string
		all          bool
		sinceStr     string
		limit        int
		message      string
		counts       bool
		excludePulls bool
		perPage      int
		concurrency  int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render release notes for closed issues, one section per label",
		Long: `Renders one markdown section per label: a table of the issues closed since
--since followed by the contributors ranked by how many of those issues they
opened. Sections appear in the order the labels were given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			since, err := parseSince(sinceStr, time.Now())
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("invalid --limit %d: must not be negative", limit)
			}
			if perPage < 1 || perPage > 100 {
				return fmt.Errorf("invalid --per-page %d: must be between 1 and 100", perPage)
			}

			repo, logger, fetcher, err := global.setup()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			reporter := usecase.NewReporter(fetcher, logger)
			return reporter.Generate(cmd.Context(), cmd.OutOrStdout(), usecase.ReportOptions{
				Repo:                repo,
				Labels:              labels,
				AllLabels:           all,
				Since:               since,
				Limit:               limit,
				Message:             message,
				ShowCounts:          counts,
				ExcludePullRequests: excludePulls,
				PerPage:             perPage,
				Concurrency:         concurrency,
			})
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "labels", "l", []string{"bug"}, "Labels to report on, in order")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Report on every label in the repository")
	cmd.Flags().StringVarP(&sinceStr, "since", "s", "", "Report on issues since this date (YYYY-MM-DD or RFC 3339, default: a month ago)")
	cmd.Flags().IntVar(&limit, "limit", usecase.DefaultLimit, "Length of the summary column before it is cut")
	cmd.Flags().StringVarP(&message, "message", "m", usecase.DefaultMessage, "A thank-you message for the contributors (reserved)")
	cmd.Flags().BoolVar(&counts, "counts", false, "List contributors one per line with their issue counts")
	cmd.Flags().BoolVar(&excludePulls, "exclude-pulls", false, "Leave pull requests out of the tables")
	cmd.Flags().IntVar(&perPage, "per-page", gateway.DefaultPerPage, "Number of issues fetched per label (single page, max 100)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of labels fetched at once")
	cmd.MarkFlagsMutuallyExclusive("labels", "all")
	return cmd
}

// parseSince accepts a date or an RFC 3339 timestamp. An empty value means
// one month before now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.AddDate(0, -1, 0), nil
	}
	if t, err := time.Parse(sinceLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}
