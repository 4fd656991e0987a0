// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/release-notes/internal/domain"
	"github.com/naka-gawa/release-notes/internal/gateway"
)

// globalOptions holds the flags shared by every subcommand.
type globalOptions struct {
	repo          string
	verbose       bool
	apiURL        string
	waitRateLimit bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "release-notes",
		Short: "Generate markdown release notes from closed GitHub issues.",
		Long: `release-notes queries the GitHub issues of a repository and renders a
markdown table of the issues closed since a given date for each label,
followed by a ranked list of the people who opened them.

Set GITHUB_TOKEN to make authenticated requests.`,
		SilenceUsage: true,
	}

	// Flags shared by all subcommands.
	cmd.PersistentFlags().StringVarP(&opts.repo, "repo", "r", "", "Target GitHub repository as owner/name (required)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose/debug logging")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "GitHub Enterprise base URL (default: github.com)")
	cmd.PersistentFlags().BoolVar(&opts.waitRateLimit, "wait-rate-limit", false, "Sleep through GitHub secondary rate limits instead of failing")
	_ = cmd.MarkPersistentFlagRequired("repo")

	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newLabelsCommand(opts))
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

// newLogger writes human-readable logs to stderr. Only warnings and errors
// are shown unless verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// newHTTPClient builds the client used for GitHub requests. Requests are
// anonymous unless GITHUB_TOKEN is set.
func newHTTPClient(waitRateLimit bool, token string) (*http.Client, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if waitRateLimit {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		transport = rateLimitWaiter
	}
	if token != "" {
		transport = &oauth2.Transport{
			Base:   transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	return &http.Client{Transport: transport}, nil
}

// setup resolves the shared flags into a repository, a logger and a gateway.
func (o *globalOptions) setup() (domain.Repository, *zap.Logger, gateway.Fetcher, error) {
	repo, err := domain.ParseRepository(o.repo)
	if err != nil {
		return domain.Repository{}, nil, nil, err
	}
	logger, err := newLogger(o.verbose)
	if err != nil {
		return domain.Repository{}, nil, nil, err
	}
	httpClient, err := newHTTPClient(o.waitRateLimit, os.Getenv("GITHUB_TOKEN"))
	if err != nil {
		return domain.Repository{}, nil, nil, err
	}
	githubGateway, err := gateway.NewGitHubGateway(httpClient, o.apiURL, logger)
	if err != nil {
		return domain.Repository{}, nil, nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return repo, logger, githubGateway, nil
}
