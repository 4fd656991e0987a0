// Package gateway provides a gateway to the GitHub REST API,
// abstracting away the underlying go-github client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"

	"github.com/naka-gawa/release-notes/internal/domain"
)

// ErrNotFound is returned when the repository or label does not exist.
var ErrNotFound = errors.New("repository or label not found")

// DefaultPerPage matches the page size GitHub uses when none is given.
const DefaultPerPage = 30

// IssueQuery selects the issues listed for one label.
type IssueQuery struct {
	Label   string
	State   string
	Since   time.Time
	PerPage int
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchLabels(ctx context.Context, repo domain.Repository) ([]string, error)
	FetchIssues(ctx context.Context, repo domain.Repository, q IssueQuery) ([]domain.Issue, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     *zap.Logger
}

// NewGitHubGateway creates a gateway on top of httpClient. A non-empty
// apiURL points the client at a GitHub Enterprise server.
func NewGitHubGateway(httpClient *http.Client, apiURL string, logger *zap.Logger) (*GitHubGateway, error) {
	client := github.NewClient(httpClient)
	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure API URL %q: %w", apiURL, err)
		}
	}
	return &GitHubGateway{
		restClient: client,
		logger:     logger,
	}, nil
}

// FetchLabels returns the names of every label defined on the first page
// of the repository's label list.
func (g *GitHubGateway) FetchLabels(ctx context.Context, repo domain.Repository) ([]string, error) {
	g.logger.Debug("fetching labels", zap.Stringer("repo", repo))
	labels, _, err := g.restClient.Issues.ListLabels(ctx, repo.Owner, repo.Name, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels for %s: %w", repo, translate(err))
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	g.logger.Debug("fetched labels", zap.Stringer("repo", repo), zap.Int("count", len(names)))
	return names, nil
}

// FetchIssues returns a single page of issues matching q.
func (g *GitHubGateway) FetchIssues(ctx context.Context, repo domain.Repository, q IssueQuery) ([]domain.Issue, error) {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	opts := &github.IssueListByRepoOptions{
		State:       q.State,
		Labels:      []string{q.Label},
		Since:       q.Since,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	g.logger.Debug("fetching issues",
		zap.Stringer("repo", repo),
		zap.String("label", q.Label),
		zap.String("state", q.State),
		zap.Time("since", q.Since),
		zap.Int("per_page", perPage),
	)
	result, _, err := g.restClient.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues for %s label %q: %w", repo, q.Label, translate(err))
	}

	issues := make([]domain.Issue, 0, len(result))
	for _, is := range result {
		issues = append(issues, domain.Issue{
			Title:   is.GetTitle(),
			Body:    is.GetBody(),
			HTMLURL: is.GetHTMLURL(),
			Author: domain.Contributor{
				Login:   is.GetUser().GetLogin(),
				HTMLURL: is.GetUser().GetHTMLURL(),
			},
			IsPullRequest: is.IsPullRequest(),
		})
	}
	g.logger.Debug("fetched issues", zap.String("label", q.Label), zap.Int("count", len(issues)))
	return issues, nil
}

// translate maps GitHub's "Not Found" response onto ErrNotFound.
func translate(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		if ghErr.Message == "Not Found" || (ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, ghErr.Message)
		}
	}
	return err
}
