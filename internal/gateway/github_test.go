package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/release-notes/internal/domain"
)

var testRepo = domain.Repository{Owner: "any-org", Name: "any-repo"}

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	gateway := &GitHubGateway{
		restClient: restClient,
		logger:     zap.NewNop(),
	}
	return gateway, server
}

func TestGitHubGateway_FetchLabels(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       []string
		expectNotFound bool
		expectedErrMsg string
	}{
		{
			name: "happy path - returns label names in order",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/any-org/any-repo/labels", r.URL.Path)
				fmt.Fprint(w, `[{"name":"bug"},{"name":"enhancement"},{"name":"documentation"}]`)
			},
			expected: []string{"bug", "enhancement", "documentation"},
		},
		{
			name: "empty repository label list",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[]`)
			},
			expected: []string{},
		},
		{
			name: "not found",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message":"Not Found","documentation_url":"https://docs.github.com/rest"}`)
			},
			expectNotFound: true,
			expectedErrMsg: "failed to list labels for any-org/any-repo",
		},
		{
			name: "server error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message":"Internal Server Error"}`)
			},
			expectedErrMsg: "failed to list labels",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			labels, err := gateway.FetchLabels(context.Background(), testRepo)
			if tc.expectedErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				assert.Equal(t, tc.expectNotFound, errors.Is(err, ErrNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, labels)
		})
	}
}

func TestGitHubGateway_FetchIssues(t *testing.T) {
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("sends the query and maps the response", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/any-org/any-repo/issues", r.URL.Path)
			query := r.URL.Query()
			assert.Equal(t, "bug", query.Get("labels"))
			assert.Equal(t, "closed", query.Get("state"))
			assert.Equal(t, "2024-05-01T00:00:00Z", query.Get("since"))
			assert.Equal(t, "30", query.Get("per_page"))
			fmt.Fprint(w, `[
				{"title":"Crash on start","body":"Stack trace","html_url":"https://github.com/any-org/any-repo/issues/1",
				 "user":{"login":"alice","html_url":"https://github.com/alice"}},
				{"title":"No body","body":null,"html_url":"https://github.com/any-org/any-repo/pull/2",
				 "user":{"login":"bob","html_url":"https://github.com/bob"},
				 "pull_request":{"url":"https://api.github.com/repos/any-org/any-repo/pulls/2"}}
			]`)
		}
		gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
		defer server.Close()

		issues, err := gateway.FetchIssues(context.Background(), testRepo, IssueQuery{Label: "bug", State: "closed", Since: since})
		require.NoError(t, err)
		assert.Equal(t, []domain.Issue{
			{
				Title:   "Crash on start",
				Body:    "Stack trace",
				HTMLURL: "https://github.com/any-org/any-repo/issues/1",
				Author:  domain.Contributor{Login: "alice", HTMLURL: "https://github.com/alice"},
			},
			{
				Title:         "No body",
				Body:          "",
				HTMLURL:       "https://github.com/any-org/any-repo/pull/2",
				Author:        domain.Contributor{Login: "bob", HTMLURL: "https://github.com/bob"},
				IsPullRequest: true,
			},
		}, issues)
	})

	t.Run("honours a custom page size", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			fmt.Fprint(w, `[]`)
		}
		gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
		defer server.Close()

		issues, err := gateway.FetchIssues(context.Background(), testRepo, IssueQuery{Label: "bug", State: "closed", Since: since, PerPage: 100})
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("not found", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}
		gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
		defer server.Close()

		_, err := gateway.FetchIssues(context.Background(), testRepo, IssueQuery{Label: "bug", State: "closed", Since: since})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), `label "bug"`)
	})

	t.Run("malformed response", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"title":`)
		}
		gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
		defer server.Close()

		_, err := gateway.FetchIssues(context.Background(), testRepo, IssueQuery{Label: "bug", State: "closed", Since: since})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "failed to list issues")
	})
}

func TestNewGitHubGateway_EnterpriseURL(t *testing.T) {
	gateway, err := NewGitHubGateway(http.DefaultClient, "https://ghe.example.com/", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", gateway.restClient.BaseURL.String())

	gateway, err = NewGitHubGateway(http.DefaultClient, "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", gateway.restClient.BaseURL.String())
}
