package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/contrib-scout/internal/domain"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
// REST calls are served from the root and GraphQL queries from /graphql.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	graphqlClient := githubv4.NewEnterpriseClient(server.URL+"/graphql", server.Client())
	logger := log.New(io.Discard, "", 0)

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
	}

	return gateway, server
}

func TestGitHubGateway_FetchRepository(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - maps repository fields",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/acme/widget", r.URL.Path)
				fmt.Fprint(w, `{"full_name":"acme/widget","description":null,"stargazers_count":42,"language":"Go",
					"html_url":"https://github.com/acme/widget","open_issues_count":3,"forks_count":7,
					"topics":["cli"],"license":{"name":"MIT License"}}`)
			},
		},
		{
			name: "error case - repository not found",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to get repository acme/widget",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			repo, err := gateway.FetchRepository(context.Background(), "acme", "widget")
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "acme/widget", repo.FullName)
			assert.Nil(t, repo.Description)
			assert.Equal(t, 42, repo.Stars)
			assert.Equal(t, "Go", *repo.Language)
			assert.Equal(t, "https://github.com/acme/widget", repo.URL)
			assert.Equal(t, 3, repo.OpenIssues)
			assert.Equal(t, 7, repo.Forks)
			assert.Equal(t, []string{"cli"}, repo.Topics)
			assert.Equal(t, "MIT License", *repo.License)
		})
	}
}

func TestGitHubGateway_FetchLatestCommitTime(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectedTime *time.Time
	}{
		{
			name:         "latest commit author date",
			body:         `[{"sha":"abc","commit":{"author":{"name":"dev","date":"2026-02-20T10:00:00Z"}}}]`,
			expectedTime: func() *time.Time { t := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC); return &t }(),
		},
		{
			name: "no commits",
			body: `[]`,
		},
		{
			name: "commit without author",
			body: `[{"sha":"abc","commit":{}}]`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/acme/widget/commits", r.URL.Path)
				assert.Equal(t, "1", r.URL.Query().Get("per_page"))
				fmt.Fprint(w, tc.body)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			result, err := gateway.FetchLatestCommitTime(context.Background(), "acme", "widget")
			require.NoError(t, err)
			if tc.expectedTime == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.True(t, tc.expectedTime.Equal(*result))
		})
	}
}

func TestGitHubGateway_FileExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widget/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("path") {
		case ".github/CONTRIBUTING.md":
			fmt.Fprint(w, `{"type":"file","name":"CONTRIBUTING.md","path":".github/CONTRIBUTING.md"}`)
		case "BROKEN.md":
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"Forbidden"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}
	})
	gateway, server := setupTestGateway(t, mux)
	defer server.Close()
	ctx := context.Background()

	found, err := gateway.FileExists(ctx, "acme", "widget", "CONTRIBUTING.md", ".github/CONTRIBUTING.md")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = gateway.FileExists(ctx, "acme", "widget", "CODE_OF_CONDUCT.md")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = gateway.FileExists(ctx, "acme", "widget", "BROKEN.md")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get contents of BROKEN.md")
}

func TestGitHubGateway_FetchContributorsPage(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		expected    int
		expectError bool
	}{
		{name: "one contributor returned", status: http.StatusOK, body: `[{"login":"dev"}]`, expected: 1},
		{name: "no contributors", status: http.StatusOK, body: `[]`, expected: 0},
		{name: "api failure", status: http.StatusInternalServerError, body: `{"message":"boom"}`, expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/acme/widget/contributors", r.URL.Path)
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			count, err := gateway.FetchContributorsPage(context.Background(), "acme", "widget")
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, count)
		})
	}
}

func TestGitHubGateway_AdvancedSamples(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widget/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[
			{"number":1,"created_at":"2026-02-01T00:00:00Z","merged_at":"2026-02-03T00:00:00Z"},
			{"number":2,"created_at":"2026-02-02T00:00:00Z","merged_at":null}
		]`)
	})
	mux.HandleFunc("GET /repos/acme/widget/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[
			{"number":7,"created_at":"2026-02-01T00:00:00Z","comments":2},
			{"number":8,"created_at":"2026-02-02T00:00:00Z","comments":0}
		]`)
	})
	mux.HandleFunc("GET /repos/acme/widget/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("number") != "7" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"id":1,"created_at":"2026-02-01T05:00:00Z"}]`)
	})
	gateway, server := setupTestGateway(t, mux)
	defer server.Close()
	ctx := context.Background()

	prs, err := gateway.FetchClosedPRs(ctx, "acme", "widget")
	require.NoError(t, err)
	require.Len(t, prs, 2)
	require.NotNil(t, prs[0].MergedAt)
	assert.Equal(t, 48*time.Hour, prs[0].MergedAt.Sub(prs[0].CreatedAt))
	assert.Nil(t, prs[1].MergedAt)

	issues, err := gateway.FetchRecentIssues(ctx, "acme", "widget")
	require.NoError(t, err)
	assert.Equal(t, []RecentIssue{
		{Number: 7, CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Comments: 2},
		{Number: 8, CreatedAt: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Comments: 0},
	}, issues)

	first, err := gateway.FetchFirstCommentTime(ctx, "acme", "widget", 7)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 5*time.Hour, first.Sub(issues[0].CreatedAt))

	none, err := gateway.FetchFirstCommentTime(ctx, "acme", "widget", 8)
	require.NoError(t, err)
	assert.Nil(t, none)
}

// TestGitHubGateway_GraphQLFetches covers the GraphQL-backed searches.
func TestGitHubGateway_GraphQLFetches(t *testing.T) {
	testCases := []struct {
		name           string
		methodToTest   func(gateway *GitHubGateway) (interface{}, error)
		queryContains  string
		responseBody   string
		expected       interface{}
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "FetchGoodFirstIssues - happy path",
			methodToTest: func(gateway *GitHubGateway) (interface{}, error) {
				return gateway.FetchGoodFirstIssues(context.Background(), "acme", "widget")
			},
			queryContains: `repo:acme/widget is:issue is:open`,
			responseBody: `{"data":{"search":{"nodes":[
				{"title":"Fix typo","url":"https://github.com/acme/widget/issues/4","number":4,
				 "createdAt":"2026-01-10T00:00:00Z","comments":{"totalCount":2}}
			]}}}`,
			expected: []domain.GoodFirstIssue{{
				Title:     "Fix typo",
				URL:       "https://github.com/acme/widget/issues/4",
				Number:    4,
				CreatedAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
				Comments:  2,
			}},
		},
		{
			name: "FetchGoodFirstIssues - error case",
			methodToTest: func(gateway *GitHubGateway) (interface{}, error) {
				return gateway.FetchGoodFirstIssues(context.Background(), "acme", "widget")
			},
			queryContains:  `good first issue`,
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query for good first issues",
		},
		{
			name: "SearchRepositories - happy path",
			methodToTest: func(gateway *GitHubGateway) (interface{}, error) {
				return gateway.SearchRepositories(context.Background(), "language:go stars:>=10", 2)
			},
			queryContains: `language:go stars:`,
			responseBody:  `{"data":{"search":{"nodes":[{"nameWithOwner":"acme/widget"},{"nameWithOwner":"acme/gadget"}]}}}`,
			expected:      []string{"acme/widget", "acme/gadget"},
		},
		{
			name: "SearchRepositories - error case",
			methodToTest: func(gateway *GitHubGateway) (interface{}, error) {
				return gateway.SearchRepositories(context.Background(), "language:go", 0)
			},
			queryContains:  `language:go`,
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query for repository search",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), tc.queryContains)

				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			})
			gateway, server := setupTestGateway(t, mux)
			defer server.Close()

			result, err := tc.methodToTest(gateway)

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, result)
			}
		})
	}
}
