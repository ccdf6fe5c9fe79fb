package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Free-text queries mention repositories either as owner/repo or as a
// github.com URL.
var (
	repoURLPattern  = regexp.MustCompile(`github\.com/([\w.-]+/[\w.-]+)`)
	repoSlugPattern = regexp.MustCompile(`\b([\w.-]+/[\w.-]+)\b`)
)

// ExtractRepo pulls an "owner/repo" reference out of a free-text query,
// falling back to the configured default repository.
func (c *Client) ExtractRepo(query string) string {
	if m := repoURLPattern.FindStringSubmatch(query); m != nil {
		return strings.TrimSuffix(m[1], ".git")
	}
	if m := repoSlugPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return c.repo
}

// ListRepositories lists the authenticated user's repositories.
func (c *Client) ListRepositories(ctx context.Context) (string, error) {
	res, err := c.do(ctx, http.MethodGet, "/user/repos?sort=updated&per_page=10", "")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("**Your repositories:**\n")
	res.ForEach(func(_, repo gjson.Result) bool {
		b.WriteString(fmt.Sprintf("- %s", repo.Get("full_name").String()))
		if desc := repo.Get("description").String(); desc != "" {
			b.WriteString(" — " + desc)
		}
		b.WriteString("\n")
		return true
	})
	return strings.TrimSpace(b.String()), nil
}

// ListPullRequests lists open pull requests for a repository.
func (c *Client) ListPullRequests(ctx context.Context, repo string) (string, error) {
	res, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/pulls?state=open&per_page=10", repo), "")
	if err != nil {
		return "", err
	}
	if len(res.Array()) == 0 {
		return fmt.Sprintf("No open pull requests in %s.", repo), nil
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Open pull requests in %s:**\n", repo))
	res.ForEach(func(_, pr gjson.Result) bool {
		b.WriteString(fmt.Sprintf("- #%d %s (by %s)\n",
			pr.Get("number").Int(), pr.Get("title").String(), pr.Get("user.login").String()))
		return true
	})
	return strings.TrimSpace(b.String()), nil
}

// ListIssues lists open issues for a repository.
func (c *Client) ListIssues(ctx context.Context, repo string) (string, error) {
	res, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/issues?state=open&per_page=10", repo), "")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Open issues in %s:**\n", repo))
	count := 0
	res.ForEach(func(_, issue gjson.Result) bool {
		if issue.Get("pull_request").Exists() {
			return true
		}
		count++
		b.WriteString(fmt.Sprintf("- #%d %s\n", issue.Get("number").Int(), issue.Get("title").String()))
		return true
	})
	if count == 0 {
		return fmt.Sprintf("No open issues in %s.", repo), nil
	}
	return strings.TrimSpace(b.String()), nil
}

// ListCommits lists recent commits on the default branch.
func (c *Client) ListCommits(ctx context.Context, repo string) (string, error) {
	res, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/commits?per_page=10", repo), "")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Recent commits in %s:**\n", repo))
	res.ForEach(func(_, commit gjson.Result) bool {
		sha := commit.Get("sha").String()
		if len(sha) > 7 {
			sha = sha[:7]
		}
		msg := commit.Get("commit.message").String()
		if idx := strings.IndexByte(msg, '\n'); idx > 0 {
			msg = msg[:idx]
		}
		b.WriteString(fmt.Sprintf("- %s %s (%s)\n", sha, msg, commit.Get("commit.author.name").String()))
		return true
	})
	return strings.TrimSpace(b.String()), nil
}

// ListBranches lists branches of a repository.
func (c *Client) ListBranches(ctx context.Context, repo string) (string, error) {
	res, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/branches?per_page=20", repo), "")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Branches in %s:**\n", repo))
	res.ForEach(func(_, branch gjson.Result) bool {
		b.WriteString("- " + branch.Get("name").String() + "\n")
		return true
	})
	return strings.TrimSpace(b.String()), nil
}

// RepoStats summarizes a repository.
func (c *Client) RepoStats(ctx context.Context, repo string) (string, error) {
	res, err := c.do(ctx, http.MethodGet, "/repos/"+repo, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(fmt.Sprintf(`**%s**
%s

- Stars: %d | Forks: %d | Open issues: %d
- Language: %s
- Default branch: %s`,
		res.Get("full_name").String(),
		res.Get("description").String(),
		res.Get("stargazers_count").Int(),
		res.Get("forks_count").Int(),
		res.Get("open_issues_count").Int(),
		res.Get("language").String(),
		res.Get("default_branch").String())), nil
}

// HandleQuery routes a free-text GitHub question by keyword. When the
// adapter is not configured it answers with setup instructions and never
// touches the network.
func (c *Client) HandleQuery(ctx context.Context, query string) string {
	if !c.Configured() {
		return "GitHub is not connected yet. Add a GitHub integration with a personal access token to query repositories."
	}
	lower := strings.ToLower(query)
	repo := c.ExtractRepo(query)

	var reply string
	var err error
	switch {
	case strings.Contains(lower, "pull request") || strings.Contains(lower, " pr") || strings.HasPrefix(lower, "pr"):
		if repo == "" {
			return "Which repository? Mention it as owner/repo."
		}
		reply, err = c.ListPullRequests(ctx, repo)
	case strings.Contains(lower, "commit"):
		if repo == "" {
			return "Which repository? Mention it as owner/repo."
		}
		reply, err = c.ListCommits(ctx, repo)
	case strings.Contains(lower, "branch"):
		if repo == "" {
			return "Which repository? Mention it as owner/repo."
		}
		reply, err = c.ListBranches(ctx, repo)
	case strings.Contains(lower, "issue"):
		if repo == "" {
			return "Which repository? Mention it as owner/repo."
		}
		reply, err = c.ListIssues(ctx, repo)
	case strings.Contains(lower, "stat") || strings.Contains(lower, "info") || strings.Contains(lower, "about"):
		if repo == "" {
			return "Which repository? Mention it as owner/repo."
		}
		reply, err = c.RepoStats(ctx, repo)
	default:
		reply, err = c.ListRepositories(ctx)
	}
	if err != nil {
		return fmt.Sprintf("GitHub query failed: %v", err)
	}
	return reply
}
