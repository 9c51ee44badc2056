// Package github fetches repository facts through the GitHub REST API. It
// never clones: all data comes from metadata, tree, and content endpoints.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shortlist-ai/shortlist/pkg/tasks"
)

// APIEndpoint is the GitHub REST API base URL.
const APIEndpoint = "https://api.github.com"

const (
	maxTreeEntries    = 500
	maxReadmeChars    = 15000
	maxSampleFiles    = 3
	maxSampleBytes    = 20000
	maxContentBytes   = 50000
	requestTimeout    = 30 * time.Second
	analyzerUserAgent = "Shortlist-Portfolio-Analyzer/1.0"
)

// repoURLPattern matches canonical HTTPS GitHub repository URLs.
var repoURLPattern = regexp.MustCompile(`^https://github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?/?$`)

// codeExtensions are the file extensions counted as code when walking the
// repository tree.
var codeExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".go": true, ".rs": true, ".rb": true,
	".cpp": true, ".c": true, ".h": true, ".hpp": true, ".cs": true,
	".swift": true, ".kt": true, ".scala": true, ".php": true,
	".vue": true, ".svelte": true, ".html": true, ".css": true,
	".scss": true, ".sass": true, ".less": true,
}

// testPatterns flag paths that belong to a test suite.
var testPatterns = []string{
	"test_", "_test.py", "_test.go", ".test.js", ".test.ts",
	".spec.js", ".spec.ts", "tests/", "__tests__/", "spec/", "test/",
}

// sampleExtensions select which files qualify as code samples for the
// scorecard prompt.
var sampleExtensions = []string{".py", ".ts", ".js", ".go", ".rs"}

// readmeCandidates are tried in order when locating the repository README.
var readmeCandidates = []string{"README.md", "README.rst", "README.txt", "README"}

// ValidateRepoURL checks that url is a canonical GitHub repository URL and
// returns its owner and repo segments.
func ValidateRepoURL(url string) (owner string, repo string, err error) {
	match := repoURLPattern.FindStringSubmatch(strings.TrimSpace(url))
	if match == nil {
		err = errors.Errorf("invalid GitHub repository URL: %s", url)
		return owner, repo, err
	}
	owner = match[1]
	repo = match[2]
	return owner, repo, err
}

// Analyzer fetches repository facts over the GitHub REST API. A token raises
// the rate limit from 60 to 5000 requests per hour; unauthenticated use works
// for light traffic.
type Analyzer struct {
	token      string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAnalyzer creates a GitHub analyzer. An empty endpoint selects the public
// API; an empty token selects unauthenticated access.
func NewAnalyzer(token string, endpoint string, logger *zap.Logger) (a *Analyzer) {
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a = &Analyzer{
		token:    token,
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
	return a
}

// repoResponse is the subset of the repository metadata endpoint we read.
type repoResponse struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	Stars         int      `json:"stargazers_count"`
	Forks         int      `json:"forks_count"`
	DefaultBranch string   `json:"default_branch"`
	Topics        []string `json:"topics"`
	License       *struct {
		Name string `json:"name"`
	} `json:"license"`
}

// treeResponse is the subset of the git trees endpoint we read.
type treeResponse struct {
	Tree []treeEntry `json:"tree"`
}

// treeEntry is one node of the repository tree.
type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

// contentResponse is the subset of the contents endpoint we read.
type contentResponse struct {
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Analyze fetches metadata, the recursive file tree, the README, and a few
// sample code files, and condenses them into RepoFacts for scoring.
func (a *Analyzer) Analyze(ctx context.Context, url string) (facts tasks.RepoFacts, err error) {
	owner, repo, err := ValidateRepoURL(url)
	if err != nil {
		return facts, err
	}

	a.logger.Info("analyzing repository",
		zap.String("owner", owner),
		zap.String("repo", repo))

	var meta repoResponse
	found, err := a.apiGet(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), &meta)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch metadata for %s/%s", owner, repo)
		return facts, err
	}
	if !found {
		err = errors.Errorf("repository not found: %s/%s", owner, repo)
		return facts, err
	}

	facts.FullName = meta.FullName
	if facts.FullName == "" {
		facts.FullName = owner + "/" + repo
	}
	facts.Description = truncate(meta.Description, 500)
	facts.PrimaryLanguage = meta.Language
	facts.Stars = meta.Stars
	facts.Forks = meta.Forks
	facts.Topics = meta.Topics
	facts.HasLicense = meta.License != nil

	facts.Languages = map[string]int64{}
	if _, langErr := a.apiGet(ctx, fmt.Sprintf("/repos/%s/%s/languages", owner, repo), &facts.Languages); langErr != nil {
		a.logger.Warn("failed to fetch languages", zap.Error(langErr))
	}

	branch := meta.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	tree, treeErr := a.fetchTree(ctx, owner, repo, branch)
	if treeErr != nil {
		a.logger.Warn("failed to fetch file tree", zap.Error(treeErr))
	}
	a.summarizeTree(tree, &facts)

	for _, name := range readmeCandidates {
		content, contentErr := a.fetchContent(ctx, owner, repo, name, maxContentBytes)
		if contentErr != nil {
			a.logger.Warn("failed to fetch readme candidate",
				zap.String("path", name), zap.Error(contentErr))
			continue
		}
		if content != "" {
			facts.Readme = truncate(content, maxReadmeChars)
			facts.HasReadme = true
			break
		}
	}

	facts.SampleCode = a.fetchSamples(ctx, owner, repo, tree)

	a.logger.Info("repository analysis complete",
		zap.String("repo", facts.FullName),
		zap.Int("total_files", facts.TotalFiles),
		zap.Int("code_files", facts.CodeFiles),
		zap.Int("test_files", facts.TestFiles))

	return facts, err
}

// fetchTree retrieves the recursive file tree, capped at maxTreeEntries.
func (a *Analyzer) fetchTree(ctx context.Context, owner, repo, branch string) (entries []treeEntry, err error) {
	var tree treeResponse
	found, err := a.apiGet(ctx, fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", owner, repo, branch), &tree)
	if err != nil || !found {
		return entries, err
	}
	entries = tree.Tree
	if len(entries) > maxTreeEntries {
		entries = entries[:maxTreeEntries]
	}
	return entries, err
}

// summarizeTree derives the structural signals the scorecard prompt needs.
func (a *Analyzer) summarizeTree(entries []treeEntry, facts *tasks.RepoFacts) {
	for _, entry := range entries {
		if entry.Type != "blob" {
			continue
		}
		facts.TotalFiles++
		lower := strings.ToLower(entry.Path)

		if codeExtensions[extOf(entry.Path)] {
			facts.CodeFiles++
			facts.EstimatedLOC += entry.Size / 40
		}
		for _, pattern := range testPatterns {
			if strings.Contains(lower, pattern) {
				facts.TestFiles++
				facts.HasTests = true
				break
			}
		}
		if strings.Contains(lower, "dockerfile") || strings.Contains(lower, "docker-compose") {
			facts.HasDocker = true
		}
		if strings.Contains(entry.Path, ".github/workflows") {
			facts.HasCI = true
		}
	}
}

// fetchSamples pulls up to maxSampleFiles interesting code files for the
// scorecard prompt. Tests, mocks, and root-level files are skipped.
func (a *Analyzer) fetchSamples(ctx context.Context, owner, repo string, entries []treeEntry) (samples map[string]string) {
	samples = map[string]string{}
	for _, entry := range entries {
		if len(samples) >= maxSampleFiles {
			break
		}
		if entry.Type != "blob" || !strings.Contains(entry.Path, "/") {
			continue
		}
		lower := strings.ToLower(entry.Path)
		if strings.Contains(lower, "test") || strings.Contains(lower, "spec") || strings.Contains(lower, "mock") {
			continue
		}
		interesting := false
		for _, ext := range sampleExtensions {
			if strings.HasSuffix(entry.Path, ext) {
				interesting = true
				break
			}
		}
		if !interesting {
			continue
		}

		content, err := a.fetchContent(ctx, owner, repo, entry.Path, maxSampleBytes)
		if err != nil {
			a.logger.Warn("failed to fetch sample file",
				zap.String("path", entry.Path), zap.Error(err))
			continue
		}
		if content != "" {
			samples[entry.Path] = content
		}
	}
	return samples
}

// fetchContent retrieves and decodes one file. Missing or oversized files
// return empty content without error.
func (a *Analyzer) fetchContent(ctx context.Context, owner, repo, path string, maxSize int) (content string, err error) {
	var resp contentResponse
	found, err := a.apiGet(ctx, fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path), &resp)
	if err != nil || !found {
		return content, err
	}
	if resp.Size > maxSize {
		a.logger.Debug("skipping oversized file",
			zap.String("path", path), zap.Int("size", resp.Size))
		return content, err
	}

	if resp.Encoding == "base64" {
		decoded, decodeErr := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
		if decodeErr != nil {
			err = errors.Wrapf(decodeErr, "failed to decode %s", path)
			return content, err
		}
		content = string(decoded)
		return content, err
	}

	content = resp.Content
	return content, err
}

// apiGet performs one GitHub API GET. found is false on 404; rate limiting
// and other non-200 statuses are errors.
func (a *Analyzer) apiGet(ctx context.Context, path string, out any) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+path, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create request")
		return found, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", analyzerUserAgent)
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "request failed")
		return found, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return found, err
	}
	if resp.StatusCode == http.StatusForbidden {
		err = errors.New("GitHub API rate limit exceeded, try again later")
		return found, err
	}
	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("GitHub API returned status %d for %s", resp.StatusCode, path)
		return found, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return found, err
	}
	err = json.Unmarshal(body, out)
	if err != nil {
		err = errors.Wrap(err, "failed to parse response body")
		return found, err
	}

	found = true
	return found, err
}

// extOf returns the lowercase dot-extension of a path, or "".
func extOf(path string) (ext string) {
	filename := path
	if idx := strings.LastIndex(filename, "/"); idx >= 0 {
		filename = filename[idx+1:]
	}
	if idx := strings.LastIndex(filename, "."); idx > 0 {
		ext = strings.ToLower(filename[idx:])
	}
	return ext
}

// truncate caps a string at max runes.
func truncate(s string, max int) (out string) {
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	out = string(runes)
	return out
}
