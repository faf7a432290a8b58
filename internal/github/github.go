// Package github pushes a single file to a repository through the GitHub
// contents API.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// DefaultBranch is used when a request names no branch.
const DefaultBranch = "main"

// ErrMissingToken is returned when neither the request nor the client has
// a token.
var ErrMissingToken = errors.New("GITHUB_TOKEN is not set")

// PushRequest describes one create-or-update of a file.
type PushRequest struct {
	Repo    string // "owner/repo"
	Path    string
	Content string
	Message string
	Branch  string
	// Token overrides the client's token.
	Token string
}

// Client talks to the contents API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient returns a client for the public API using token, usually the
// value of GITHUB_TOKEN.
func NewClient(token string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type contentsEntry struct {
	SHA string `json:"sha"`
}

type putPayload struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		HTMLURL string `json:"html_url"`
	} `json:"content"`
}

// PushFile creates req.Path, or updates it when it already exists, and
// returns the file's web URL.
func (c *Client) PushFile(ctx context.Context, req PushRequest) (string, error) {
	token := req.Token
	if token == "" {
		token = c.Token
	}
	if token == "" {
		return "", errors.WithHint(ErrMissingToken, "export GITHUB_TOKEN or pass --token")
	}
	endpoint, err := c.contentsURL(req.Repo, req.Path)
	if err != nil {
		return "", err
	}
	branch := req.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	sha, err := c.currentSHA(ctx, endpoint, branch, token)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(putPayload{
		Message: req.Message,
		Content: base64.StdEncoding.EncodeToString([]byte(req.Content)),
		Branch:  branch,
		SHA:     sha,
	})
	if err != nil {
		return "", errors.Wrap(err, "encode contents payload")
	}

	resp, err := c.do(ctx, http.MethodPut, endpoint, token, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read contents response")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", errors.Newf("GitHub API returned %d on update: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out putResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", errors.Wrap(err, "parse contents response")
	}
	return out.Content.HTMLURL, nil
}

// currentSHA returns the blob sha of the existing file, or "" when the file
// does not exist yet.
func (c *Client) currentSHA(ctx context.Context, endpoint, branch, token string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, endpoint+"?ref="+url.QueryEscape(branch), token, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read lookup response")
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return "", nil
	case http.StatusOK:
		var entry contentsEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return "", errors.Wrap(err, "parse lookup response")
		}
		return entry.SHA, nil
	}
	return "", errors.Newf("GitHub API returned %d on lookup: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, endpoint)
	}
	return resp, nil
}

func (c *Client) contentsURL(repo, path string) (string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", errors.Newf("repository must look like owner/repo, got %q", repo)
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return "", errors.New("file path is empty")
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		strings.TrimRight(base, "/"), url.PathEscape(owner), url.PathEscape(name), strings.Join(segments, "/")), nil
}
