package gitsync

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAPIBase  = "https://api.github.com"
	contentsTimeout = 20 * time.Second

	// maxWriteAttempts bounds the read-modify-write loop; persistent
	// conflict is surfaced, never spun on.
	maxWriteAttempts = 3
)

// ContentsClient propagates a single ledger mutation to the remote
// immediately through the GitHub contents API, without waiting for the
// next scheduled batch sync. Writes are read-modify-write with the blob
// SHA as an optimistic precondition.
type ContentsClient struct {
	hc      *http.Client
	baseURL string
	owner   string
	repo    string
	branch  string
	token   string
}

func NewContentsClient(owner, repo, branch, token string) *ContentsClient {
	if branch == "" {
		branch = "main"
	}
	return &ContentsClient{
		hc:      &http.Client{Timeout: contentsTimeout},
		baseURL: defaultAPIBase,
		owner:   owner,
		repo:    repo,
		branch:  branch,
		token:   token,
	}
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Get fetches the current file content and its revision SHA. A 404
// returns empty content and SHA, meaning the file does not exist yet.
func (c *ContentsClient) Get(ctx context.Context, path string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", c.baseURL, c.owner, c.repo, path, c.branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	c.setHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	var cr contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, "", fmt.Errorf("decode contents response: %w", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(cr.Content)
	if err != nil {
		//GitHub wraps base64 at 60 columns
		decoded, err = base64.StdEncoding.DecodeString(stripNewlines(cr.Content))
		if err != nil {
			return nil, "", fmt.Errorf("decode content of %s: %w", path, err)
		}
	}
	return decoded, cr.SHA, nil
}

// Update applies modify to the remote file under an optimistic SHA
// precondition. On a concurrent-write conflict the content is re-read
// and the modify retried, up to maxWriteAttempts times.
func (c *ContentsClient) Update(ctx context.Context, path, message string, modify func([]byte) ([]byte, error)) error {
	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, sha, err := c.Get(ctx, path)
		if err != nil {
			return err
		}

		updated, err := modify(current)
		if err != nil {
			return fmt.Errorf("modify %s: %w", path, err)
		}
		if bytes.Equal(updated, current) {
			return nil
		}

		conflict, err := c.put(ctx, path, message, updated, sha)
		if err == nil {
			return nil
		}
		if !conflict {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("update %s: gave up after %d conflicting attempts: %w", path, maxWriteAttempts, lastErr)
}

func (c *ContentsClient) put(ctx context.Context, path, message string, content []byte, sha string) (conflict bool, err error) {
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  c.branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("put %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return false, nil
	case http.StatusConflict, http.StatusUnprocessableEntity, http.StatusPreconditionFailed:
		//someone else wrote between our read and write
		return true, fmt.Errorf("put %s: revision conflict (status %d)", path, resp.StatusCode)
	default:
		return false, fmt.Errorf("put %s: unexpected status %d", path, resp.StatusCode)
	}
}

func (c *ContentsClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func stripNewlines(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			continue
		}
		buf = append(buf, s[i])
	}
	return string(buf)
}
