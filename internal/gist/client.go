// Package gist mirrors the collection files to a GitHub Gist so the data
// survives the machine the tracker runs on.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"habitlog/internal/core"
)

type Client struct {
	baseURL string
	gistID  string
	token   string
	http    *http.Client
}

// NewClient creates a gist client. baseURL is the GitHub API root and is
// only overridden in tests.
func NewClient(baseURL, gistID, token string) *Client {
	return &Client{
		baseURL: baseURL,
		gistID:  gistID,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type gistFile struct {
	Content string `json:"content"`
}

type gistPayload struct {
	Files map[string]gistFile `json:"files"`
}

func (c *Client) url() string {
	return fmt.Sprintf("%s/gists/%s", c.baseURL, c.gistID)
}

func (c *Client) do(req *http.Request) (*gistPayload, error) {
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gist request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gist response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gist API status %d: %s", resp.StatusCode, body)
	}

	var payload gistPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode gist response: %w", err)
	}
	return &payload, nil
}

func (c *Client) fetch(ctx context.Context) (*gistPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(), nil)
	if err != nil {
		return nil, fmt.Errorf("build gist request: %w", err)
	}
	return c.do(req)
}

// Pull returns the collection mapping stored in the named gist file. A file
// that is absent from the gist is an empty collection; a file whose content
// no longer parses is treated the same way, with a warning, matching the
// local store's tolerance for unreadable data.
func (c *Client) Pull(ctx context.Context, filename string) (map[string]core.Record, error) {
	payload, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	file, ok := payload.Files[filename]
	if !ok {
		return map[string]core.Record{}, nil
	}

	data := map[string]core.Record{}
	if err := json.Unmarshal([]byte(file.Content), &data); err != nil {
		slog.WarnContext(ctx, "Gist file is malformed, treating as empty",
			"gist_file", filename,
			"error", err)
		return map[string]core.Record{}, nil
	}
	return data, nil
}

// Push replaces the named gist file with the given mapping. The gist is
// fetched first so files other than the one being updated are preserved
// verbatim in the patch.
func (c *Client) Push(ctx context.Context, filename string, data map[string]core.Record) error {
	current, err := c.fetch(ctx)
	if err != nil {
		return err
	}

	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filename, err)
	}

	update := gistPayload{Files: map[string]gistFile{}}
	for name, file := range current.Files {
		if name != filename {
			update.Files[name] = gistFile{Content: file.Content}
		}
	}
	update.Files[filename] = gistFile{Content: string(content)}

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal gist patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.url(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gist patch: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Pushed collection snapshot to gist",
		"gist_file", filename,
		"records", len(data))
	return nil
}
