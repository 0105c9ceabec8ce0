// Package version checks the configured k3s version against the latest
// published release on GitHub.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/imamik/k3sdeploy/internal/util/retry"
)

const requestTimeout = 10 * time.Second

// Status describes how the configured k3s version relates to the latest
// published release.
type Status struct {
	Current string
	Latest  string
}

// UpToDate reports whether the configured version matches the latest release.
func (s Status) UpToDate() bool {
	return s.Current == s.Latest
}

// ReleaseChecker fetches the latest k3s release tag from a GitHub
// releases endpoint.
type ReleaseChecker struct {
	url    string
	client *http.Client
}

// NewReleaseChecker returns a checker that queries the given
// "releases/latest" API endpoint.
func NewReleaseChecker(url string) *ReleaseChecker {
	return &ReleaseChecker{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Check fetches the latest release tag and compares it with current.
// Transient network failures are retried; a malformed or unexpected
// API response is not.
func (c *ReleaseChecker) Check(ctx context.Context, current string) (Status, error) {
	var latest string
	err := retry.WithExponentialBackoff(ctx, func() error {
		tag, err := c.fetchLatestTag(ctx)
		if err != nil {
			return err
		}
		latest = tag
		return nil
	}, retry.WithMaxRetries(2), retry.WithInitialDelay(time.Second))
	if err != nil {
		return Status{}, err
	}

	return Status{Current: current, Latest: latest}, nil
}

func (c *ReleaseChecker) fetchLatestTag(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", retry.Fatal(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach release endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", retry.Fatal(fmt.Errorf("release endpoint returned %s", resp.Status))
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", retry.Fatal(fmt.Errorf("failed to parse release response: %w", err))
	}
	if release.TagName == "" {
		return "", retry.Fatal(fmt.Errorf("release response has no tag name"))
	}

	return release.TagName, nil
}
