// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Martin Zimandl <martin.zimandl@gmail.com>
// Copyright 2025 Department of Linguistics,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tosu implements a thin client against the local REST API of
// the tosu host process. It performs no retries of its own - the poll
// cadence is owned entirely by the poll loop.
package tosu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/httpclient"
)

const (
	DfltBaseURL          = "http://127.0.0.1:24050"
	DfltRequestTimeoutMs = 300

	snapshotPath    = "/json/v2"
	beatmapFilePath = "/files/beatmap/file"
)

var (
	// ErrHostUnavailable marks outcomes where the host process is not
	// reachable at all (connection refused, request timeout). It is
	// distinguishable from response parsing problems on purpose - the
	// poll loop reacts to the two differently.
	ErrHostUnavailable = errors.New("tosu host unavailable")

	// ErrNoBeatmap marks a reachable host which currently serves no
	// beatmap file (no chart loaded).
	ErrNoBeatmap = errors.New("no beatmap loaded")
)

type Conf struct {
	BaseURL          string `json:"baseUrl"`
	RequestTimeoutMs int    `json:"requestTimeoutMs"`
}

func (conf *Conf) Validate(context string) error {
	if conf.BaseURL == "" {
		return fmt.Errorf("%s.baseUrl is missing", context)
	}
	if _, err := url.Parse(conf.BaseURL); err != nil {
		return fmt.Errorf("%s.baseUrl is invalid: %w", context, err)
	}
	if conf.RequestTimeoutMs <= 0 {
		return fmt.Errorf("%s.requestTimeoutMs must be > 0", context)
	}
	return nil
}

type Client struct {
	conf   *Conf
	client *http.Client
}

func NewClient(conf *Conf) *Client {
	client := httpclient.New(
		httpclient.WithIdleConnTimeout(time.Duration(60) * time.Second),
	)
	client.Timeout = time.Duration(conf.RequestTimeoutMs) * time.Millisecond
	return &Client{
		conf:   conf,
		client: client,
	}
}

func (c *Client) get(ctx context.Context, urlPath string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.conf.BaseURL+urlPath, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request for %s: %w", urlPath, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w (%s)", urlPath, ErrHostUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("GET %s: %w", urlPath, ErrHostUnavailable)
	}
	return body, resp.StatusCode, nil
}

// Snapshot fetches the current play state (chart labels and mods).
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	body, status, err := c.get(ctx, snapshotPath)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", snapshotPath, status)
	}
	var snap Snapshot
	if err := sonic.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", snapshotPath, err)
	}
	return &snap, nil
}

// BeatmapFile fetches the raw .osu content of the currently loaded chart.
func (c *Client) BeatmapFile(ctx context.Context) ([]byte, error) {
	body, status, err := c.get(ctx, beatmapFilePath)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrNoBeatmap
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", beatmapFilePath, status)
	}
	if len(body) == 0 {
		return nil, ErrNoBeatmap
	}
	return body, nil
}
