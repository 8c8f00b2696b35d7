package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/genesis-launchpad/internal/api"
)

// Snapshot is one poll of the node.
type Snapshot struct {
	Launches   []api.LaunchView
	Pools      []api.PoolView
	Affiliates []api.AffiliateView
	Store      map[string]uint64
	FetchedAt  time.Time
}

// Source produces snapshots; Client is the HTTP implementation.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Client polls the node's read API.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Snapshot fetches every list endpoint concurrently.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		snap  Snapshot
		stats struct {
			Store map[string]uint64 `json:"store"`
		}
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(gCtx, "/api/v1/launches", &snap.Launches) })
	g.Go(func() error { return c.get(gCtx, "/api/v1/pools", &snap.Pools) })
	g.Go(func() error { return c.get(gCtx, "/api/v1/affiliates", &snap.Affiliates) })
	g.Go(func() error { return c.get(gCtx, "/api/v1/stats", &stats) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.Store = stats.Store
	snap.FetchedAt = time.Now()
	return &snap, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("get %s: %s: %s", path, resp.Status, apiErr.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
