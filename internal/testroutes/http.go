package testroutes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) postJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func (c *httpClient) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// submitRoutes pushes every route through a pool of concurrent submitters.
func submitRoutes(ctx context.Context, cfg *Config, routes []Route, stats *Stats) error {
	log.Printf("submitting %d routes with %d workers", len(routes), cfg.Workers)

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/grades"

	routeChan := make(chan Route, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for route := range routeChan {
				if ctx.Err() != nil {
					return
				}
				submitOne(ctx, client, url, route, cfg, stats)
			}
		}()
	}

	for _, r := range routes {
		select {
		case routeChan <- r:
		case <-ctx.Done():
			close(routeChan)
			wg.Wait()
			return fmt.Errorf("submission cancelled: %w", ctx.Err())
		}
	}
	close(routeChan)
	wg.Wait()
	return nil
}

func submitOne(ctx context.Context, client *httpClient, url string, route Route, cfg *Config, stats *Stats) {
	atomic.AddInt64(&stats.Submitted, 1)

	resp, err := client.postJSON(ctx, url, route)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		if cfg.Verbose {
			log.Printf("submit %s failed: %v", route.SubmissionID, err)
		}
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusAccepted:
		atomic.AddInt64(&stats.Accepted, 1)
	case http.StatusOK:
		atomic.AddInt64(&stats.Duplicates, 1)
	case http.StatusTooManyRequests:
		atomic.AddInt64(&stats.Failed, 1)
		// Backpressure; give the queue room before the next job.
		time.Sleep(100 * time.Millisecond)
	default:
		atomic.AddInt64(&stats.Failed, 1)
		if cfg.Verbose {
			log.Printf("submit %s: unexpected status %d", route.SubmissionID, resp.StatusCode)
		}
	}
}
