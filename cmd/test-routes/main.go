// Command test-routes generates synthetic GPS routes, submits them to a
// running service and verifies the leaderboard.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/inshape/inshape/internal/testroutes"
)

const (
	defaultNumRoutes   = 500
	defaultTopN        = 50
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numRoutes = flag.Int("routes", defaultNumRoutes, "Number of routes to generate and submit")
		topN      = flag.Int("top", defaultTopN, "Number of top entries to fetch from the leaderboard")
		workers   = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &testroutes.Config{
		BaseURL:   *baseURL,
		NumRoutes: *numRoutes,
		TopN:      *topN,
		Workers:   *workers,
		Timeout:   *timeout,
		Verbose:   *verbose,
	}

	if err := testroutes.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
