package testroutes

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Entry mirrors the leaderboard wire format.
type Entry struct {
	Rank        int     `json:"rank"`
	AthleteID   string  `json:"athlete_id"`
	Score       float64 `json:"score"`
	ActivityID  string  `json:"activity_id"`
	Shape       string  `json:"shape"`
	Algorithm   string  `json:"algorithm"`
	LetterGrade string  `json:"letter_grade"`
}

// Run generates routes, submits them, waits for grading to settle and then
// verifies the leaderboard ordering.
func Run(ctx context.Context, cfg *Config) error {
	start := time.Now()
	stats := &Stats{}

	log.Printf("generating %d synthetic routes", cfg.NumRoutes)
	routes := generateRoutes(cfg.NumRoutes)
	stats.Generated = int64(len(routes))

	if err := submitRoutes(ctx, cfg, routes, stats); err != nil {
		return err
	}

	if err := waitForDrain(ctx, cfg); err != nil {
		return err
	}

	entries, err := fetchLeaderboard(ctx, cfg)
	if err != nil {
		return err
	}
	if err := verifyOrdering(entries); err != nil {
		return err
	}

	stats.Elapsed = time.Since(start)
	report(stats, entries)
	return nil
}

// waitForDrain polls /stats until the submission queue is empty.
func waitForDrain(ctx context.Context, cfg *Config) error {
	client := newHTTPClient(cfg.Timeout)
	deadline := time.Now().Add(2 * time.Minute)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var stats map[string]any
		if err := client.getJSON(ctx, cfg.BaseURL+"/stats", &stats); err != nil {
			return fmt.Errorf("polling stats: %w", err)
		}
		if qlen, ok := stats["queue_length"].(float64); ok && qlen == 0 {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("queue did not drain in time")
}

func fetchLeaderboard(ctx context.Context, cfg *Config) ([]Entry, error) {
	client := newHTTPClient(cfg.Timeout)
	url := fmt.Sprintf("%s/leaderboard?limit=%d", cfg.BaseURL, cfg.TopN)

	var entries []Entry
	if err := client.getJSON(ctx, url, &entries); err != nil {
		return nil, fmt.Errorf("fetching leaderboard: %w", err)
	}
	return entries, nil
}

// verifyOrdering checks that scores are non-increasing and ranks
// non-decreasing down the board.
func verifyOrdering(entries []Entry) error {
	for i := 1; i < len(entries); i++ {
		if entries[i].Score > entries[i-1].Score {
			return fmt.Errorf("leaderboard out of order at position %d: %.1f > %.1f",
				i, entries[i].Score, entries[i-1].Score)
		}
		if entries[i].Rank < entries[i-1].Rank {
			return fmt.Errorf("ranks out of order at position %d: %d < %d",
				i, entries[i].Rank, entries[i-1].Rank)
		}
	}
	return nil
}

func report(stats *Stats, entries []Entry) {
	log.Printf("done in %s: %d generated, %d submitted, %d accepted, %d duplicates, %d failed",
		stats.Elapsed.Round(time.Millisecond),
		stats.Generated, stats.Submitted, stats.Accepted, stats.Duplicates, stats.Failed)

	top := len(entries)
	if top > 10 {
		top = 10
	}
	for _, e := range entries[:top] {
		log.Printf("  #%d %s %.1f (%s, %s)", e.Rank, e.AthleteID, e.Score, e.Shape, e.LetterGrade)
	}
}
