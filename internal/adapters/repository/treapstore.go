package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/inshape/inshape/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then athleteID ASC, so an in-order traversal yields
// the leaderboard from best to worst with deterministic tie-breaking.
// Priorities are derived from a hash of the athlete id, which keeps the tree
// shape deterministic for a given population.

// scoreScale converts scores to fixed point. Grading scores carry one
// decimal place, so six are plenty for exact comparisons.
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// record stores the fixed-point score plus metadata for an athlete's best.
type record struct {
	score       scoreFP
	activityID  string
	shape       string
	algorithm   string
	letterGrade string
}

type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
}

// less reports whether (aScore, aID) ranks earlier than (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func priority(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	return y
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id)}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	return n
}

func remove(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = remove(n.left, id, score)
	} else {
		n.right = remove(n.right, id, score)
	}
	return n
}

// walk visits entries in rank order until the callback returns false.
func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n) {
		return false
	}
	return walk(n.right, visit)
}

// TreapStore is the in-memory leaderboard.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
}

// NewTreapStore constructs an empty leaderboard.
func NewTreapStore() *TreapStore {
	return &TreapStore{byID: make(map[string]record)}
}

// UpdateBest implements Store.UpdateBest in O(log n) expected time.
func (s *TreapStore) UpdateBest(ctx context.Context, best Best) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	ns := toFixedPoint(best.Score)
	newAthlete := false

	s.mu.Lock()
	if old, ok := s.byID[best.AthleteID]; ok {
		if ns <= old.score {
			s.mu.Unlock()
			return false, nil
		}
		s.root = remove(s.root, best.AthleteID, old.score)
	} else {
		newAthlete = true
	}
	s.byID[best.AthleteID] = record{
		score:       ns,
		activityID:  best.ActivityID,
		shape:       best.Shape,
		algorithm:   best.Algorithm,
		letterGrade: best.LetterGrade,
	}
	s.root = insert(s.root, best.AthleteID, ns)
	total := len(s.byID)
	s.mu.Unlock()

	if newAthlete {
		metrics.UpdateTotalAthletes(total)
	}
	metrics.RecordLeaderboardUpdate()
	return true, nil
}

// Rank implements Store.Rank. Athletes with equal scores share a rank and
// the next distinct score takes the following one (dense ranking).
func (s *TreapStore) Rank(ctx context.Context, athleteID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[athleteID]
	if !ok {
		return Entry{}, ErrNotFound
	}

	rank := 0
	var prev scoreFP
	first := true
	walk(s.root, func(n *node) bool {
		if first || n.score != prev {
			rank++
			prev = n.score
			first = false
		}
		return n.id != athleteID
	})

	return s.entry(athleteID, rec, rank), nil
}

// TopN implements Store.TopN.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	rank := 0
	var prev scoreFP
	walk(s.root, func(nd *node) bool {
		if len(out) == 0 || nd.score != prev {
			rank++
			prev = nd.score
		}
		if rec, ok := s.byID[nd.id]; ok {
			out = append(out, s.entry(nd.id, rec, rank))
		}
		return len(out) < n
	})
	return out, nil
}

// Count implements Store.Count.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *TreapStore) entry(id string, rec record, rank int) Entry {
	return Entry{
		Rank:        rank,
		AthleteID:   id,
		Score:       toFloat(rec.score),
		ActivityID:  rec.activityID,
		Shape:       rec.shape,
		Algorithm:   rec.algorithm,
		LetterGrade: rec.letterGrade,
	}
}
