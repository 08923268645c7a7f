package conditions

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultAlternativeThreshold is the current-spot score at or above which
	// no alternatives are suggested.
	DefaultAlternativeThreshold = 7
	DefaultMaxAlternatives      = 3
	DefaultFetchTimeout         = 8 * time.Second
	defaultFetchConcurrency     = 4
)

// WeatherFetcher returns current weather at a coordinate.
type WeatherFetcher interface {
	Current(ctx context.Context, lat, lng float64) (*Weather, error)
}

// Current is what is known about the spot the user is looking at.
type Current struct {
	Weather   *Weather
	FishTypes []string
}

type ScoredSpot struct {
	Spot       *models.Spot `json:"spot"`
	Evaluation Evaluation   `json:"evaluation"`
}

// Ranker suggests better spots nearby. The zero value is not usable; use NewRanker.
type Ranker struct {
	Threshold    int
	Limit        int
	FetchTimeout time.Duration
	Concurrency  int64
}

func NewRanker() *Ranker {
	return &Ranker{
		Threshold:    DefaultAlternativeThreshold,
		Limit:        DefaultMaxAlternatives,
		FetchTimeout: DefaultFetchTimeout,
		Concurrency:  defaultFetchConcurrency,
	}
}

// RankAlternatives returns up to Limit candidates that strictly outscore the
// current spot, best first. Ties keep candidate input order. Candidates
// without a valid location or without a fish type in common with the current
// spot are skipped, as is any candidate whose weather fetch fails.
func (r *Ranker) RankAlternatives(ctx context.Context, candidates []*models.Spot, current Current, fetcher WeatherFetcher) []ScoredSpot {
	currentScore := Score(current.Weather, current.FishTypes)
	if currentScore >= r.Threshold {
		return []ScoredSpot{}
	}

	type result struct {
		spot *models.Spot
		eval Evaluation
		ok   bool
	}

	var eligible []*models.Spot
	for _, c := range candidates {
		if c == nil || !c.Location.Valid() || !c.SharesFishType(current.FishTypes) {
			continue
		}
		eligible = append(eligible, c)
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = defaultFetchConcurrency
	}
	sem := semaphore.NewWeighted(concurrency)
	results := make([]result, len(eligible))

	var wg sync.WaitGroup
	for i, spot := range eligible {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, spot *models.Spot) {
			defer wg.Done()
			defer sem.Release(1)

			fetchCtx, cancel := context.WithTimeout(ctx, r.FetchTimeout)
			defer cancel()

			w, err := fetcher.Current(fetchCtx, spot.Location.Lat, spot.Location.Lng)
			if err != nil {
				log.Printf("conditions: weather for spot %s failed: %v", spot.ID, err)
				return
			}
			results[i] = result{spot: spot, eval: Evaluate(w, spot.FishTypes), ok: true}
		}(i, spot)
	}
	wg.Wait()

	out := make([]ScoredSpot, 0, len(results))
	for _, res := range results {
		if !res.ok || res.eval.Score <= currentScore {
			continue
		}
		out = append(out, ScoredSpot{Spot: res.spot, Evaluation: res.eval})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Evaluation.Score > out[j].Evaluation.Score
	})

	limit := r.Limit
	if limit <= 0 {
		limit = DefaultMaxAlternatives
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
