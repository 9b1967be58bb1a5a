package query

import (
	"cmp"
	"math"
	"slices"
)

// Features are the traits similarity ranking compares.
type Features struct {
	ID string
	// Categories are strong signals, e.g. a track's moods.
	Categories []string
	// Tags are weak signals.
	Tags []string
	// Number is compared within Weights.Tolerance when HasNumber is set on
	// both sides, e.g. tempo.
	Number    float64
	HasNumber bool
	// Parent is the enclosing collection, e.g. the album.
	Parent string
}

// Comparable records can be ranked by Similar.
type Comparable interface {
	Features() Features
}

// Weights configures Similar.
type Weights struct {
	Category  int
	Tag       int
	Proximity int
	Parent    int
	Tolerance float64
	Limit     int
}

// DefaultLimit is used when Weights.Limit is 0 or less.
const DefaultLimit = 5

// DefaultWeights are the weights used for similar tracks.
var DefaultWeights = Weights{
	Category:  3,
	Tag:       1,
	Proximity: 2,
	Parent:    2,
	Tolerance: 10,
	Limit:     DefaultLimit,
}

// Scored pairs a candidate with its score.
type Scored[T any] struct {
	Item  T   `json:"item"`
	Score int `json:"score"`
}

// Score computes how close candidate is to ref.
func Score(ref, candidate Features, w Weights) int {
	score := w.Category*shared(ref.Categories, candidate.Categories) +
		w.Tag*shared(ref.Tags, candidate.Tags)
	if ref.HasNumber && candidate.HasNumber && math.Abs(ref.Number-candidate.Number) <= w.Tolerance {
		score += w.Proximity
	}
	if ref.Parent != "" && ref.Parent == candidate.Parent {
		score += w.Parent
	}
	return score
}

// Similar ranks candidates against ref, best first. The reference itself
// and candidates scoring zero are dropped; equal scores keep candidate order.
// At most w.Limit results are returned.
func Similar[T Comparable](ref T, candidates []T, w Weights) []Scored[T] {
	limit := w.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	rf := ref.Features()
	var out []Scored[T]
	for _, c := range candidates {
		cf := c.Features()
		if cf.ID == rf.ID {
			continue
		}
		if s := Score(rf, cf, w); s > 0 {
			out = append(out, Scored[T]{Item: c, Score: s})
		}
	}
	slices.SortStableFunc(out, func(a, b Scored[T]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Scored[T]{}
	}
	return out
}

// shared counts the distinct values of a present in b.
func shared(a, b []string) int {
	n := 0
	for i, v := range a {
		if slices.Contains(a[:i], v) {
			continue
		}
		if slices.Contains(b, v) {
			n++
		}
	}
	return n
}
