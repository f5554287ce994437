// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

package feed

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// cfState is the collaborative-filtering cache sub-state: the user×item
// interaction score matrix, the item-item cosine similarity matrix, and
// the id↔index maps for both axes. Immutable once published.
type cfState struct {
	userIndex map[int64]int
	itemIndex map[ItemKey]int

	// users and items are the inverse maps, sorted ascending so index
	// assignment is deterministic for a given interaction snapshot.
	users []int64
	items []ItemKey

	// matrix rows follow users, columns follow items. Zero means no
	// material interaction.
	matrix [][]float64

	// sim is square and symmetric with dimension len(items).
	sim [][]float64

	version uint64
	builtAt time.Time
}

// empty reports whether the state carries no interactions.
func (st *cfState) empty() bool {
	return st == nil || len(st.items) == 0
}

// userRow returns the interaction score row for a user, or nil when the
// user is absent from the matrix.
func (st *cfState) userRow(userID int64) []float64 {
	if st == nil {
		return nil
	}
	row, ok := st.userIndex[userID]
	if !ok {
		return nil
	}
	return st.matrix[row]
}

// InteractionScore derives the scalar score for one interaction record
// as the weighted sum of its signals.
func InteractionScore(in Interaction, w InteractionWeights) float64 {
	score := 0.0
	if in.WatchSeconds > w.WatchShortSeconds {
		score += w.WatchShort
	}
	if in.WatchSeconds > w.WatchLongSeconds {
		score += w.WatchLong
	}
	if in.Completed {
		score += w.Completed
	}
	if in.Liked != nil {
		if *in.Liked {
			score += w.Liked
		} else {
			score += w.Disliked
		}
	}
	if in.Shared {
		score += w.Shared
	}
	if in.Commented {
		score += w.Commented
	}
	return score
}

// buildCFState pivots raw interactions into the user×item score matrix
// and computes item-item cosine similarity over the item columns.
//
// Zero-score records are dropped before the pivot; duplicate (user, item)
// pairs keep the last record seen. Any panic during the pivot or the
// similarity pass is converted into an error so the caller can degrade
// to an empty CF state instead of crashing the process.
func buildCFState(interactions []Interaction, w InteractionWeights, version uint64) (st *cfState, err error) {
	defer func() {
		if r := recover(); r != nil {
			st = nil
			err = fmt.Errorf("%w: %v", ErrCacheBuildFailure, r)
		}
	}()

	scores := make(map[int64]map[ItemKey]float64)
	for _, in := range interactions {
		score := InteractionScore(in, w)
		if score == 0 {
			continue
		}
		row, ok := scores[in.UserID]
		if !ok {
			row = make(map[ItemKey]float64)
			scores[in.UserID] = row
		}
		row[in.Key()] = score
	}

	st = &cfState{
		userIndex: make(map[int64]int, len(scores)),
		itemIndex: make(map[ItemKey]int),
		version:   version,
		builtAt:   time.Now(),
	}
	if len(scores) == 0 {
		return st, nil
	}

	itemSet := make(map[ItemKey]struct{})
	for userID, row := range scores {
		st.users = append(st.users, userID)
		for key := range row {
			itemSet[key] = struct{}{}
		}
	}
	for key := range itemSet {
		st.items = append(st.items, key)
	}
	sort.Slice(st.users, func(i, j int) bool { return st.users[i] < st.users[j] })
	sort.Slice(st.items, func(i, j int) bool { return lessItemKey(st.items[i], st.items[j]) })
	for i, userID := range st.users {
		st.userIndex[userID] = i
	}
	for j, key := range st.items {
		st.itemIndex[key] = j
	}

	st.matrix = make([][]float64, len(st.users))
	for i, userID := range st.users {
		row := make([]float64, len(st.items))
		for key, score := range scores[userID] {
			row[st.itemIndex[key]] = score
		}
		st.matrix[i] = row
	}

	st.sim = itemCosineSimilarity(st.matrix, len(st.items))
	return st, nil
}

// itemCosineSimilarity computes pairwise cosine similarity between the
// columns of the user×item matrix. Items with a zero-norm column have
// similarity 0 to everything, including themselves.
func itemCosineSimilarity(matrix [][]float64, nItems int) [][]float64 {
	norms := make([]float64, nItems)
	for _, row := range matrix {
		for j, v := range row {
			norms[j] += v * v
		}
	}
	for j := range norms {
		norms[j] = math.Sqrt(norms[j])
	}

	sim := make([][]float64, nItems)
	for i := range sim {
		sim[i] = make([]float64, nItems)
	}
	for i := 0; i < nItems; i++ {
		if norms[i] == 0 {
			continue
		}
		for j := i; j < nItems; j++ {
			if norms[j] == 0 {
				continue
			}
			dot := 0.0
			for _, row := range matrix {
				dot += row[i] * row[j]
			}
			s := dot / (norms[i] * norms[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

// lessItemKey orders item keys by kind, then id, for deterministic
// column assignment and tie-breaking.
func lessItemKey(a, b ItemKey) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.ID < b.ID
}
