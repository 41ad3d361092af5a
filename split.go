package yoloset

// Deterministic train/validation splitting.

import (
	"math"
	"math/rand"
)

// Names of the dataset splits.
const (
	SplitTrain = "train"
	SplitVal   = "val"
)

// Split is a partition of the resolved pairs into training and validation subsets.
type Split struct {
	Train []Pair
	Val   []Pair
}

// PlanSplit partitions pairs into training and validation subsets.
//
// The validation subset receives round((1-trainRatio) * len(pairs)) pairs, except that training
// keeps at least one pair when any exist, and validation receives at least one pair when there
// are two or more and trainRatio < 1.
//
// The assignment is a pure function of (pairs, trainRatio, seed): the pair indices are shuffled
// with a generator seeded locally from seed and cut at the computed boundary. Equal inputs
// produce the identical split on every run. No class-balance stratification is attempted.
func PlanSplit(pairs []Pair, trainRatio float64, seed int64) (Split, error) {
	if trainRatio <= 0 || trainRatio >= 1 {
		return Split{}, configErrorf("train ratio must be in (0,1), got %v", trainRatio)
	}

	n := len(pairs)
	valCount := int(math.Round((1 - trainRatio) * float64(n)))
	if n >= 1 && n-valCount < 1 {
		valCount = n - 1
	}
	if n >= 2 && valCount == 0 {
		valCount = 1
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	split := Split{
		Train: make([]Pair, 0, n-valCount),
		Val:   make([]Pair, 0, valCount),
	}
	for _, idx := range indices[:n-valCount] {
		split.Train = append(split.Train, pairs[idx])
	}
	for _, idx := range indices[n-valCount:] {
		split.Val = append(split.Val, pairs[idx])
	}

	return split, nil
}
