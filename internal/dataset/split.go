package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// SplitOptions configures a manifest split. Ratios must sum to 1.
type SplitOptions struct {
	Seed        int64
	Train       float64
	Val         float64
	Test        float64
	LabeledOnly bool
}

// DefaultSplitOptions returns the standard 80/10/10 split.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{
		Seed:  42,
		Train: 0.8,
		Val:   0.1,
		Test:  0.1,
	}
}

// Split shuffles the rows with the seeded generator and partitions them
// into train/val/test. Configuration errors (ratios not summing to 1,
// nothing to split) fail fast with no partial output.
func Split(rows []Row, opts SplitOptions) (train, val, test []Row, err error) {
	if math.Abs(opts.Train+opts.Val+opts.Test-1.0) > 1e-6 {
		return nil, nil, nil, fmt.Errorf("train + val + test must sum to 1.0, got %g",
			opts.Train+opts.Val+opts.Test)
	}

	if opts.LabeledOnly {
		var labeled []Row
		for _, row := range rows {
			if row.Labeled {
				labeled = append(labeled, row)
			}
		}
		rows = labeled
	}

	total := len(rows)
	if total == 0 {
		return nil, nil, nil, fmt.Errorf("no rows found to split")
	}

	shuffled := make([]Row, total)
	copy(shuffled, rows)
	rng := rand.New(rand.NewSource(opts.Seed))
	rng.Shuffle(total, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTrain := int(float64(total) * opts.Train)
	nVal := int(float64(total) * opts.Val)

	train = shuffled[:nTrain]
	val = shuffled[nTrain : nTrain+nVal]
	test = shuffled[nTrain+nVal:]
	return train, val, test, nil
}
