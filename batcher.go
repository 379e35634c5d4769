package itemset

import (
	"context"
	"iter"
	"math/rand/v2"
)

type batchOptions struct {
	shuffle bool
	seed    uint64
	hasSeed bool
}

// BatchOption configures Batches.
type BatchOption func(*batchOptions)

// WithoutShuffle yields batches in insertion order instead of a random
// permutation.
func WithoutShuffle() BatchOption {
	return func(o *batchOptions) { o.shuffle = false }
}

// WithSeed fixes the shuffle seed so an epoch is reproducible.
func WithSeed(seed uint64) BatchOption {
	return func(o *batchOptions) {
		o.seed = seed
		o.hasSeed = true
	}
}

// Batches returns a single-pass iterator over batches of item names, in the
// style of a training data loader: one shuffled epoch over the whole dataset,
// yielding up to batchSize strings at a time. The final batch may be short.
//
// When a read fails, the error is yielded once and iteration stops. Batching
// pulls rows through Get, so each yielded string is already HTML-decoded.
func (d *Dataset) Batches(ctx context.Context, batchSize int, opts ...BatchOption) iter.Seq2[[]string, error] {
	bo := batchOptions{shuffle: true}
	for _, opt := range opts {
		opt(&bo)
	}
	if batchSize < 1 {
		batchSize = 1
	}

	return func(yield func([]string, error) bool) {
		n := d.Len()
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		if bo.shuffle {
			seed1, seed2 := rand.Uint64(), rand.Uint64()
			if bo.hasSeed {
				seed1, seed2 = bo.seed, bo.seed
			}
			rng := rand.New(rand.NewPCG(seed1, seed2))
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		batch := make([]string, 0, batchSize)
		for _, idx := range order {
			v, err := d.Get(ctx, idx)
			if err != nil {
				yield(nil, err)
				return
			}
			batch = append(batch, v)
			if len(batch) == batchSize {
				if !yield(batch, nil) {
					return
				}
				batch = make([]string, 0, batchSize)
			}
		}
		if len(batch) > 0 {
			yield(batch, nil)
		}
	}
}
