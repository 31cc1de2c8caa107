package replay

import (
	"fmt"
	"math/rand"
)

// Buffer is an append-only trajectory store indexed by (environment row,
// time). Add appends fixed-length windows per row, overwriting the oldest
// data once the time axis is at capacity. Sample returns random contiguous
// fixed-length subsequences and never mutates the buffer.
type Buffer[T any] struct {
	rows      [][]T
	pos       int
	full      bool
	capacity  int
	sampleLen int
	batchSize int
}

func New[T any](numRows, capacity, sampleLen, batchSize int) (*Buffer[T], error) {
	if numRows <= 0 || capacity <= 0 {
		return nil, fmt.Errorf("buffer needs positive row count and capacity, got %d rows and capacity %d", numRows, capacity)
	}
	if sampleLen <= 0 || sampleLen > capacity {
		return nil, fmt.Errorf("sample length %d must be in [1, %d]", sampleLen, capacity)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	rows := make([][]T, numRows)
	for i := range rows {
		rows[i] = make([]T, capacity)
	}
	return &Buffer[T]{
		rows:      rows,
		capacity:  capacity,
		sampleLen: sampleLen,
		batchSize: batchSize,
	}, nil
}

func (b *Buffer[T]) NumRows() int {
	return len(b.rows)
}

// Len is the filled length of the time axis.
func (b *Buffer[T]) Len() int {
	if b.full {
		return b.capacity
	}
	return b.pos
}

func (b *Buffer[T]) CanSample() bool {
	return b.Len() >= b.sampleLen
}

// Add appends one window per row. All rows advance in lockstep, so every
// window must have the same length.
func (b *Buffer[T]) Add(traj [][]T) error {
	if len(traj) != len(b.rows) {
		return fmt.Errorf("expected %d rows, got %d", len(b.rows), len(traj))
	}
	window := len(traj[0])
	for r, w := range traj {
		if len(w) != window {
			return fmt.Errorf("row %d has window length %d, want %d", r, len(w), window)
		}
	}
	if window > b.capacity {
		return fmt.Errorf("window length %d exceeds capacity %d", window, b.capacity)
	}
	for t := 0; t < window; t++ {
		for r := range b.rows {
			b.rows[r][b.pos] = traj[r][t]
		}
		b.pos++
		if b.pos == b.capacity {
			b.pos = 0
			b.full = true
		}
	}
	return nil
}

// Sample draws batchSize contiguous subsequences of the configured length,
// uniformly over rows and valid start positions. Start positions are chosen
// in logical (oldest to newest) time, so a sequence never spans the overwrite
// seam. Identical rng state yields an identical batch.
func (b *Buffer[T]) Sample(rng *rand.Rand) ([][]T, error) {
	length := b.Len()
	if length < b.sampleLen {
		return nil, fmt.Errorf("buffer holds %d steps, need %d to sample", length, b.sampleLen)
	}
	batch := make([][]T, b.batchSize)
	for i := range batch {
		row := rng.Intn(len(b.rows))
		start := rng.Intn(length - b.sampleLen + 1)
		seq := make([]T, b.sampleLen)
		for t := 0; t < b.sampleLen; t++ {
			seq[t] = b.rows[row][b.physical(start+t)]
		}
		batch[i] = seq
	}
	return batch, nil
}

// physical maps a logical time index (0 = oldest) to a ring position.
func (b *Buffer[T]) physical(logical int) int {
	if !b.full {
		return logical
	}
	return (b.pos + logical) % b.capacity
}
