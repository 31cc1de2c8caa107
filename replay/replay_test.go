package replay_test

import (
	"testing"

	"github.com/skylooop/stoix/prng"
	"github.com/skylooop/stoix/replay"
)

type record struct {
	Row    int
	Step   int
	Reward float32
}

func fill(t *testing.T, b *replay.Buffer[record], rows, window, offset int) {
	traj := make([][]record, rows)
	for r := range traj {
		traj[r] = make([]record, window)
		for i := range traj[r] {
			traj[r][i] = record{Row: r, Step: offset + i, Reward: float32(offset+i) * 0.5}
		}
	}
	if err := b.Add(traj); err != nil {
		panic(err)
	}
	_ = t
}

func TestRoundTrip(t *testing.T) {
	b, err := replay.New[record](2, 16, 4, 8)
	if err != nil {
		panic(err)
	}
	fill(t, b, 2, 8, 0)

	batch, err := b.Sample(prng.New(1))
	if err != nil {
		panic(err)
	}
	for _, seq := range batch {
		if len(seq) != 4 {
			t.Fatalf("sequence length %d, want 4", len(seq))
		}
		row := seq[0].Row
		for i, rec := range seq {
			if rec.Row != row {
				t.Errorf("sequence mixes rows %d and %d", row, rec.Row)
			}
			if rec.Step != seq[0].Step+i {
				t.Errorf("window reordered: step %d at position %d after start %d", rec.Step, i, seq[0].Step)
			}
			if rec.Reward != float32(rec.Step)*0.5 {
				t.Errorf("field corrupted in round trip: %+v", rec)
			}
		}
	}
}

func TestSampleIsPure(t *testing.T) {
	b, err := replay.New[record](2, 16, 4, 8)
	if err != nil {
		panic(err)
	}
	fill(t, b, 2, 8, 0)

	key := prng.Key(99)
	first, err := b.Sample(prng.New(key))
	if err != nil {
		panic(err)
	}
	second, err := b.Sample(prng.New(key))
	if err != nil {
		panic(err)
	}

	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("identical keys produced different batches at [%d][%d]", i, j)
			}
		}
	}
	if b.Len() != 8 {
		t.Errorf("sampling mutated the buffer: length %d, want 8", b.Len())
	}
}

func TestRingOverwrite(t *testing.T) {
	b, err := replay.New[record](1, 8, 2, 4)
	if err != nil {
		panic(err)
	}
	fill(t, b, 1, 8, 0)
	fill(t, b, 1, 4, 8) // overwrites steps 0..3

	if b.Len() != 8 {
		t.Fatalf("length %d, want 8 at capacity", b.Len())
	}

	// Every sampled step must come from the surviving range [4, 12) and stay
	// contiguous in logical time.
	batch, err := b.Sample(prng.New(7))
	if err != nil {
		panic(err)
	}
	for _, seq := range batch {
		for i, rec := range seq {
			if rec.Step < 4 || rec.Step >= 12 {
				t.Errorf("sampled overwritten step %d", rec.Step)
			}
			if i > 0 && rec.Step != seq[i-1].Step+1 {
				t.Errorf("non-contiguous steps %d then %d", seq[i-1].Step, rec.Step)
			}
		}
	}
}

func TestUnderfilledSample(t *testing.T) {
	b, err := replay.New[record](1, 8, 4, 2)
	if err != nil {
		panic(err)
	}
	fill(t, b, 1, 2, 0)
	if b.CanSample() {
		t.Errorf("CanSample true with 2 of 4 required steps")
	}
	if _, err := b.Sample(prng.New(1)); err == nil {
		t.Errorf("expected error sampling an underfilled buffer")
	}
}
