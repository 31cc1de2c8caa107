package prng_test

import (
	"testing"

	"github.com/skylooop/stoix/prng"
)

func TestSplitIsDeterministic(t *testing.T) {
	key := prng.Key(1234)
	a := key.Split(8)
	b := key.Split(8)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("split diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSubKeysDiffer(t *testing.T) {
	keys := prng.Key(5).Split(64)
	seen := map[prng.Key]bool{}
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate sub-key %v", k)
		}
		seen[k] = true
	}
}

func TestNextThreadsRemainder(t *testing.T) {
	sub1, rest := prng.Key(7).Next()
	sub2, _ := rest.Next()
	if sub1 == sub2 {
		t.Errorf("consecutive draws from the threaded stream repeated")
	}
}

func TestGeneratorsMatchPerKey(t *testing.T) {
	key := prng.Key(42)
	a := prng.New(key)
	b := prng.New(key)
	for i := 0; i < 16; i++ {
		if a.Int63() != b.Int63() {
			t.Fatalf("same key produced different streams at draw %d", i)
		}
	}
}
