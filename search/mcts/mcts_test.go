package mcts_test

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/skylooop/stoix/network"
	"github.com/skylooop/stoix/prng"
	"github.com/skylooop/stoix/search"
	"github.com/skylooop/stoix/search/mcts"
)

// stubRecurrent transitions by copying the embedding and paying a reward that
// prefers action 1. Parameters are ignored.
func stubRecurrent(_ *network.MZParams, _ *rand.Rand, action int, embedding blas32.Vector) (search.RecurrentOutput, error) {
	next := blas32.Vector{N: embedding.N, Inc: 1, Data: make([]float32, embedding.N)}
	copy(next.Data, embedding.Data)
	reward := float32(0.0)
	if action == 1 {
		reward = 1.0
	}
	return search.RecurrentOutput{
		Reward:        reward,
		Discount:      1.0,
		PriorLogits:   make([]float32, 3),
		Value:         0.0,
		NextEmbedding: next,
	}, nil
}

func newTestRoot(actionDim int) search.Root {
	return search.Root{
		PriorLogits: make([]float32, actionDim),
		Value:       0.0,
		Embedding:   blas32.Vector{N: 2, Inc: 1, Data: []float32{0.5, -0.5}},
	}
}

func TestActionWeightsAreNormalized(t *testing.T) {
	runner := &mcts.Runner{Recurrent: stubRecurrent, Simulations: 32, MaxDepth: 4, C: 1.25}
	out, err := runner.Search(nil, prng.New(prng.Key(1)), newTestRoot(3))
	if err != nil {
		panic(err)
	}
	if len(out.ActionWeights) != 3 {
		t.Fatalf("len(weights) = %d", len(out.ActionWeights))
	}
	sum := float32(0.0)
	for _, w := range out.ActionWeights {
		if w < 0.0 {
			t.Errorf("negative weight %v", w)
		}
		sum += w
	}
	if math32.Abs(sum-1.0) > 1e-5 {
		t.Errorf("weights sum to %v", sum)
	}
	if out.Action < 0 || out.Action >= 3 {
		t.Errorf("action %d out of range", out.Action)
	}
}

func TestSearchPrefersRewardingAction(t *testing.T) {
	runner := &mcts.Runner{Recurrent: stubRecurrent, Simulations: 128, MaxDepth: 4, C: 1.25}
	out, err := runner.Search(nil, prng.New(prng.Key(2)), newTestRoot(3))
	if err != nil {
		panic(err)
	}
	for i, w := range out.ActionWeights {
		if i != 1 && w >= out.ActionWeights[1] {
			t.Errorf("weight[%d] = %v >= weight[1] = %v", i, w, out.ActionWeights[1])
		}
	}
	if out.RootValue <= 0.0 {
		t.Errorf("root value %v should reflect collected rewards", out.RootValue)
	}
}

func TestGumbelRootPicksMostVisited(t *testing.T) {
	runner := &mcts.Runner{
		Recurrent:   stubRecurrent,
		Simulations: 128,
		MaxDepth:    4,
		C:           1.25,
		GumbelRoot:  true,
		GumbelScale: 0.1,
	}
	out, err := runner.Search(nil, prng.New(prng.Key(3)), newTestRoot(3))
	if err != nil {
		panic(err)
	}
	maxIdx := 0
	for i, w := range out.ActionWeights {
		if w > out.ActionWeights[maxIdx] {
			maxIdx = i
		}
	}
	if out.Action != maxIdx {
		t.Errorf("action = %d, most visited = %d", out.Action, maxIdx)
	}
}
