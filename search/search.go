package search

import (
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/skylooop/stoix/network"
)

// Root is the tree's initial node, evaluated once from a real observation.
type Root struct {
	PriorLogits []float32
	Value       float32
	Embedding   blas32.Vector
}

// RecurrentOutput is one simulated latent step. Discount is fixed at 1 inside
// simulation; real discounting happens only in training target construction.
type RecurrentOutput struct {
	Reward        float32
	Discount      float32
	PriorLogits   []float32
	Value         float32
	NextEmbedding blas32.Vector
}

// Output is what acting consumes: the chosen action, the visit-based improved
// policy, and the root value statistic after search.
type Output struct {
	Action        int
	ActionWeights []float32
	RootValue     float32
}

type RootFn func(params *network.MZParams, observation blas32.Vector) (Root, error)

type RecurrentFn func(params *network.MZParams, rng *rand.Rand, action int, embedding blas32.Vector) (RecurrentOutput, error)

// Apply is the injected search capability. The procedure behind it is opaque;
// only this contract is binding.
type Apply func(params *network.MZParams, rng *rand.Rand, root Root) (Output, error)
