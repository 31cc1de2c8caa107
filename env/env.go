package env

import (
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"
)

// State is the opaque per-row environment state, threaded functionally
// through Reset and Step.
type State any

type Metrics struct {
	EpisodeReturn float32
	EpisodeLength int
	IsTerminal    bool
}

type TimeStep struct {
	Observation blas32.Vector
	Reward      float32
	Last        bool
	Metrics     Metrics
}

type Env interface {
	Reset(rng *rand.Rand) (State, TimeStep)
	Step(state State, action int) (State, TimeStep)
	ObservationDim() int
	ActionDim() int
}
