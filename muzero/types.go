package muzero

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/skylooop/stoix/env"
	"github.com/skylooop/stoix/network"
	"github.com/skylooop/stoix/optimizer"
	"github.com/skylooop/stoix/prng"
	"github.com/skylooop/stoix/replay"
)

// Transition is one timestep record. SearchPolicy is a probability vector of
// action-space length. BehaviourValue is a recorded diagnostic; no loss
// consumes it.
type Transition struct {
	Done           bool
	Action         int
	BehaviourValue float32
	Reward         float32
	SearchValue    float32
	SearchPolicy   []float32
	Observation    blas32.Vector
	Info           env.Metrics
}

// OptStates holds one optimizer per objective, mutated in lockstep with the
// parameter subtree it owns.
type OptStates struct {
	WorldModel *optimizer.Adam
	Actor      *optimizer.Adam
	Critic     *optimizer.Adam
}

func (o OptStates) Clone() OptStates {
	return OptStates{
		WorldModel: o.WorldModel.Clone(),
		Actor:      o.Actor.Clone(),
		Critic:     o.Critic.Clone(),
	}
}

// LearnerState is the complete restartable snapshot of one replica.
type LearnerState struct {
	Params    network.MZParams
	OptStates OptStates
	Buffer    *replay.Buffer[Transition]
	Key       prng.Key
	EnvStates []env.State
	LastSteps []env.TimeStep
}

type LossInfo struct {
	TotalLoss  float32
	ValueLoss  float32
	ActorLoss  float32
	Entropy    float32
	RewardLoss float32
}

// ExperimentOutput is what one evaluation interval hands back to the driver.
type ExperimentOutput struct {
	EpisodeMetrics []env.Metrics
	TrainMetrics   []LossInfo
}
