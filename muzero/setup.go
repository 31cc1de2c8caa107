package muzero

import (
	"fmt"

	stenv "github.com/skylooop/stoix/env"
	"github.com/skylooop/stoix/network"
	"github.com/skylooop/stoix/optimizer"
	"github.com/skylooop/stoix/prng"
	"github.com/skylooop/stoix/replay"
	"github.com/skylooop/stoix/search"
	"github.com/skylooop/stoix/search/mcts"
)

func makeSearchApply(cfg *Config, recurrent search.RecurrentFn) (search.Apply, error) {
	runner := &mcts.Runner{
		Recurrent:   recurrent,
		Simulations: cfg.NumSimulations,
		MaxDepth:    cfg.MaxDepth,
		C:           cfg.SearchC,
	}
	switch cfg.SearchMethod {
	case SearchMethodMuZero:
	case SearchMethodGumbel:
		runner.GumbelRoot = true
		runner.GumbelScale = cfg.GumbelScale
	default:
		return nil, fmt.Errorf("search method %q not supported", cfg.SearchMethod)
	}
	return runner.Search, nil
}

// NewLearner validates the configuration, builds networks, optimizers,
// buffers, and environment rows for every replica, and runs warmup so that
// sampling is defined from the first update on.
func NewLearner(e stenv.Env, cfg Config) (*Learner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	wrapped := stenv.NewAutoReset(e)
	obsDim := wrapped.ObservationDim()
	actionDim := wrapped.ActionDim()

	keys := prng.Key(uint64(cfg.Seed)).Split(7)
	reprKey, dynKey, actorKey, criticKey := keys[0], keys[1], keys[2], keys[3]
	envKey, warmupKey, stepKey := keys[4], keys[5], keys[6]

	params := network.MZParams{
		Prediction: network.PredictionParams{
			Actor: network.NewMLP(network.Spec{
				Input:       cfg.EmbedDim,
				TorsoWidths: cfg.ActorTorso,
				Output:      actionDim,
				Alpha:       cfg.Alpha,
			}, prng.New(actorKey)),
			Critic: network.NewMLP(network.Spec{
				Input:       cfg.EmbedDim,
				TorsoWidths: cfg.CriticTorso,
				Output:      1,
				Alpha:       cfg.Alpha,
			}, prng.New(criticKey)),
		},
		WorldModel: network.WorldModelParams{
			Representation: network.NewMLP(network.Spec{
				Input:       obsDim,
				TorsoWidths: cfg.RepresentationTorso,
				Output:      cfg.EmbedDim,
				Alpha:       cfg.Alpha,
			}, prng.New(reprKey)),
			Dynamics: network.NewDynamics(network.DynamicsSpec{
				EmbedDim:    cfg.EmbedDim,
				ActionDim:   actionDim,
				TorsoWidths: cfg.DynamicsTorso,
				Alpha:       cfg.Alpha,
			}, prng.New(dynKey)),
		},
	}

	recurrentFn := MakeRecurrentFn()
	searchApply, err := makeSearchApply(&cfg, recurrentFn)
	if err != nil {
		return nil, err
	}

	l := &Learner{
		cfg:         cfg,
		env:         wrapped,
		rootFn:      MakeRootFn(),
		recurrentFn: recurrentFn,
		searchApply: searchApply,
		replicas:    make([]*LearnerState, cfg.NumReplicas),
	}

	envKeys := envKey.Split(cfg.NumReplicas)
	warmupKeys := warmupKey.Split(cfg.NumReplicas)
	stepKeys := stepKey.Split(cfg.NumReplicas)

	for r := 0; r < cfg.NumReplicas; r++ {
		p := params.Clone()
		opt := OptStates{
			WorldModel: optimizer.NewAdam(p.WorldModel.Parameters(), cfg.WorldModelLR, cfg.MaxGradNorm),
			Actor:      optimizer.NewAdam([]*network.Parameter{&p.Prediction.Actor.Parameter}, cfg.ActorLR, cfg.MaxGradNorm),
			Critic:     optimizer.NewAdam([]*network.Parameter{&p.Prediction.Critic.Parameter}, cfg.CriticLR, cfg.MaxGradNorm),
		}
		buffer, err := replay.New[Transition](cfg.NumEnvs, cfg.BufferSize, cfg.SampleSequenceLength, cfg.BatchSize)
		if err != nil {
			return nil, err
		}

		rowKeys := envKeys[r].Split(cfg.NumEnvs)
		envStates := make([]stenv.State, cfg.NumEnvs)
		lastSteps := make([]stenv.TimeStep, cfg.NumEnvs)
		for row := 0; row < cfg.NumEnvs; row++ {
			envStates[row], lastSteps[row] = wrapped.Reset(prng.New(rowKeys[row]))
		}

		l.replicas[r] = &LearnerState{
			Params:    p,
			OptStates: opt,
			Buffer:    buffer,
			Key:       warmupKeys[r],
			EnvStates: envStates,
			LastSteps: lastSteps,
		}
	}

	if err := l.forEachReplica(func(_ int, state *LearnerState) error {
		return l.warmup(state)
	}); err != nil {
		return nil, err
	}
	// Switch every replica to its training key stream after warmup.
	for r, state := range l.replicas {
		state.Key = stepKeys[r]
	}
	return l, nil
}

// RestoreParams substitutes restored parameters into every replica's fresh
// learner state. Optimizer states and buffers are untouched.
func (l *Learner) RestoreParams(src network.MZParams) {
	for _, state := range l.replicas {
		dst := state.Params.AllParameters()
		from := src.AllParameters()
		for i := range dst {
			dst[i].Copy(*from[i])
		}
	}
}
