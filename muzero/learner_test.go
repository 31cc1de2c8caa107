package muzero_test

import (
	"testing"

	"github.com/skylooop/stoix/env"
	"github.com/skylooop/stoix/mlfuncs"
	"github.com/skylooop/stoix/muzero"
)

func newTestConfig() muzero.Config {
	return muzero.Config{
		Seed:                 1,
		NumEnvs:              2,
		NumReplicas:          1,
		RolloutLength:        4,
		WarmupSteps:          8,
		Epochs:               1,
		NumUpdates:           2,
		NumEvaluation:        1,
		BufferSize:           64,
		BatchSize:            2,
		SampleSequenceLength: 4,
		NSteps:               2,
		Gamma:                0.99,
		EntCoef:              0.01,
		VfCoef:               0.5,
		MaxGradNorm:          0.5,
		WorldModelLR:         1e-3,
		ActorLR:              1e-3,
		CriticLR:             1e-3,
		SearchMethod:         muzero.SearchMethodMuZero,
		NumSimulations:       4,
		MaxDepth:             3,
		SearchC:              1.25,
		EmbedDim:             4,
		RepresentationTorso:  []int{8},
		DynamicsTorso:        []int{8},
		ActorTorso:           []int{8},
		CriticTorso:          []int{8},
		Alpha:                0.01,
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*muzero.Config)
	}{
		{"unsupported search method", func(c *muzero.Config) { c.SearchMethod = "alphazero" }},
		{"updates not above evaluations", func(c *muzero.Config) { c.NumUpdates = 1 }},
		{"no environment rows", func(c *muzero.Config) { c.NumEnvs = 0 }},
		{"sequence too short for targets", func(c *muzero.Config) { c.SampleSequenceLength = 1 }},
		{"warmup shorter than sample length", func(c *muzero.Config) { c.WarmupSteps = 2 }},
		{"buffer smaller than sample length", func(c *muzero.Config) { c.BufferSize = 2 }},
		{"non-positive n-step horizon", func(c *muzero.Config) { c.NSteps = 0 }},
	}
	for _, tc := range cases {
		cfg := newTestConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: no error", tc.name)
		}
	}

	cfg := newTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid configuration rejected: %v", err)
	}
}

func TestTrainingStepKeepsLossesFinite(t *testing.T) {
	learner, err := muzero.NewLearner(env.NewStatic(3, 6, 0.5), newTestConfig())
	if err != nil {
		panic(err)
	}
	out, err := learner.Step()
	if err != nil {
		panic(err)
	}

	if len(out.TrainMetrics) == 0 {
		t.Fatalf("no train metrics produced")
	}
	for i, info := range out.TrainMetrics {
		for name, v := range map[string]float32{
			"total":   info.TotalLoss,
			"value":   info.ValueLoss,
			"actor":   info.ActorLoss,
			"entropy": info.Entropy,
			"reward":  info.RewardLoss,
		} {
			if !mlfuncs.IsFinite(v) {
				t.Errorf("update %d: %s loss = %v", i, name, v)
			}
		}
	}

	for _, m := range out.EpisodeMetrics {
		if !m.IsTerminal {
			t.Errorf("non-terminal metrics reported as finished episode")
		}
		if m.EpisodeLength != 6 {
			t.Errorf("episode length %d in a fixed 6 step environment", m.EpisodeLength)
		}
	}
}

func TestReplicasStayBitIdentical(t *testing.T) {
	cfg := newTestConfig()
	cfg.NumReplicas = 2
	learner, err := muzero.NewLearner(env.NewStatic(3, 6, 0.5), cfg)
	if err != nil {
		panic(err)
	}
	if _, err := learner.Step(); err != nil {
		panic(err)
	}

	replicas := learner.Replicas()
	ref := replicas[0].Params.AllParameters()
	for r := 1; r < len(replicas); r++ {
		other := replicas[r].Params.AllParameters()
		for g := range ref {
			for k := range ref[g].Weights {
				for j, w := range ref[g].Weights[k].Data {
					if other[g].Weights[k].Data[j] != w {
						t.Fatalf("replica %d diverged at group %d weight %d element %d", r, g, k, j)
					}
				}
			}
			for k := range ref[g].Biases {
				for j, b := range ref[g].Biases[k].Data {
					if other[g].Biases[k].Data[j] != b {
						t.Fatalf("replica %d diverged at group %d bias %d element %d", r, g, k, j)
					}
				}
			}
		}
	}
}

func TestRestoreParamsOverwritesEveryReplica(t *testing.T) {
	cfg := newTestConfig()
	cfg.NumReplicas = 2
	learner, err := muzero.NewLearner(env.NewStatic(3, 6, 0.5), cfg)
	if err != nil {
		panic(err)
	}

	src := learner.Replicas()[0].Params.Clone()
	src.Prediction.Actor.Parameter.Weights[0].Data[0] = 123.0
	learner.RestoreParams(src)

	for r, state := range learner.Replicas() {
		if got := state.Params.Prediction.Actor.Parameter.Weights[0].Data[0]; got != 123.0 {
			t.Errorf("replica %d actor weight = %v after restore", r, got)
		}
	}
}
