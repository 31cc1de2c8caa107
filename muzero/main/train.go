package main

import (
	"flag"
	"log"

	"gonum.org/v1/gonum/floats"

	"github.com/skylooop/stoix/env"
	"github.com/skylooop/stoix/muzero"
)

func main() {
	var (
		seed         = flag.Int64("seed", 42, "experiment seed")
		numEnvs      = flag.Int("num-envs", 8, "environment rows per replica")
		numReplicas  = flag.Int("num-replicas", 2, "parallel replicas")
		numUpdates   = flag.Int("num-updates", 200, "total update steps")
		numEval      = flag.Int("num-evaluation", 10, "evaluation intervals")
		searchMethod = flag.String("search-method", muzero.SearchMethodMuZero, "search method: muzero or gumbel")
		checkpoint   = flag.String("checkpoint", "", "snapshot path, empty to disable")
		restore      = flag.String("restore", "", "snapshot to restore params from")
	)
	flag.Parse()

	cfg := muzero.Config{
		Seed:                 *seed,
		NumEnvs:              *numEnvs,
		NumReplicas:          *numReplicas,
		RolloutLength:        16,
		WarmupSteps:          16,
		Epochs:               4,
		NumUpdates:           *numUpdates,
		NumEvaluation:        *numEval,
		BufferSize:           2048,
		BatchSize:            16,
		SampleSequenceLength: 8,
		NSteps:               5,
		Gamma:                0.99,
		EntCoef:              0.01,
		VfCoef:               0.5,
		MaxGradNorm:          0.5,
		WorldModelLR:         3e-4,
		ActorLR:              3e-4,
		CriticLR:             3e-4,
		SearchMethod:         *searchMethod,
		NumSimulations:       32,
		MaxDepth:             8,
		SearchC:              1.25,
		GumbelScale:          1.0,
		EmbedDim:             64,
		RepresentationTorso:  []int{128},
		DynamicsTorso:        []int{128},
		ActorTorso:           []int{128},
		CriticTorso:          []int{128},
		Alpha:                0.1,
	}

	learner, err := muzero.NewLearner(env.NewCartPole(), cfg)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	if *restore != "" {
		snap, err := muzero.LoadSnapshot(*restore)
		if err != nil {
			log.Fatalf("restore: %v", err)
		}
		learner.RestoreParams(snap.Params)
		log.Printf("restored params from %s (timestep %d)", *restore, snap.Metadata.Timestep)
	}

	stepsPerInterval := cfg.NumReplicas * cfg.NumUpdatesPerEval() * cfg.RolloutLength * cfg.NumEnvs
	for interval := 0; interval < cfg.NumEvaluation; interval++ {
		out, err := learner.Step()
		if err != nil {
			log.Fatalf("interval %d: %v", interval, err)
		}

		t := stepsPerInterval * (interval + 1)
		last := out.TrainMetrics[len(out.TrainMetrics)-1]
		log.Printf("timestep %d total_loss %.4f value_loss %.4f actor_loss %.4f entropy %.4f reward_loss %.4f",
			t, last.TotalLoss, last.ValueLoss, last.ActorLoss, last.Entropy, last.RewardLoss)

		if len(out.EpisodeMetrics) > 0 {
			returns := make([]float64, len(out.EpisodeMetrics))
			lengths := make([]float64, len(out.EpisodeMetrics))
			for i, m := range out.EpisodeMetrics {
				returns[i] = float64(m.EpisodeReturn)
				lengths[i] = float64(m.EpisodeLength)
			}
			n := float64(len(returns))
			log.Printf("episodes %d mean_return %.2f mean_length %.1f",
				len(returns), floats.Sum(returns)/n, floats.Sum(lengths)/n)
		}

		if *checkpoint != "" {
			snap := muzero.Snapshot{
				Params:   learner.Replicas()[0].Params,
				Metadata: muzero.Metadata{Timestep: t, Config: cfg},
			}
			if err := muzero.SaveSnapshot(*checkpoint, &snap); err != nil {
				log.Fatalf("checkpoint: %v", err)
			}
		}
	}
}
