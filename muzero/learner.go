package muzero

import (
	"sync"

	"github.com/skylooop/stoix/env"
	"github.com/skylooop/stoix/network"
	"github.com/skylooop/stoix/prng"
	"github.com/skylooop/stoix/search"
)

// Learner drives planning-guided acting and joint optimization over two
// parallelism axes: environment rows in lockstep inside each replica, and
// identical replicas whose gradients are averaged before every update.
type Learner struct {
	cfg Config
	env env.Env

	rootFn      search.RootFn
	recurrentFn search.RecurrentFn
	searchApply search.Apply

	replicas []*LearnerState
}

func (l *Learner) Config() Config {
	return l.cfg
}

// Replicas exposes the per-replica learner states, the externally resumable
// unit captured between evaluation intervals.
func (l *Learner) Replicas() []*LearnerState {
	return l.replicas
}

// forEachReplica runs f once per replica concurrently and waits for all of
// them, returning the first error. This is the worker fan-out used by every
// phase; no state is shared between replicas inside f.
func (l *Learner) forEachReplica(f func(i int, state *LearnerState) error) error {
	errCh := make(chan error, len(l.replicas))
	var wg sync.WaitGroup
	for i, state := range l.replicas {
		wg.Add(1)
		go func(i int, state *LearnerState) {
			defer wg.Done()
			errCh <- f(i, state)
		}(i, state)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// allReduceMean averages gradient groups across the replica axis. It is the
// single synchronization point: every replica has finished its local gradient
// computation before the result exists.
func allReduceMean(group []network.GradBuffers) network.GradBuffers {
	total := group[0].Clone()
	for _, g := range group[1:] {
		total.AxpyInPlace(1.0, g)
	}
	total.ScalInPlace(1.0 / float32(len(group)))
	return total
}

func allReduceMeanInfo(infos []LossInfo) LossInfo {
	mean := LossInfo{}
	for _, info := range infos {
		mean.TotalLoss += info.TotalLoss
		mean.ValueLoss += info.ValueLoss
		mean.ActorLoss += info.ActorLoss
		mean.Entropy += info.Entropy
		mean.RewardLoss += info.RewardLoss
	}
	inv := 1.0 / float32(len(infos))
	mean.TotalLoss *= inv
	mean.ValueLoss *= inv
	mean.ActorLoss *= inv
	mean.Entropy *= inv
	mean.RewardLoss *= inv
	return mean
}

// Step runs one evaluation interval: a fixed number of inner iterations, each
// collecting a rollout and then applying a fixed number of update epochs, and
// returns the aggregated metrics. The driver calls it once per interval.
func (l *Learner) Step() (ExperimentOutput, error) {
	out := ExperimentOutput{}
	episodeCh := make([][]env.Metrics, len(l.replicas))

	for update := 0; update < l.cfg.NumUpdatesPerEval(); update++ {
		// COLLECT: every replica rolls out and appends to its own buffer.
		err := l.forEachReplica(func(i int, state *LearnerState) error {
			traj, err := l.rollout(state, l.cfg.RolloutLength)
			if err != nil {
				return err
			}
			var finished []env.Metrics
			for _, window := range traj {
				for _, tr := range window {
					if tr.Info.IsTerminal {
						finished = append(finished, tr.Info)
					}
				}
			}
			episodeCh[i] = finished
			return state.Buffer.Add(traj)
		})
		if err != nil {
			return ExperimentOutput{}, err
		}
		for _, finished := range episodeCh {
			out.EpisodeMetrics = append(out.EpisodeMetrics, finished...)
		}

		// UPDATE: E epochs of sample, local gradients, two-stage mean,
		// then identical optimizer steps on every replica.
		for epoch := 0; epoch < l.cfg.Epochs; epoch++ {
			local := make([]batchGrads, len(l.replicas))
			err := l.forEachReplica(func(i int, state *LearnerState) error {
				sampleKey, rest := state.Key.Next()
				state.Key = rest
				batch, err := state.Buffer.Sample(prng.New(sampleKey))
				if err != nil {
					return err
				}
				grads, err := computeGrads(&l.cfg, &state.Params, batch)
				if err != nil {
					return err
				}
				local[i] = grads
				return nil
			})
			if err != nil {
				return ExperimentOutput{}, err
			}

			actorGroup := make([]network.GradBuffers, len(local))
			criticGroup := make([]network.GradBuffers, len(local))
			worldModelGroup := make([]network.GradBuffers, len(local))
			infos := make([]LossInfo, len(local))
			for i, g := range local {
				actorGroup[i] = g.actor
				criticGroup[i] = g.critic
				worldModelGroup[i] = g.worldModel
				infos[i] = g.info
			}
			meanActor := allReduceMean(actorGroup)
			meanCritic := allReduceMean(criticGroup)
			meanWorldModel := allReduceMean(worldModelGroup)
			out.TrainMetrics = append(out.TrainMetrics, allReduceMeanInfo(infos))

			// Every replica applies the same averaged gradients, so
			// parameters stay bit-identical across the replica axis.
			err = l.forEachReplica(func(_ int, state *LearnerState) error {
				if err := state.OptStates.Actor.Update(
					[]*network.Parameter{&state.Params.Prediction.Actor.Parameter},
					meanActor.Clone(),
				); err != nil {
					return err
				}
				if err := state.OptStates.Critic.Update(
					[]*network.Parameter{&state.Params.Prediction.Critic.Parameter},
					meanCritic.Clone(),
				); err != nil {
					return err
				}
				return state.OptStates.WorldModel.Update(
					state.Params.WorldModel.Parameters(),
					meanWorldModel.Clone(),
				)
			})
			if err != nil {
				return ExperimentOutput{}, err
			}
		}
	}
	return out, nil
}
