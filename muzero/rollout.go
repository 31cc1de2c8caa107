package muzero

import (
	"github.com/skylooop/stoix/prng"
	"github.com/skylooop/stoix/tensor"
)

// rollout advances all environment rows of one replica for the given number
// of steps, acting through search, and returns the collected windows indexed
// [row][time]. Each step consumes a fresh policy sub-key; the remainder stays
// threaded through the learner state.
func (l *Learner) rollout(state *LearnerState, steps int) ([][]Transition, error) {
	numEnvs := len(state.EnvStates)
	traj := make([][]Transition, numEnvs)
	for row := range traj {
		traj[row] = make([]Transition, 0, steps)
	}

	for step := 0; step < steps; step++ {
		policyKey, rest := state.Key.Next()
		state.Key = rest
		rowKeys := policyKey.Split(numEnvs)

		for row := 0; row < numEnvs; row++ {
			obs := tensor.Clone(state.LastSteps[row].Observation)

			root, err := l.rootFn(&state.Params, obs)
			if err != nil {
				return nil, err
			}
			out, err := l.searchApply(&state.Params, prng.New(rowKeys[row]), root)
			if err != nil {
				return nil, err
			}
			// Diagnostic critic evaluation of the current embedding.
			behaviourValue, err := state.Params.Prediction.Critic.Predict(root.Embedding)
			if err != nil {
				return nil, err
			}

			envState, ts := l.env.Step(state.EnvStates[row], out.Action)
			state.EnvStates[row] = envState
			state.LastSteps[row] = ts

			traj[row] = append(traj[row], Transition{
				Done:           ts.Last,
				Action:         out.Action,
				BehaviourValue: behaviourValue.Data[0],
				Reward:         ts.Reward,
				SearchValue:    out.RootValue,
				SearchPolicy:   out.ActionWeights,
				Observation:    obs,
				Info:           ts.Metrics,
			})
		}
	}
	return traj, nil
}

// warmup pre-fills the buffer past the minimum sample length with the exact
// acting loop of training, with no parameter updates. Run once per replica at
// initialization.
func (l *Learner) warmup(state *LearnerState) error {
	traj, err := l.rollout(state, l.cfg.WarmupSteps)
	if err != nil {
		return err
	}
	return state.Buffer.Add(traj)
}
