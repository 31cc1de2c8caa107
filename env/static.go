package env

import (
	"math/rand"

	"github.com/skylooop/stoix/tensor"
)

// Static is a deterministic environment with a single action, a constant
// observation, and a constant reward, terminating after a fixed number of
// steps. It exists for end-to-end training checks where the environment must
// contribute no variance.
type Static struct {
	ObsDim       int
	Reward       float32
	EpisodeSteps int
}

type staticState struct {
	steps int
}

func NewStatic(obsDim, episodeSteps int, reward float32) *Static {
	return &Static{ObsDim: obsDim, Reward: reward, EpisodeSteps: episodeSteps}
}

func (s *Static) ObservationDim() int { return s.ObsDim }
func (s *Static) ActionDim() int      { return 1 }

func (s *Static) observation() TimeStep {
	obs := tensor.NewZeros(s.ObsDim)
	for i := range obs.Data {
		obs.Data[i] = 1.0
	}
	return TimeStep{Observation: obs}
}

func (s *Static) Reset(_ *rand.Rand) (State, TimeStep) {
	return &staticState{}, s.observation()
}

func (s *Static) Step(state State, _ int) (State, TimeStep) {
	st := state.(*staticState)
	next := &staticState{steps: st.steps + 1}
	ts := s.observation()
	ts.Reward = s.Reward
	ts.Last = next.steps >= s.EpisodeSteps
	return next, ts
}
