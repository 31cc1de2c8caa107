package env

import "math/rand"

// AutoReset wraps an environment so that a terminal step is immediately
// followed by a fresh episode, while the TimeStep of the terminal transition
// still carries Last and the completed episode's metrics. Each row carries
// its own rng so resets stay deterministic per key.
type AutoReset struct {
	Inner Env
}

type autoResetState struct {
	inner         State
	rng           *rand.Rand
	episodeReturn float32
	episodeLength int
}

func NewAutoReset(inner Env) *AutoReset {
	return &AutoReset{Inner: inner}
}

func (a *AutoReset) ObservationDim() int {
	return a.Inner.ObservationDim()
}

func (a *AutoReset) ActionDim() int {
	return a.Inner.ActionDim()
}

func (a *AutoReset) Reset(rng *rand.Rand) (State, TimeStep) {
	inner, ts := a.Inner.Reset(rng)
	state := &autoResetState{inner: inner, rng: rng}
	ts.Metrics = Metrics{}
	return state, ts
}

func (a *AutoReset) Step(state State, action int) (State, TimeStep) {
	s := state.(*autoResetState)
	inner, ts := a.Inner.Step(s.inner, action)

	episodeReturn := s.episodeReturn + ts.Reward
	episodeLength := s.episodeLength + 1

	if !ts.Last {
		next := &autoResetState{
			inner:         inner,
			rng:           s.rng,
			episodeReturn: episodeReturn,
			episodeLength: episodeLength,
		}
		ts.Metrics = Metrics{
			EpisodeReturn: episodeReturn,
			EpisodeLength: episodeLength,
		}
		return next, ts
	}

	// Terminal: report the finished episode, restart the row in place. The
	// returned observation is the first of the new episode.
	freshInner, freshTs := a.Inner.Reset(s.rng)
	next := &autoResetState{inner: freshInner, rng: s.rng}
	ts.Observation = freshTs.Observation
	ts.Metrics = Metrics{
		EpisodeReturn: episodeReturn,
		EpisodeLength: episodeLength,
		IsTerminal:    true,
	}
	return next, ts
}
