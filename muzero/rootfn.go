package muzero

import (
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/skylooop/stoix/network"
	"github.com/skylooop/stoix/search"
)

// MakeRootFn evaluates a real observation: encode, then score the embedding
// with the actor and critic.
func MakeRootFn() search.RootFn {
	return func(params *network.MZParams, observation blas32.Vector) (search.Root, error) {
		embedding, err := params.WorldModel.Representation.Predict(observation)
		if err != nil {
			return search.Root{}, err
		}
		logits, err := params.Prediction.Actor.Predict(embedding)
		if err != nil {
			return search.Root{}, err
		}
		value, err := params.Prediction.Critic.Predict(embedding)
		if err != nil {
			return search.Root{}, err
		}
		return search.Root{
			PriorLogits: logits.Data,
			Value:       value.Data[0],
			Embedding:   embedding,
		}, nil
	}
}

// MakeRecurrentFn simulates one latent step. Discount is fixed at 1 inside
// simulation; real discounting is applied only in target construction.
func MakeRecurrentFn() search.RecurrentFn {
	return func(params *network.MZParams, _ *rand.Rand, action int, embedding blas32.Vector) (search.RecurrentOutput, error) {
		next, reward, err := params.WorldModel.Dynamics.Apply(embedding, action)
		if err != nil {
			return search.RecurrentOutput{}, err
		}
		logits, err := params.Prediction.Actor.Predict(next)
		if err != nil {
			return search.RecurrentOutput{}, err
		}
		value, err := params.Prediction.Critic.Predict(next)
		if err != nil {
			return search.RecurrentOutput{}, err
		}
		return search.RecurrentOutput{
			Reward:        reward,
			Discount:      1.0,
			PriorLogits:   logits.Data,
			Value:         value.Data[0],
			NextEmbedding: next,
		}, nil
	}
}
