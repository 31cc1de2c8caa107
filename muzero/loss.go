package muzero

import (
	"fmt"

	"github.com/skylooop/stoix/dist"
	"github.com/skylooop/stoix/mlfuncs"
	"github.com/skylooop/stoix/multistep"
	"github.com/skylooop/stoix/network"
	"github.com/skylooop/stoix/tensor"
)

// batchGrads are one replica's gradients after batch-axis reduction, in the
// canonical group orders the optimizers were built with.
type batchGrads struct {
	actor      network.GradBuffers
	critic     network.GradBuffers
	worldModel network.GradBuffers
	info       LossInfo
}

// computeGrads evaluates all three losses on a sampled batch of sequences and
// averages the per-row gradients over the batch axis. The reduction is a
// mean: with a single row it is the identity.
func computeGrads(cfg *Config, params *network.MZParams, batch [][]Transition) (batchGrads, error) {
	b := len(batch)
	if b == 0 {
		return batchGrads{}, fmt.Errorf("empty sequence batch")
	}

	actorGrad := params.Prediction.Actor.Parameter.NewGradZerosLike()
	criticGrad := params.Prediction.Critic.Parameter.NewGradZerosLike()
	worldModelGrads := params.WorldModel.NewGradZerosLike()
	info := LossInfo{}

	for _, seq := range batch {
		if err := actorRowGrad(cfg, params, seq, &actorGrad, &info); err != nil {
			return batchGrads{}, err
		}
		if err := criticRowGrad(cfg, params, seq, &criticGrad, &info); err != nil {
			return batchGrads{}, err
		}
		if err := worldModelRowGrad(cfg, params, seq, worldModelGrads, &info); err != nil {
			return batchGrads{}, err
		}
	}

	inv := 1.0 / float32(b)
	actorGrad.ScalInPlace(inv)
	criticGrad.ScalInPlace(inv)
	worldModelGrads.ScalInPlace(inv)
	info.ActorLoss *= inv
	info.Entropy *= inv
	info.ValueLoss *= inv
	info.RewardLoss *= inv
	info.TotalLoss = (info.ActorLoss - cfg.EntCoef*info.Entropy) + info.ValueLoss + info.RewardLoss

	return batchGrads{
		actor:      network.GradBuffers{actorGrad},
		critic:     network.GradBuffers{criticGrad},
		worldModel: worldModelGrads,
		info:       info,
	}, nil
}

// actorRowGrad distills the recorded search policy into the actor. The
// embedding is recomputed with current parameters rather than reusing the
// rollout one; the gradient flows into the actor's own parameters.
func actorRowGrad(cfg *Config, params *network.MZParams, seq []Transition, grad *network.GradBuffer, info *LossInfo) error {
	t := len(seq)
	inv := 1.0 / float32(t)
	for _, tr := range seq {
		embedding, err := params.WorldModel.Representation.Predict(tr.Observation)
		if err != nil {
			return err
		}
		logits, backwards, err := params.Prediction.Actor.Propagate(embedding)
		if err != nil {
			return err
		}
		cat := dist.NewCategorical(logits.Data)
		_, kl, entropy := cat.DistillationLoss(tr.SearchPolicy, cfg.EntCoef)
		info.ActorLoss += inv * kl
		info.Entropy += inv * entropy

		dLogits := cat.DistillationLossDerivative(tr.SearchPolicy, cfg.EntCoef)
		chain := tensor.NewFromSlice(dLogits)
		for i := range chain.Data {
			chain.Data[i] *= inv
		}
		if _, err := backwards.Propagate(chain, grad); err != nil {
			return err
		}
	}
	return nil
}

// criticRowGrad regresses critic predictions onto n-step bootstrap targets.
// The final timestep has no target and is excluded.
func criticRowGrad(cfg *Config, params *network.MZParams, seq []Transition, grad *network.GradBuffer, info *LossInfo) error {
	t := len(seq)
	if t < 2 {
		return fmt.Errorf("sequence of length %d cannot form bootstrap targets", t)
	}
	rewards := make([]float32, t-1)
	discounts := make([]float32, t-1)
	values := make([]float32, t-1)
	for i := 0; i < t-1; i++ {
		rewards[i] = seq[i].Reward
		if seq[i].Done {
			discounts[i] = 0.0
		} else {
			discounts[i] = cfg.Gamma
		}
		values[i] = seq[i+1].SearchValue
	}
	targets, err := multistep.NStepBootstrappedReturns(rewards, discounts, values, cfg.NSteps)
	if err != nil {
		return err
	}

	inv := 1.0 / float32(t-1)
	for i := 0; i < t-1; i++ {
		embedding, err := params.WorldModel.Representation.Predict(seq[i].Observation)
		if err != nil {
			return err
		}
		pred, backwards, err := params.Prediction.Critic.Propagate(embedding)
		if err != nil {
			return err
		}
		v := pred.Data[0]
		info.ValueLoss += cfg.VfCoef * inv * mlfuncs.L2Loss(v, targets[i])

		dv := cfg.VfCoef * inv * mlfuncs.L2LossDerivative(v, targets[i])
		if _, err := backwards.Propagate(tensor.NewFromSlice([]float32{dv}), grad); err != nil {
			return err
		}
	}
	return nil
}

// worldModelRowGrad encodes only the first observation of the window and
// unrolls the dynamics over the recorded actions as a pure left-to-right
// fold. Intermediate real observations are never re-consulted; gradients
// reach the representation solely through the initial encoding.
func worldModelRowGrad(cfg *Config, params *network.MZParams, seq []Transition, grads network.GradBuffers, info *LossInfo) error {
	t := len(seq)
	embedding, reprBackwards, err := params.WorldModel.Representation.Propagate(seq[0].Observation)
	if err != nil {
		return err
	}

	backwards := make([]network.DynamicsBackward, t)
	predicted := make([]float32, t)
	for i := 0; i < t; i++ {
		next, reward, bw, err := params.WorldModel.Dynamics.Propagate(embedding, seq[i].Action)
		if err != nil {
			return err
		}
		predicted[i] = reward
		backwards[i] = bw
		embedding = next
	}

	inv := 1.0 / float32(t)
	for i := 0; i < t; i++ {
		info.RewardLoss += inv * mlfuncs.L2Loss(predicted[i], seq[i].Reward)
	}

	// Backward through the unroll, newest step first, accumulating the
	// embedding chain alongside each step's reward error.
	reprGrad := &grads[0]
	torsoGrad := &grads[1]
	embHeadGrad := &grads[2]
	rewHeadGrad := &grads[3]

	dEmbedding := tensor.NewZeros(cfg.EmbedDim)
	for i := t - 1; i >= 0; i-- {
		dReward := inv * mlfuncs.L2LossDerivative(predicted[i], seq[i].Reward)
		dEmbedding, err = backwards[i](dEmbedding, dReward, torsoGrad, embHeadGrad, rewHeadGrad)
		if err != nil {
			return err
		}
	}
	if _, err := reprBackwards.Propagate(dEmbedding, reprGrad); err != nil {
		return err
	}
	return nil
}
