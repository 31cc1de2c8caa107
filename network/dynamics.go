package network

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/skylooop/stoix/mlfuncs"
	"github.com/skylooop/stoix/tensor"
)

// Dynamics is the action-conditioned latent transition model. The input
// processor concatenates the embedding with a one-hot action, the torso is
// shared, and two linear heads emit the next embedding and the predicted
// reward.
type Dynamics struct {
	Torso         Model
	EmbeddingHead Model
	RewardHead    Model
	ActionDim     int
}

type DynamicsSpec struct {
	EmbedDim    int
	ActionDim   int
	TorsoWidths []int
	Alpha       float32
}

func NewDynamics(spec DynamicsSpec, rng *rand.Rand) Dynamics {
	torsoOut := spec.EmbedDim
	if len(spec.TorsoWidths) > 0 {
		torsoOut = spec.TorsoWidths[len(spec.TorsoWidths)-1]
	}
	torso := Model{}
	in := spec.EmbedDim + spec.ActionDim
	for _, width := range spec.TorsoWidths {
		torso.AppendDense(in, width, rng)
		torso.AppendLeakyReLU(spec.Alpha)
		in = width
	}
	if len(spec.TorsoWidths) == 0 {
		torso.AppendDense(in, torsoOut, rng)
		torso.AppendLeakyReLU(spec.Alpha)
	}
	return Dynamics{
		Torso:         torso,
		EmbeddingHead: NewMLP(Spec{Input: torsoOut, Output: spec.EmbedDim, Alpha: spec.Alpha}, rng),
		RewardHead:    NewMLP(Spec{Input: torsoOut, Output: 1, Alpha: spec.Alpha}, rng),
		ActionDim:     spec.ActionDim,
	}
}

func (d Dynamics) Clone() Dynamics {
	return Dynamics{
		Torso:         d.Torso.Clone(),
		EmbeddingHead: d.EmbeddingHead.Clone(),
		RewardHead:    d.RewardHead.Clone(),
		ActionDim:     d.ActionDim,
	}
}

// DynamicsBackward propagates (dNextEmbedding, dReward) back through both
// heads and the torso, accumulating into the three grad buffers, and returns
// the gradient with respect to the input embedding.
type DynamicsBackward func(dNext blas32.Vector, dReward float32, torsoGrad, embGrad, rewGrad *GradBuffer) (blas32.Vector, error)

func (d *Dynamics) Propagate(embedding blas32.Vector, action int) (blas32.Vector, float32, DynamicsBackward, error) {
	if action < 0 || action >= d.ActionDim {
		return blas32.Vector{}, 0.0, nil, fmt.Errorf("action %d out of range [0, %d)", action, d.ActionDim)
	}
	x := tensor.Concat(embedding, tensor.NewFromSlice(mlfuncs.OneHot(action, d.ActionDim)))
	h, torsoBw, err := d.Torso.Propagate(x)
	if err != nil {
		return blas32.Vector{}, 0.0, nil, err
	}
	next, embBw, err := d.EmbeddingHead.Propagate(h)
	if err != nil {
		return blas32.Vector{}, 0.0, nil, err
	}
	rewardVec, rewBw, err := d.RewardHead.Propagate(h)
	if err != nil {
		return blas32.Vector{}, 0.0, nil, err
	}

	embDim := embedding.N
	backward := func(dNext blas32.Vector, dReward float32, torsoGrad, embGrad, rewGrad *GradBuffer) (blas32.Vector, error) {
		dh, err := embBw.Propagate(dNext, embGrad)
		if err != nil {
			return blas32.Vector{}, err
		}
		dhReward, err := rewBw.Propagate(tensor.NewFromSlice([]float32{dReward}), rewGrad)
		if err != nil {
			return blas32.Vector{}, err
		}
		blas32.Axpy(1.0, dhReward, dh)
		dx, err := torsoBw.Propagate(dh, torsoGrad)
		if err != nil {
			return blas32.Vector{}, err
		}
		dEmbedding := blas32.Vector{N: embDim, Inc: 1, Data: dx.Data[:embDim]}
		return dEmbedding, nil
	}
	return next, rewardVec.Data[0], backward, nil
}

func (d *Dynamics) Apply(embedding blas32.Vector, action int) (blas32.Vector, float32, error) {
	next, reward, _, err := d.Propagate(embedding, action)
	return next, reward, err
}
