package dist

import (
	"math/rand"

	"github.com/chewxy/math32"
	orand "github.com/sw965/omw/math/rand"

	"github.com/skylooop/stoix/mlfuncs"
)

// Categorical is a distribution over action indices defined by unnormalized
// logits.
type Categorical struct {
	Logits []float32
}

func NewCategorical(logits []float32) Categorical {
	return Categorical{Logits: logits}
}

func (c Categorical) Probs() []float32 {
	return mlfuncs.Softmax(c.Logits)
}

func (c Categorical) LogProbs() []float32 {
	return mlfuncs.LogSoftmax(c.Logits)
}

func (c Categorical) Entropy() float32 {
	probs := c.Probs()
	logProbs := c.LogProbs()
	h := float32(0.0)
	for i, p := range probs {
		h -= p * logProbs[i]
	}
	return h
}

func (c Categorical) Sample(rng *rand.Rand) int {
	return orand.IntByWeight(c.Probs(), rng)
}

// KLFrom is KL(target ‖ c) for a fixed target probability vector. Entries of
// target that are zero contribute nothing.
func (c Categorical) KLFrom(target []float32) float32 {
	logProbs := c.LogProbs()
	kl := float32(0.0)
	for i, p := range target {
		if p <= 0.0 {
			continue
		}
		kl += p * (math32.Log(p) - logProbs[i])
	}
	return kl
}

// DistillationLoss is KL(target ‖ c) − entCoef·H(c), the actor objective for
// a search-produced policy target.
func (c Categorical) DistillationLoss(target []float32, entCoef float32) (float32, float32, float32) {
	kl := c.KLFrom(target)
	entropy := c.Entropy()
	return kl - entCoef*entropy, kl, entropy
}

// DistillationLossDerivative is the gradient of DistillationLoss with respect
// to the logits:
//
//	∂KL/∂z  = q − p
//	∂H/∂z_k = −q_k·(log q_k + H)
func (c Categorical) DistillationLossDerivative(target []float32, entCoef float32) []float32 {
	probs := c.Probs()
	logProbs := c.LogProbs()
	entropy := float32(0.0)
	for i, p := range probs {
		entropy -= p * logProbs[i]
	}
	grad := make([]float32, len(probs))
	for i, q := range probs {
		grad[i] = (q - target[i]) + entCoef*q*(logProbs[i]+entropy)
	}
	return grad
}
