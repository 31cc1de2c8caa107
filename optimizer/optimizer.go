package optimizer

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/skylooop/stoix/network"
)

// Adam applies global-norm gradient clipping followed by adaptive moment
// estimation over a fixed list of parameter groups. One Adam value is the
// complete optimizer state for one objective.
type Adam struct {
	LearningRate float32
	Beta1        float32
	Beta2        float32
	Eps          float32
	MaxGradNorm  float32

	Step int
	M    network.GradBuffers
	V    network.GradBuffers
}

func NewAdam(params []*network.Parameter, lr, maxGradNorm float32) *Adam {
	m := make(network.GradBuffers, len(params))
	v := make(network.GradBuffers, len(params))
	for i, p := range params {
		m[i] = p.NewGradZerosLike()
		v[i] = p.NewGradZerosLike()
	}
	return &Adam{
		LearningRate: lr,
		Beta1:        0.9,
		Beta2:        0.999,
		Eps:          1e-5,
		MaxGradNorm:  maxGradNorm,
		M:            m,
		V:            v,
	}
}

func (a *Adam) Clone() *Adam {
	y := *a
	y.M = a.M.Clone()
	y.V = a.V.Clone()
	return &y
}

// Update clips grads in place, advances the moments, and applies the step to
// params. The grads must follow the same group order the optimizer was built
// with.
func (a *Adam) Update(params []*network.Parameter, grads network.GradBuffers) error {
	if len(params) != len(a.M) || len(grads) != len(a.M) {
		return fmt.Errorf("optimizer built for %d parameter groups, got %d params and %d grads", len(a.M), len(params), len(grads))
	}

	norm := math32.Sqrt(grads.SquaredNorm())
	if a.MaxGradNorm > 0 && norm > a.MaxGradNorm {
		grads.ScalInPlace(a.MaxGradNorm / norm)
	}

	a.Step++
	c1 := 1.0 - math32.Pow(a.Beta1, float32(a.Step))
	c2 := 1.0 - math32.Pow(a.Beta2, float32(a.Step))

	for i, p := range params {
		update := func(m, v, g, w []float32) {
			for j := range g {
				m[j] = a.Beta1*m[j] + (1.0-a.Beta1)*g[j]
				v[j] = a.Beta2*v[j] + (1.0-a.Beta2)*g[j]*g[j]
				mHat := m[j] / c1
				vHat := v[j] / c2
				w[j] -= a.LearningRate * mHat / (math32.Sqrt(vHat) + a.Eps)
			}
		}
		for k := range p.Weights {
			update(a.M[i].Weights[k].Data, a.V[i].Weights[k].Data, grads[i].Weights[k].Data, p.Weights[k].Data)
		}
		for k := range p.Biases {
			update(a.M[i].Biases[k].Data, a.V[i].Biases[k].Data, grads[i].Biases[k].Data, p.Biases[k].Data)
		}
	}
	return nil
}
