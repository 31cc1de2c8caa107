package optimizer_test

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/skylooop/stoix/network"
	"github.com/skylooop/stoix/optimizer"
	"github.com/skylooop/stoix/prng"
	"github.com/skylooop/stoix/tensor"
)

func TestAdamMinimizesQuadratic(t *testing.T) {
	rng := prng.New(prng.Key(20))
	m := network.NewMLP(network.Spec{Input: 1, Output: 1, Alpha: 0.01}, rng)
	params := []*network.Parameter{&m.Parameter}
	adam := optimizer.NewAdam(params, 0.05, 0.0)

	x := tensor.NewFromSlice([]float32{1.0})
	target := float32(3.0)
	for step := 0; step < 500; step++ {
		y, backwards, err := m.Propagate(x)
		if err != nil {
			panic(err)
		}
		chain := tensor.NewFromSlice([]float32{y.Data[0] - target})
		grad := m.Parameter.NewGradZerosLike()
		if _, err := backwards.Propagate(chain, &grad); err != nil {
			panic(err)
		}
		if err := adam.Update(params, network.GradBuffers{grad}); err != nil {
			panic(err)
		}
	}
	y, err := m.Predict(x)
	if err != nil {
		panic(err)
	}
	if math32.Abs(y.Data[0]-target) > 0.05 {
		t.Errorf("prediction %v did not converge to %v", y.Data[0], target)
	}
}

func TestClippingBoundsGradNorm(t *testing.T) {
	rng := prng.New(prng.Key(21))
	m := network.NewMLP(network.Spec{Input: 2, Output: 2, Alpha: 0.01}, rng)
	params := []*network.Parameter{&m.Parameter}
	adam := optimizer.NewAdam(params, 0.01, 1.0)

	grad := m.Parameter.NewGradZerosLike()
	for i := range grad.Weights[0].Data {
		grad.Weights[0].Data[i] = 100.0
	}
	grads := network.GradBuffers{grad}
	if err := adam.Update(params, grads); err != nil {
		panic(err)
	}
	norm := math32.Sqrt(grads.SquaredNorm())
	if norm > 1.0+1e-4 {
		t.Errorf("clipped grad norm %v exceeds the limit", norm)
	}
}

func TestCloneDecouplesMoments(t *testing.T) {
	rng := prng.New(prng.Key(22))
	m := network.NewMLP(network.Spec{Input: 1, Output: 1, Alpha: 0.01}, rng)
	params := []*network.Parameter{&m.Parameter}
	adam := optimizer.NewAdam(params, 0.01, 0.0)
	clone := adam.Clone()

	grad := m.Parameter.NewGradZerosLike()
	grad.Weights[0].Data[0] = 1.0
	if err := adam.Update(params, network.GradBuffers{grad}); err != nil {
		panic(err)
	}
	if clone.Step != 0 {
		t.Errorf("clone step advanced with the original")
	}
	if clone.M[0].Weights[0].Data[0] != 0.0 {
		t.Errorf("clone first moment shares storage with the original")
	}
}
