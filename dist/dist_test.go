package dist_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/skylooop/stoix/dist"
)

func TestProbsSumToOne(t *testing.T) {
	c := dist.NewCategorical([]float32{1.5, -0.25, 0.0, 3.0})
	sum := float32(0.0)
	for _, p := range c.Probs() {
		sum += p
	}
	if math32.Abs(sum-1.0) > 1e-5 {
		t.Errorf("probs sum to %v", sum)
	}
}

func TestKLOfIdenticalDistsIsZero(t *testing.T) {
	c := dist.NewCategorical([]float32{0.5, -1.0, 2.0})
	kl := c.KLFrom(c.Probs())
	if math32.Abs(kl) > 1e-5 {
		t.Errorf("kl of dist against itself = %v", kl)
	}
}

func TestEntropyOfUniform(t *testing.T) {
	n := 4
	c := dist.NewCategorical(make([]float32, n))
	want := math32.Log(float32(n))
	if got := c.Entropy(); math32.Abs(got-want) > 1e-5 {
		t.Errorf("entropy = %v, want %v", got, want)
	}
}

func TestDistillationLossDerivative(t *testing.T) {
	logits := []float32{0.3, -0.7, 1.2, 0.1}
	target := dist.NewCategorical([]float32{1.0, 0.0, -0.5, 0.25}).Probs()
	entCoef := float32(0.05)

	c := dist.NewCategorical(logits)
	grad := c.DistillationLossDerivative(target, entCoef)

	h := float32(1e-2)
	for i := range logits {
		plus := append([]float32{}, logits...)
		minus := append([]float32{}, logits...)
		plus[i] += h
		minus[i] -= h
		lp, _, _ := dist.NewCategorical(plus).DistillationLoss(target, entCoef)
		lm, _, _ := dist.NewCategorical(minus).DistillationLoss(target, entCoef)
		numeric := (lp - lm) / (2.0 * h)
		if math32.Abs(grad[i]-numeric) > 1e-3 {
			t.Errorf("grad[%d] = %v, numeric = %v", i, grad[i], numeric)
		}
	}
}
