package mlfuncs

import (
	"github.com/chewxy/math32"
	omath "github.com/sw965/omw/math"
)

func Softmax(logits []float32) []float32 {
	max := omath.Max(logits...)
	y := make([]float32, len(logits))
	sum := float32(0.0)
	for i, l := range logits {
		y[i] = math32.Exp(l - max)
		sum += y[i]
	}
	for i := range y {
		y[i] /= sum
	}
	return y
}

func LogSoftmax(logits []float32) []float32 {
	max := omath.Max(logits...)
	sum := float32(0.0)
	for _, l := range logits {
		sum += math32.Exp(l - max)
	}
	logSum := max + math32.Log(sum)
	y := make([]float32, len(logits))
	for i, l := range logits {
		y[i] = l - logSum
	}
	return y
}

func OneHot(idx, n int) []float32 {
	y := make([]float32, n)
	y[idx] = 1.0
	return y
}

// L2Loss is the half squared error, so its derivative is pred - target.
func L2Loss(pred, target float32) float32 {
	d := pred - target
	return 0.5 * d * d
}

func L2LossDerivative(pred, target float32) float32 {
	return pred - target
}

func IsFinite(x float32) bool {
	return !math32.IsNaN(x) && !math32.IsInf(x, 0)
}
