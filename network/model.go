package network

import (
	"fmt"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/skylooop/stoix/tensor"
)

type LayerKind int

const (
	Dense LayerKind = iota
	LeakyReLU
)

// Layer references its tensors by index into the owning Parameter, so a model
// can be cloned or have restored parameters substituted without rebuilding.
type Layer struct {
	Kind  LayerKind
	W     int
	B     int
	Alpha float32
}

type Backward func(chain blas32.Vector, grad *GradBuffer) (blas32.Vector, error)
type Backwards []Backward

// Propagate walks the backward closures from the output side to the input
// side, accumulating into grad, and returns the gradient with respect to the
// model input.
func (bs Backwards) Propagate(chain blas32.Vector, grad *GradBuffer) (blas32.Vector, error) {
	var err error
	for i := len(bs) - 1; i >= 0; i-- {
		chain, err = bs[i](chain, grad)
		if err != nil {
			return blas32.Vector{}, err
		}
	}
	return chain, nil
}

type Model struct {
	Parameter Parameter
	Layers    []Layer
}

func (m *Model) AppendDense(xn, yn int, rng *rand.Rand) {
	w := tensor.NewHe(xn, yn, rng)
	b := tensor.NewZeros(yn)
	m.Parameter.Weights = append(m.Parameter.Weights, w)
	m.Parameter.Biases = append(m.Parameter.Biases, b)
	m.Layers = append(m.Layers, Layer{
		Kind: Dense,
		W:    len(m.Parameter.Weights) - 1,
		B:    len(m.Parameter.Biases) - 1,
	})
}

func (m *Model) AppendLeakyReLU(alpha float32) {
	m.Layers = append(m.Layers, Layer{Kind: LeakyReLU, Alpha: alpha})
}

func (m Model) Clone() Model {
	return Model{
		Parameter: m.Parameter.Clone(),
		Layers:    slices.Clone(m.Layers),
	}
}

// Propagate runs the forward pass and returns the backward chain for it.
func (m *Model) Propagate(x blas32.Vector) (blas32.Vector, Backwards, error) {
	backwards := make(Backwards, len(m.Layers))
	for i, l := range m.Layers {
		switch l.Kind {
		case Dense:
			w := m.Parameter.Weights[l.W]
			if x.N != w.Rows {
				return blas32.Vector{}, nil, fmt.Errorf("dense layer %d expects input of length %d, got %d", i, w.Rows, x.N)
			}
			in := x
			wIdx, bIdx := l.W, l.B
			x = tensor.Affine(in, w, m.Parameter.Biases[l.B])
			backwards[i] = func(chain blas32.Vector, grad *GradBuffer) (blas32.Vector, error) {
				blas32.Ger(1.0, in, chain, grad.Weights[wIdx])
				blas32.Axpy(1.0, chain, grad.Biases[bIdx])
				dx := tensor.NewZeros(in.N)
				blas32.Gemv(blas.NoTrans, 1.0, w, chain, 0.0, dx)
				return dx, nil
			}
		case LeakyReLU:
			in := x
			alpha := l.Alpha
			y := tensor.NewZeros(in.N)
			for j, e := range in.Data {
				if e > 0 {
					y.Data[j] = e
				} else {
					y.Data[j] = alpha * e
				}
			}
			x = y
			backwards[i] = func(chain blas32.Vector, _ *GradBuffer) (blas32.Vector, error) {
				dx := tensor.NewZeros(in.N)
				for j, e := range in.Data {
					if e > 0 {
						dx.Data[j] = chain.Data[j]
					} else {
						dx.Data[j] = alpha * chain.Data[j]
					}
				}
				return dx, nil
			}
		default:
			return blas32.Vector{}, nil, fmt.Errorf("unknown layer kind %d", l.Kind)
		}
	}
	return x, backwards, nil
}

func (m *Model) Predict(x blas32.Vector) (blas32.Vector, error) {
	y, _, err := m.Propagate(x)
	return y, err
}

// Spec declares an MLP as independently swappable stages: input width, torso
// widths, and a linear head.
type Spec struct {
	Input       int
	TorsoWidths []int
	Output      int
	Alpha       float32
}

func NewMLP(spec Spec, rng *rand.Rand) Model {
	m := Model{}
	in := spec.Input
	for _, width := range spec.TorsoWidths {
		m.AppendDense(in, width, rng)
		m.AppendLeakyReLU(spec.Alpha)
		in = width
	}
	m.AppendDense(in, spec.Output, rng)
	return m
}
