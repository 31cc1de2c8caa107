package network

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/skylooop/stoix/tensor"
)

type Parameter struct {
	Weights []blas32.General
	Biases  []blas32.Vector
}

func (p Parameter) NewGradZerosLike() GradBuffer {
	g := GradBuffer{
		Weights: make([]blas32.General, len(p.Weights)),
		Biases:  make([]blas32.Vector, len(p.Biases)),
	}
	for i, w := range p.Weights {
		g.Weights[i] = tensor.NewGeneralZerosLike(w)
	}
	for i, b := range p.Biases {
		g.Biases[i] = tensor.NewZerosLike(b)
	}
	return g
}

func (p Parameter) Clone() Parameter {
	y := Parameter{
		Weights: make([]blas32.General, len(p.Weights)),
		Biases:  make([]blas32.Vector, len(p.Biases)),
	}
	for i, w := range p.Weights {
		y.Weights[i] = tensor.CloneGeneral(w)
	}
	for i, b := range p.Biases {
		y.Biases[i] = tensor.Clone(b)
	}
	return y
}

func (p *Parameter) AxpyInPlaceGrad(alpha float32, grad *GradBuffer) {
	for i := range p.Weights {
		tensor.AxpyGeneral(alpha, grad.Weights[i], p.Weights[i])
	}
	for i := range p.Biases {
		blas32.Axpy(alpha, grad.Biases[i], p.Biases[i])
	}
}

// Copy overwrites p's tensors with src's values. Shapes must match; used when
// substituting restored parameters into freshly built networks.
func (p *Parameter) Copy(src Parameter) {
	for i := range p.Weights {
		copy(p.Weights[i].Data, src.Weights[i].Data)
	}
	for i := range p.Biases {
		copy(p.Biases[i].Data, src.Biases[i].Data)
	}
}

type GradBuffer struct {
	Weights []blas32.General
	Biases  []blas32.Vector
}

func (g GradBuffer) NewZerosLike() GradBuffer {
	y := GradBuffer{
		Weights: make([]blas32.General, len(g.Weights)),
		Biases:  make([]blas32.Vector, len(g.Biases)),
	}
	for i, w := range g.Weights {
		y.Weights[i] = tensor.NewGeneralZerosLike(w)
	}
	for i, b := range g.Biases {
		y.Biases[i] = tensor.NewZerosLike(b)
	}
	return y
}

func (g GradBuffer) Clone() GradBuffer {
	y := GradBuffer{
		Weights: make([]blas32.General, len(g.Weights)),
		Biases:  make([]blas32.Vector, len(g.Biases)),
	}
	for i, w := range g.Weights {
		y.Weights[i] = tensor.CloneGeneral(w)
	}
	for i, b := range g.Biases {
		y.Biases[i] = tensor.Clone(b)
	}
	return y
}

func (g *GradBuffer) AxpyInPlace(alpha float32, x GradBuffer) {
	for i := range g.Weights {
		tensor.AxpyGeneral(alpha, x.Weights[i], g.Weights[i])
	}
	for i := range g.Biases {
		blas32.Axpy(alpha, x.Biases[i], g.Biases[i])
	}
}

func (g *GradBuffer) ScalInPlace(alpha float32) {
	for i := range g.Weights {
		tensor.ScalGeneral(alpha, g.Weights[i])
	}
	for i := range g.Biases {
		blas32.Scal(alpha, g.Biases[i])
	}
}

func (g GradBuffer) SquaredNorm() float32 {
	sum := float32(0.0)
	for _, w := range g.Weights {
		v := tensor.GeneralToVector(w)
		sum += blas32.Dot(v, v)
	}
	for _, b := range g.Biases {
		sum += blas32.Dot(b, b)
	}
	return sum
}

type GradBuffers []GradBuffer

func (gs GradBuffers) NewZerosLike() GradBuffers {
	ys := make(GradBuffers, len(gs))
	for i, g := range gs {
		ys[i] = g.NewZerosLike()
	}
	return ys
}

func (gs GradBuffers) Clone() GradBuffers {
	ys := make(GradBuffers, len(gs))
	for i, g := range gs {
		ys[i] = g.Clone()
	}
	return ys
}

func (gs GradBuffers) AxpyInPlace(alpha float32, xs GradBuffers) {
	for i := range gs {
		gs[i].AxpyInPlace(alpha, xs[i])
	}
}

func (gs GradBuffers) ScalInPlace(alpha float32) {
	for i := range gs {
		gs[i].ScalInPlace(alpha)
	}
}

func (gs GradBuffers) SquaredNorm() float32 {
	sum := float32(0.0)
	for _, g := range gs {
		sum += g.SquaredNorm()
	}
	return sum
}
