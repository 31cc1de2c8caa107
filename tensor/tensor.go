package tensor

import (
	"math"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

func NewZeros(n int) blas32.Vector {
	return blas32.Vector{
		N:    n,
		Inc:  1,
		Data: make([]float32, n),
	}
}

func NewZerosLike(vec blas32.Vector) blas32.Vector {
	return NewZeros(vec.N)
}

func NewFromSlice(data []float32) blas32.Vector {
	return blas32.Vector{
		N:    len(data),
		Inc:  1,
		Data: data,
	}
}

func Clone(vec blas32.Vector) blas32.Vector {
	return blas32.Vector{
		N:    vec.N,
		Inc:  1,
		Data: slices.Clone(vec.Data),
	}
}

func Concat(a, b blas32.Vector) blas32.Vector {
	y := NewZeros(a.N + b.N)
	copy(y.Data, a.Data)
	copy(y.Data[a.N:], b.Data)
	return y
}

// Affine is y = wᵀx + b.
func Affine(x blas32.Vector, w blas32.General, b blas32.Vector) blas32.Vector {
	yn := len(b.Data)
	y := blas32.Vector{N: yn, Inc: 1, Data: make([]float32, yn)}
	blas32.Copy(b, y)
	blas32.Gemv(blas.Trans, 1.0, w, x, 1.0, y)
	return y
}

func NewGeneralZeros(rows, cols int) blas32.General {
	return blas32.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float32, rows*cols),
	}
}

func NewGeneralZerosLike(gen blas32.General) blas32.General {
	return NewGeneralZeros(gen.Rows, gen.Cols)
}

func NewHe(rows, cols int, rng *rand.Rand) blas32.General {
	gen := NewGeneralZeros(rows, cols)
	fanIn := float64(rows)
	std := math.Sqrt(2.0 / fanIn)
	for i := range gen.Data {
		gen.Data[i] = float32(rng.NormFloat64() * std)
	}
	return gen
}

func CloneGeneral(gen blas32.General) blas32.General {
	return blas32.General{
		Rows:   gen.Rows,
		Cols:   gen.Cols,
		Stride: gen.Stride,
		Data:   slices.Clone(gen.Data),
	}
}

func GeneralToVector(gen blas32.General) blas32.Vector {
	return blas32.Vector{
		N:    gen.Rows * gen.Cols,
		Inc:  1,
		Data: gen.Data,
	}
}

func ScalGeneral(alpha float32, gen blas32.General) {
	blas32.Scal(alpha, GeneralToVector(gen))
}

func AxpyGeneral(alpha float32, x, y blas32.General) {
	blas32.Axpy(alpha, GeneralToVector(x), GeneralToVector(y))
}
