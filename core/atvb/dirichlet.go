package atvb

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	initShape = 100.0
	initRate  = 100.0 // distuv parameterizes by rate; numpy's scale 1/100 is rate 100
)

// dirichletExpectation fills dst with E[log x] for each row of src
// interpreted as a Dirichlet parameter vector:
//
//	dst[i,j] = digamma(src[i,j]) - digamma(sum_j src[i,j])
func dirichletExpectation(dst, src *mat.Dense) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		row := src.RawRowView(i)
		d := mathext.Digamma(floats.Sum(row))
		out := dst.RawRowView(i)
		for j := 0; j < c; j++ {
			out[j] = mathext.Digamma(row[j]) - d
		}
	}
}

// expMatrix fills dst with exp(src) elementwise.
func expMatrix(dst, src *mat.Dense) {
	r, _ := src.Dims()
	for i := 0; i < r; i++ {
		s := src.RawRowView(i)
		o := dst.RawRowView(i)
		for j, x := range s {
			o[j] = math.Exp(x)
		}
	}
}

// gammaMatrix samples an r-by-c matrix elementwise from
// Gamma(100, 1/100), mean 1 with small variance, the standard
// initialization of online variational topic models.  Filling is
// row-major, so equal sources give bit-identical matrices.
func gammaMatrix(r, c int, src rand.Source) *mat.Dense {
	g := distuv.Gamma{Alpha: initShape, Beta: initRate, Src: src}
	m := mat.NewDense(r, c, nil)
	data := m.RawMatrix().Data
	for i := range data {
		data[i] = g.Rand()
	}
	return m
}

func meanAbsDiff(a, b *mat.Dense) float64 {
	x := a.RawMatrix().Data
	y := b.RawMatrix().Data
	s := 0.0
	for i := range x {
		s += math.Abs(x[i] - y[i])
	}
	return s / float64(len(x))
}
