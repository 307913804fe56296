package sailship

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v r3.Vec) r3.Vec {
	var rVec mat.VecDense
	rVec.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: rVec.AtVec(0), Y: rVec.AtVec(1), Z: rVec.AtVec(2)}
}

// PerifocalFrame returns the matrix whose columns are the P, Q and W axes of an orbit
// with inclination i, argument of periapsis ω and RAAN Ω, expressed in the reference frame
// of its central body. It maps perifocal vectors to that frame.
func PerifocalFrame(i, ω, Ω float64) *mat.Dense {
	var iω, frame mat.Dense
	iω.Mul(R1(-i), R3(-ω))
	frame.Mul(R3(-Ω), &iω)
	return &frame
}
