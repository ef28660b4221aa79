package calib

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// residualFunc evaluates the stacked residual vector at parameter x.
type residualFunc func(x [3]float64, r []float64)

const (
	lmInitialDamping = 1e-3
	lmMaxDamping     = 1e12
	lmStepTolerance  = 1e-12
	lmCostTolerance  = 1e-20
	lmGradTolerance  = 1e-10
)

// levenbergMarquardt minimizes the sum of squared residuals of f over the box
// [lower, upper], trust-region style: steps are damped by an adaptive
// Marquardt parameter and projected back into the box. The problem is tiny
// (three parameters, a dozen residuals) so a dense normal-equation solve per
// iteration is fine.
func levenbergMarquardt(f residualFunc, x0, lower, upper [3]float64, m, maxIter int) ([3]float64, error) {
	x := x0
	r := make([]float64, m)
	rTrial := make([]float64, m)

	f(x, r)
	cost := sumSquares(r)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return x, errors.New("non-finite residual at initial guess")
	}

	damping := lmInitialDamping
	jac := mat.NewDense(m, 3, nil)
	jtj := mat.NewDense(3, 3, nil)
	rhs := mat.NewVecDense(3, nil)
	step := mat.NewVecDense(3, nil)
	rVec := mat.NewVecDense(m, nil)
	damped := mat.NewDense(3, 3, nil)

	for iter := 0; iter < maxIter; iter++ {
		numericJacobian(f, x, r, jac, m)

		for i := 0; i < m; i++ {
			rVec.SetVec(i, r[i])
		}
		jtj.Mul(jac.T(), jac)
		// Gauss-Newton right-hand side: solve for the step that reduces
		// ||r + J step||^2, i.e. (J^T J + damping diag) step = -J^T r.
		rhs.MulVec(jac.T(), rVec)
		rhs.ScaleVec(-1, rhs)

		if maxAbsVec(rhs) < lmGradTolerance {
			return x, nil
		}

		improved := false
		for damping <= lmMaxDamping {
			damped.Copy(jtj)
			for i := 0; i < 3; i++ {
				d := jtj.At(i, i)
				if d < 1e-12 {
					d = 1e-12
				}
				damped.Set(i, i, jtj.At(i, i)+damping*d)
			}

			if err := step.SolveVec(damped, rhs); err != nil {
				damping *= 10
				continue
			}

			trial := x
			for i := 0; i < 3; i++ {
				trial[i] += step.AtVec(i)
			}
			clamp(&trial, lower, upper)

			f(trial, rTrial)
			trialCost := sumSquares(rTrial)
			if math.IsNaN(trialCost) || math.IsInf(trialCost, 0) || trialCost >= cost {
				damping *= 10
				continue
			}

			stepNorm := 0.0
			for i := 0; i < 3; i++ {
				d := trial[i] - x[i]
				stepNorm += d * d
			}
			stepNorm = math.Sqrt(stepNorm)

			x = trial
			copy(r, rTrial)
			cost = trialCost
			damping = math.Max(damping/3, 1e-12)
			improved = true

			if stepNorm <= lmStepTolerance*(1+norm3(x)) || cost <= lmCostTolerance {
				return x, nil
			}
			break
		}

		if !improved {
			// Damping exhausted: no direction in the box reduces the cost,
			// so x is the constrained minimum.
			return x, nil
		}
	}

	return x, fmt.Errorf("did not converge within %d iterations", maxIter)
}

// numericJacobian fills jac with forward-difference partials of f at x,
// reusing the residual r already evaluated there.
func numericJacobian(f residualFunc, x [3]float64, r []float64, jac *mat.Dense, m int) {
	pert := make([]float64, m)
	for k := 0; k < 3; k++ {
		h := 1e-6 * math.Max(math.Abs(x[k]), 1)
		xh := x
		xh[k] += h
		f(xh, pert)
		for i := 0; i < m; i++ {
			jac.Set(i, k, (pert[i]-r[i])/h)
		}
	}
}

func sumSquares(r []float64) float64 {
	s := 0.0
	for _, v := range r {
		s += v * v
	}
	return s
}

func norm3(x [3]float64) float64 {
	return math.Sqrt(x[0]*x[0] + x[1]*x[1] + x[2]*x[2])
}

func maxAbsVec(v *mat.VecDense) float64 {
	m := 0.0
	for i := 0; i < v.Len(); i++ {
		if a := math.Abs(v.AtVec(i)); a > m {
			m = a
		}
	}
	return m
}
