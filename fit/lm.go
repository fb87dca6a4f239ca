package fit

import (
	"math"

	"github.com/cwbudde/algo-psd/internal/numeric"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	logTauMin = -40.0
	logTauMax = 40.0

	lambdaInit = 1e-3
	lambdaMax  = 1e16
	tinyCost   = 1e-30
)

// problem holds one fitting job. Parameters are laid out as
// [A_0, u_0, A_1, u_1, ...] with u_i = log τ_i.
type problem struct {
	x, y         []float64
	terms        int
	ampLo, ampHi float64
}

// cost fills resid with model-minus-data and returns ½·Σ resid².
func (p *problem) cost(params, resid []float64) float64 {
	var sum float64
	for j, xj := range p.x {
		var model float64
		for i := 0; i < p.terms; i++ {
			model += params[2*i] * math.Exp(-xj*math.Exp(-params[2*i+1]))
		}

		r := model - p.y[j]
		resid[j] = r
		sum += r * r
	}

	return 0.5 * sum
}

// jacobian writes ∂resid/∂params into jac.
func (p *problem) jacobian(params []float64, jac *mat.Dense) {
	for j, xj := range p.x {
		for i := 0; i < p.terms; i++ {
			amp := params[2*i]
			rate := math.Exp(-params[2*i+1])
			e := math.Exp(-xj * rate)

			jac.Set(j, 2*i, e)
			jac.Set(j, 2*i+1, amp*xj*rate*e)
		}
	}
}

// project clamps params onto the feasible box.
func (p *problem) project(params []float64) {
	for i := 0; i < p.terms; i++ {
		params[2*i] = numeric.Clamp(params[2*i], p.ampLo, p.ampHi)
		params[2*i+1] = numeric.Clamp(params[2*i+1], logTauMin, logTauMax)
	}
}

// projectedGradient zeroes gradient components that point out of the box.
func (p *problem) projectedGradient(params, grad []float64) float64 {
	var largest float64
	for k, g := range grad {
		lo, hi := logTauMin, logTauMax
		if k%2 == 0 {
			lo, hi = p.ampLo, p.ampHi
		}

		if (params[k] <= lo && g > 0) || (params[k] >= hi && g < 0) {
			continue
		}

		largest = math.Max(largest, math.Abs(g))
	}

	return largest
}

// solve runs projected Levenberg–Marquardt from start.
func (p *problem) solve(start []float64, maxIter int, tol float64) Result {
	k := 2 * p.terms
	m := len(p.x)

	params := append([]float64(nil), start...)
	p.project(params)

	resid := make([]float64, m)
	cost := p.cost(params, resid)
	if !numeric.Finite(cost) {
		return Unusable(p.terms, Failed)
	}

	jac := mat.NewDense(m, k, nil)
	normal := mat.NewSymDense(k, nil)
	damped := mat.NewSymDense(k, nil)
	grad := mat.NewVecDense(k, nil)
	delta := mat.NewVecDense(k, nil)
	trial := make([]float64, k)
	trialResid := make([]float64, m)

	var chol mat.Cholesky

	lambda := lambdaInit

	for iter := 1; iter <= maxIter; iter++ {
		p.jacobian(params, jac)
		normal.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(m, resid))

		if cost <= tinyCost || p.projectedGradient(params, grad.RawVector().Data) <= tol*math.Max(1, cost) {
			return p.result(params, cost, iter-1)
		}

		floor := math.Max(1e-12*maxDiag(normal), 1e-30)

		for {
			if lambda > lambdaMax {
				// No descent direction left inside the box.
				return p.result(params, cost, iter)
			}

			damped.CopySym(normal)
			for d := 0; d < k; d++ {
				damped.SetSym(d, d, normal.At(d, d)+lambda*math.Max(normal.At(d, d), floor))
			}

			if ok := chol.Factorize(damped); !ok {
				lambda *= 2
				continue
			}

			if err := chol.SolveVecTo(delta, grad); err != nil {
				lambda *= 2
				continue
			}

			for d := 0; d < k; d++ {
				trial[d] = params[d] - delta.AtVec(d)
			}
			p.project(trial)

			trialCost := p.cost(trial, trialResid)
			if !numeric.Finite(trialCost) || trialCost >= cost {
				lambda *= 2
				continue
			}

			step := floats.Distance(trial, params, 2)
			scale := floats.Norm(params, 2)
			improvement := cost - trialCost

			copy(params, trial)
			copy(resid, trialResid)
			cost = trialCost
			lambda = math.Max(lambda/3, 1e-12)

			if improvement <= tol*(cost+improvement) || step <= tol*(scale+tol) || cost <= tinyCost {
				return p.result(params, cost, iter)
			}

			break
		}
	}

	return Unusable(p.terms, Failed)
}

func (p *problem) result(params []float64, cost float64, iterations int) Result {
	terms := make([]Term, p.terms)
	for i := range terms {
		terms[i] = Term{Amp: params[2*i], Tau: math.Exp(params[2*i+1])}
	}

	return Result{Terms: terms, Cost: cost, Status: Converged, Iterations: iterations}
}

func maxDiag(s *mat.SymDense) float64 {
	var largest float64
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		largest = math.Max(largest, s.At(i, i))
	}

	return largest
}
