package feature

// Integral returns the trapezoidal integral of y over x using the midpoint
// construction: both axes are replaced by their midpoint sequences (first
// and last samples kept exact, interior neighbours averaged) and the
// trapezoids between consecutive midpoints are summed. A nil x selects the
// index axis. Fewer than two samples integrate to zero.
func Integral(y, x []float64) (float64, error) {
	if x != nil && len(x) != len(y) {
		return 0, ErrLengthMismatch
	}

	return integral(y, x), nil
}

func integral(y, x []float64) float64 {
	n := len(y)
	if n < 2 {
		return 0
	}

	if x == nil {
		x = make([]float64, n)
		for i := range x {
			x[i] = float64(i)
		}
	}

	mx := midpoints(x)
	my := midpoints(y)

	var sum float64
	for i := 0; i < n; i++ {
		sum += (mx[i+1] - mx[i]) * 0.5 * (my[i] + my[i+1])
	}

	return sum
}

// midpoints returns v[0], the n-1 pairwise averages, and v[n-1].
func midpoints(v []float64) []float64 {
	n := len(v)
	out := make([]float64, n+1)
	out[0] = v[0]
	for i := 1; i < n; i++ {
		out[i] = 0.5 * (v[i-1] + v[i])
	}
	out[n] = v[n-1]

	return out
}
