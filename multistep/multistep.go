package multistep

import "fmt"

// NStepBootstrappedReturns turns per-step rewards, discounts, and bootstrap
// values into n-step targets:
//
//	target_t = Σ_{i<m} (Π_{j<i} d_{t+j})·r_{t+i} + (Π_{j<m} d_{t+j})·v_{t+m−1}
//
// with m = min(n, T−t). Near the end of the sequence the horizon shrinks to
// the largest available one. A zero discount at a terminal step zeroes every
// continuation past the episode boundary. values[i] is the bootstrap value
// for time i+1, i.e. the value estimate recorded one step after rewards[i].
func NStepBootstrappedReturns(rewards, discounts, values []float32, n int) ([]float32, error) {
	t := len(rewards)
	if len(discounts) != t || len(values) != t {
		return nil, fmt.Errorf("sequence lengths differ: %d rewards, %d discounts, %d values", t, len(discounts), len(values))
	}
	if n <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", n)
	}
	targets := make([]float32, t)
	for start := 0; start < t; start++ {
		m := n
		if start+m > t {
			m = t - start
		}
		g := float32(0.0)
		disc := float32(1.0)
		for i := 0; i < m; i++ {
			g += disc * rewards[start+i]
			disc *= discounts[start+i]
		}
		g += disc * values[start+m-1]
		targets[start] = g
	}
	return targets, nil
}
