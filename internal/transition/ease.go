package transition

import "math"

// Ease is a cubic ease-in-out curve. Ease(0)=0, Ease(0.5)=0.5, Ease(1)=1.
func Ease(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
