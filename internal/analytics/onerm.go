// Package analytics derives training statistics from logged workouts. Every
// function is pure: results are recomputed from the records passed in.
package analytics

// Epley estimates a one-rep max as weight × (1 + reps/30). A single rep
// returns weight unchanged; non-positive inputs return 0.
func Epley(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// Brzycki estimates a one-rep max as weight × 36 / (37 − reps). The formula
// breaks down at 37 reps and beyond, where weight is returned unchanged.
func Brzycki(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 || reps >= 37 {
		return weight
	}
	return weight * 36 / float64(37-reps)
}
