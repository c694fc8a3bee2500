package nesapu

// PulseOut is the pulse half of the non-linear mixer. p1 and p2 are the raw
// pulse outputs in {0, 1}.
func PulseOut(p1, p2 float64) float64 {
	sum := p1 + p2
	if sum == 0 {
		return 0
	}
	return 95.88 / (8128/sum + 100)
}

// TNDOut is the triangle/noise/DMC half of the non-linear mixer.
func TNDOut(t, n, dmc float64) float64 {
	sum := t/8227 + n/12241 + dmc/22638
	if sum == 0 {
		return 0
	}
	return 159.79 / (1/sum + 100)
}

// Mix combines the four raw channel outputs. The DMC input is always 0.
func Mix(p1, p2, t, n float64) float64 {
	return PulseOut(p1, p2) + TNDOut(t, n, 0)
}
