package indicator

// computeVolumeRatio writes current volume divided by the trailing rolling
// mean volume into dst. A zero mean volume leaves the entry undefined rather
// than producing an infinite ratio.
func computeVolumeRatio(volume []float64, dst Line, window int) {
	if window <= 0 || len(volume) < window {
		return
	}
	sum := 0.0
	for i := 0; i < len(volume); i++ {
		sum += volume[i]
		if i >= window {
			sum -= volume[i-window]
		}
		if i < window-1 {
			continue
		}
		mean := sum / float64(window)
		if mean == 0 {
			continue
		}
		dst.set(i, volume[i]/mean)
	}
}
