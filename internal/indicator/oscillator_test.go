package indicator

import "testing"

func TestComputeRSI(t *testing.T) {
	tests := []struct {
		name   string
		src    []float64
		period int
		index  int
		want   float64
	}{
		{
			name:   "all gains saturate at 100",
			src:    []float64{1, 2, 3, 4, 5},
			period: 3,
			index:  3,
			want:   100,
		},
		{
			name:   "all losses pin at 0",
			src:    []float64{5, 4, 3, 2, 1},
			period: 3,
			index:  3,
			want:   0,
		},
		{
			name:   "flat series reads 0",
			src:    []float64{5, 5, 5, 5},
			period: 3,
			index:  3,
			want:   0,
		},
		{
			name:   "mixed changes",
			src:    []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33},
			period: 5,
			index:  5,
			// avgGain = 1.12/5, avgLoss = 0.79/5
			want: 100 * 1.12 / (1.12 + 0.79),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := newLine(len(tt.src))
			computeRSI(tt.src, dst, tt.period)

			wantUndefined(t, dst, tt.period-1)
			wantAt(t, dst, tt.index, tt.want)
		})
	}
}

func TestComputeMACD(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6}
	macd, signal, hist := newLine(len(src)), newLine(len(src)), newLine(len(src))
	computeMACD(src, macd, signal, hist, 2, 3, 2)

	// fast EMA (span 2) and slow EMA (span 3) settle on a constant 0.5 gap
	// for a linear ramp.
	wantUndefined(t, macd, 1)
	wantAt(t, macd, 2, 0.5)
	wantAt(t, macd, 5, 0.5)

	// The signal line seeds two bars after the MACD line first defines.
	wantUndefined(t, signal, 2)
	wantAt(t, signal, 3, 0.5)
	wantAt(t, hist, 3, 0)
	wantAt(t, hist, 5, 0)
}

func TestComputeMomentum(t *testing.T) {
	src := []float64{100, 110, 121}
	dst := newLine(len(src))
	computeMomentum(src, dst, 2)

	wantUndefined(t, dst, 0)
	wantUndefined(t, dst, 1)
	wantAt(t, dst, 2, 0.21)
}
