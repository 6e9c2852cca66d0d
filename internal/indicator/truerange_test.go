// Copyright (c) 2025 Wave3-Backtester
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package indicator

import "testing"

func TestTrueRange(t *testing.T) {
	high := []float64{10, 11, 14}
	low := []float64{8, 9, 10}
	close := []float64{9, 10, 13}

	// Plain high-low when the bar overlaps the previous close.
	if got := trueRange(high, low, close, 1); !almostEqual(got, 2) {
		t.Errorf("trueRange(1) = %v, want 2", got)
	}
	// Gap up: |high - prev close| dominates.
	if got := trueRange(high, low, close, 2); !almostEqual(got, 4) {
		t.Errorf("trueRange(2) = %v, want 4", got)
	}
}

func TestComputeATR(t *testing.T) {
	high := []float64{10, 11, 14, 13}
	low := []float64{8, 9, 10, 12}
	close := []float64{9, 10, 13, 12.5}

	dst := newLine(len(high))
	computeATR(high, low, close, dst, 2)

	wantUndefined(t, dst, 0)
	wantUndefined(t, dst, 1)
	wantAt(t, dst, 2, 3)   // (2+4)/2
	wantAt(t, dst, 3, 2.5) // (4+1)/2
}

func TestComputeATRShortInput(t *testing.T) {
	high := []float64{10, 11}
	low := []float64{8, 9}
	close := []float64{9, 10}

	dst := newLine(len(high))
	computeATR(high, low, close, dst, 2)
	for i := range high {
		wantUndefined(t, dst, i)
	}
}

func TestComputeADXUptrend(t *testing.T) {
	// A monotone uptrend never produces minus DM, so DX and therefore ADX
	// saturate at 100 once the smoothing warms up.
	n := 10
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i] = 10 + float64(i)
		low[i] = 9 + float64(i)
		close[i] = 9.5 + float64(i)
	}

	dst := newLine(n)
	computeADX(high, low, close, dst, 2)

	wantUndefined(t, dst, 2)
	wantAt(t, dst, n-1, 100)
	if dst.FirstDefined() >= n {
		t.Fatal("expected ADX to define within the series")
	}
}

func TestComputeVolumeRatio(t *testing.T) {
	volume := []float64{10, 10, 20, 0, 0}
	dst := newLine(len(volume))
	computeVolumeRatio(volume, dst, 2)

	wantUndefined(t, dst, 0)
	wantAt(t, dst, 1, 1)
	wantAt(t, dst, 2, 20.0/15.0)
	wantAt(t, dst, 3, 0)
	// Trailing mean of zero volume stays undefined instead of dividing by 0.
	wantUndefined(t, dst, 4)
}
