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

import "math"

// trueRange returns the true range at bar i: the largest of high-low,
// |high - previous close| and |low - previous close|. i must be >= 1.
func trueRange(high, low, close []float64, i int) float64 {
	hl := high[i] - low[i]
	hc := math.Abs(high[i] - close[i-1])
	lc := math.Abs(low[i] - close[i-1])
	return math.Max(hl, math.Max(hc, lc))
}

// computeATR writes the mean true range over the trailing period into dst.
// The window is strictly causal; entries before index period stay undefined.
func computeATR(high, low, close []float64, dst Line, period int) {
	if period <= 0 || len(high) < period+1 {
		return
	}
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += trueRange(high, low, close, i)
	}
	dst.set(period, sum/float64(period))
	for i := period + 1; i < len(high); i++ {
		sum += trueRange(high, low, close, i) - trueRange(high, low, close, i-period)
		dst.set(i, sum/float64(period))
	}
}

// computeADX writes the Wilder average directional index into dst. DM and TR
// are Wilder-smoothed over the period, DI+/DI- derived from them, and the DX
// series smoothed once more, so the first defined entry sits at 2*period.
func computeADX(high, low, close []float64, dst Line, period int) {
	n := len(high)
	if period <= 0 || n < 2*period+1 {
		return
	}

	smTR, smPlusDM, smMinusDM := 0.0, 0.0, 0.0
	for i := 1; i <= period; i++ {
		tr, plusDM, minusDM := directionalMovement(high, low, close, i)
		smTR += tr
		smPlusDM += plusDM
		smMinusDM += minusDM
	}

	var adx float64
	dxSum := 0.0
	dxCount := 0
	for i := period; i < n; i++ {
		if i > period {
			tr, plusDM, minusDM := directionalMovement(high, low, close, i)
			smTR = smTR - smTR/float64(period) + tr
			smPlusDM = smPlusDM - smPlusDM/float64(period) + plusDM
			smMinusDM = smMinusDM - smMinusDM/float64(period) + minusDM
		}
		if smTR == 0 {
			continue
		}
		plusDI := 100 * smPlusDM / smTR
		minusDI := 100 * smMinusDM / smTR
		diSum := plusDI + minusDI
		if diSum == 0 {
			continue
		}
		dx := 100 * math.Abs(plusDI-minusDI) / diSum

		switch {
		case dxCount < period:
			dxSum += dx
			dxCount++
			if dxCount == period {
				adx = dxSum / float64(period)
				dst.set(i, adx)
			}
		default:
			adx = (adx*float64(period-1) + dx) / float64(period)
			dst.set(i, adx)
		}
	}
}

func directionalMovement(high, low, close []float64, i int) (tr, plusDM, minusDM float64) {
	upMove := high[i] - high[i-1]
	downMove := low[i-1] - low[i]
	if upMove > downMove && upMove > 0 {
		plusDM = upMove
	}
	if downMove > upMove && downMove > 0 {
		minusDM = downMove
	}
	return trueRange(high, low, close, i), plusDM, minusDM
}
