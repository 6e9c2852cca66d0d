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

// computeSMA writes the simple moving average of src over the trailing
// period into dst. Entries before period-1 stay undefined.
func computeSMA(src []float64, dst Line, period int) {
	if period <= 0 || len(src) < period {
		return
	}
	sum := 0.0
	for i := 0; i < len(src); i++ {
		sum += src[i]
		if i >= period {
			sum -= src[i-period]
		}
		if i >= period-1 {
			dst.set(i, sum/float64(period))
		}
	}
}

// computeEMA writes the exponential moving average of src into dst using
// alpha = 2/(span+1). The recursion is seeded at index span-1 with the simple
// average of the first span values, so the warm-up region stays undefined.
func computeEMA(src []float64, dst Line, span int) {
	if span <= 0 || len(src) < span {
		return
	}
	sum := 0.0
	for i := 0; i < span; i++ {
		sum += src[i]
	}
	alpha := 2.0 / float64(span+1)
	prev := sum / float64(span)
	dst.set(span-1, prev)
	for i := span; i < len(src); i++ {
		prev = alpha*src[i] + (1-alpha)*prev
		dst.set(i, prev)
	}
}

// computeBollinger writes the rolling mean and the mean +/- k standard
// deviations into mid, upper and lower. The standard deviation is the
// population deviation over the trailing period ending at the current bar.
func computeBollinger(src []float64, upper, mid, lower Line, period int, k float64) {
	if period <= 0 || len(src) < period {
		return
	}
	sma := newLine(len(src))
	computeSMA(src, sma, period)
	for i := period - 1; i < len(src); i++ {
		mean, ok := sma.At(i)
		if !ok {
			continue
		}
		sumSq := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := src[j] - mean
			sumSq += d * d
		}
		sd := math.Sqrt(sumSq / float64(period))
		mid.set(i, mean)
		upper.set(i, mean+k*sd)
		lower.set(i, mean-k*sd)
	}
}

// computeEMAOver is computeEMA for inputs that carry an undefined prefix of
// their own (e.g. the MACD line). The seed window starts at the first defined
// entry of src.
func computeEMAOver(src Line, dst Line, span int) {
	start := src.FirstDefined()
	if span <= 0 || src.Len()-start < span {
		return
	}
	sum := 0.0
	for i := start; i < start+span; i++ {
		v, ok := src.At(i)
		if !ok {
			return
		}
		sum += v
	}
	alpha := 2.0 / float64(span+1)
	prev := sum / float64(span)
	dst.set(start+span-1, prev)
	for i := start + span; i < src.Len(); i++ {
		v, ok := src.At(i)
		if !ok {
			return
		}
		prev = alpha*v + (1-alpha)*prev
		dst.set(i, prev)
	}
}
