// Package indicator computes derived numeric series (moving averages,
// oscillators, ranges, volume ratios) from a candle series.
package indicator

import "math"

// Line is a numeric series aligned index-for-index with the source bars.
// Entries inside the warm-up region, and any value that would be NaN or
// infinite, are held as an explicit undefined sentinel. Zero is a legitimate
// indicator value and is never used to stand in for "missing".
type Line struct {
	values []float64
}

func newLine(n int) Line {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.NaN()
	}
	return Line{values: v}
}

// Len returns the number of entries, defined or not.
func (l Line) Len() int { return len(l.values) }

// Defined reports whether the entry at i carries a usable value.
func (l Line) Defined(i int) bool {
	if i < 0 || i >= len(l.values) {
		return false
	}
	v := l.values[i]
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// At returns the value at i and whether it is defined.
func (l Line) At(i int) (float64, bool) {
	if !l.Defined(i) {
		return 0, false
	}
	return l.values[i], true
}

// set stores v at i, converting NaN and infinities to the undefined sentinel.
func (l Line) set(i int, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		l.values[i] = math.NaN()
		return
	}
	l.values[i] = v
}

// FirstDefined returns the index of the first defined entry, or Len() if the
// whole line is undefined.
func (l Line) FirstDefined() int {
	for i := range l.values {
		if l.Defined(i) {
			return i
		}
	}
	return len(l.values)
}
