package indicator

import (
	"fmt"
	"sort"

	"github.com/your-org/wave3-backtester/internal/candle"
)

// Set maps indicator names (ema_21, rsi_14, atr_14, ...) to lines aligned
// with the source series. A Set is recomputed in full for every slice handed
// to Compute; it is never patched in place, so cross-indicator state cannot
// go stale during walk-forward re-slicing.
type Set struct {
	lines  map[string]Line
	length int
}

// Line returns the named line and whether it exists.
func (s Set) Line(name string) (Line, bool) {
	l, ok := s.lines[name]
	return l, ok
}

// At returns the value of the named line at i, and whether it is defined.
func (s Set) At(name string, i int) (float64, bool) {
	l, ok := s.lines[name]
	if !ok {
		return 0, false
	}
	return l.At(i)
}

// Names returns the sorted indicator names.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.lines))
	for name := range s.lines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the length every line is aligned to.
func (s Set) Len() int { return s.length }

// EMAName returns the canonical line name for an EMA span.
func EMAName(span int) string { return fmt.Sprintf("ema_%d", span) }

// Compute derives the full indicator set from a candle series. Input shorter
// than a lookback never fails: the affected line simply stays undefined for
// its whole warm-up region. All windows end at the current bar (no
// look-ahead).
func Compute(series candle.Series, cfg Config) Set {
	n := series.Len()
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range series.Bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	set := Set{lines: make(map[string]Line, len(cfg.EMASpans)+10), length: n}
	add := func(name string, l Line) {
		set.lines[name] = l
	}

	for _, span := range cfg.EMASpans {
		l := newLine(n)
		computeEMA(closes, l, span)
		add(EMAName(span), l)
	}

	rsi := newLine(n)
	computeRSI(closes, rsi, cfg.RSIPeriod)
	add(fmt.Sprintf("rsi_%d", cfg.RSIPeriod), rsi)

	macd, macdSignal, macdHist := newLine(n), newLine(n), newLine(n)
	computeMACD(closes, macd, macdSignal, macdHist, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	add("macd", macd)
	add("macd_signal", macdSignal)
	add("macd_hist", macdHist)

	atr := newLine(n)
	computeATR(highs, lows, closes, atr, cfg.ATRPeriod)
	add(fmt.Sprintf("atr_%d", cfg.ATRPeriod), atr)

	adx := newLine(n)
	computeADX(highs, lows, closes, adx, cfg.ADXPeriod)
	add(fmt.Sprintf("adx_%d", cfg.ADXPeriod), adx)

	upper, mid, lower := newLine(n), newLine(n), newLine(n)
	computeBollinger(closes, upper, mid, lower, cfg.BollingerPeriod, cfg.BollingerK)
	add("bb_upper", upper)
	add("bb_mid", mid)
	add("bb_lower", lower)

	volRatio := newLine(n)
	computeVolumeRatio(volumes, volRatio, cfg.VolumeWindow)
	add("volume_ratio", volRatio)

	return set
}
