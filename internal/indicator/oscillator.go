package indicator

// computeRSI writes the Wilder-style relative strength index into dst.
// A zero average loss maps to 100 and a zero average gain to 0; the first
// period entries stay undefined.
func computeRSI(src []float64, dst Line, period int) {
	if period <= 0 || len(src) < period+1 {
		return
	}
	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		change := src[i] - src[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	dst.set(period, rsiFrom(avgGain, avgLoss))

	for i := period + 1; i < len(src); i++ {
		change := src[i] - src[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		dst.set(i, rsiFrom(avgGain, avgLoss))
	}
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 0
		}
		return 100
	}
	if avgGain == 0 {
		return 0
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// computeMACD writes the difference of the fast and slow EMAs, its signal EMA
// and the histogram into the three destination lines.
func computeMACD(src []float64, macd, signal, hist Line, fast, slow, signalSpan int) {
	if fast <= 0 || slow <= 0 || signalSpan <= 0 || len(src) < slow {
		return
	}
	fastEMA := newLine(len(src))
	slowEMA := newLine(len(src))
	computeEMA(src, fastEMA, fast)
	computeEMA(src, slowEMA, slow)

	for i := 0; i < len(src); i++ {
		f, okF := fastEMA.At(i)
		s, okS := slowEMA.At(i)
		if okF && okS {
			macd.set(i, f-s)
		}
	}

	computeEMAOver(macd, signal, signalSpan)

	for i := 0; i < len(src); i++ {
		m, okM := macd.At(i)
		s, okS := signal.At(i)
		if okM && okS {
			hist.set(i, m-s)
		}
	}
}

// computeMomentum writes the fractional price change over the trailing
// lookback into dst. A zero reference price leaves the entry undefined.
func computeMomentum(src []float64, dst Line, lookback int) {
	if lookback <= 0 || len(src) <= lookback {
		return
	}
	for i := lookback; i < len(src); i++ {
		ref := src[i-lookback]
		if ref == 0 {
			continue
		}
		dst.set(i, (src[i]-ref)/ref)
	}
}
