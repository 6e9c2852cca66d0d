package signal

import (
	"fmt"
	"math"

	"github.com/your-org/wave3-backtester/internal/candle"
	"github.com/your-org/wave3-backtester/internal/config"
	"github.com/your-org/wave3-backtester/internal/indicator"
)

// Scorer applies the Wave3 trend/zone/momentum rules to one evaluation point
// and produces a bounded quality score plus a directional signal. It holds no
// mutable state: identical inputs always yield an identical Signal.
type Scorer struct {
	cfg       config.StrategyConfig
	shortName string
	longName  string
	atrName   string
	rsiName   string
	adxName   string
}

// NewScorer creates a Scorer from the validated strategy configuration and
// the indicator lookbacks the engine was computed with.
func NewScorer(strat config.StrategyConfig, indCfg indicator.Config) *Scorer {
	return &Scorer{
		cfg:       strat,
		shortName: indicator.EMAName(strat.EMAShortSpan),
		longName:  indicator.EMAName(strat.EMALongSpan),
		atrName:   fmt.Sprintf("atr_%d", indCfg.ATRPeriod),
		rsiName:   fmt.Sprintf("rsi_%d", indCfg.RSIPeriod),
		adxName:   fmt.Sprintf("adx_%d", indCfg.ADXPeriod),
	}
}

// Score evaluates the series at index i. It returns nil when the point yields
// no signal: inside the warm-up region, outside a trend regime, outside the
// pullback zone, or below the quality floor. Warm-up is an expected
// steady-state condition of the sliding evaluation, never an error.
func (sc *Scorer) Score(series candle.Series, ind indicator.Set, i int) *Signal {
	if i < 0 || i >= series.Len() {
		return nil
	}
	bar := series.Bars[i]
	closePrice := bar.Close

	shortEMA, okShort := ind.At(sc.shortName, i)
	longEMA, okLong := ind.At(sc.longName, i)
	atr, okATR := ind.At(sc.atrName, i)
	if !okShort || !okLong || !okATR || i < sc.cfg.MomentumLookback {
		return nil
	}

	var direction Direction
	switch {
	case closePrice > longEMA && shortEMA > longEMA:
		direction = DirectionLong
	case closePrice < longEMA && shortEMA < longEMA:
		direction = DirectionShort
	default:
		return nil
	}

	// Pullback to moving-average confluence: price must sit within the
	// tolerance band of either EMA. Necessary but not sufficient.
	if !sc.inEntryZone(closePrice, shortEMA, longEMA) {
		return nil
	}

	separation := math.Abs(shortEMA-longEMA) / longEMA
	refPrice := series.Bars[i-sc.cfg.MomentumLookback].Close
	momentum := math.Abs(closePrice-refPrice) / refPrice
	volatility := atr / closePrice

	quality := sc.quality(separation, momentum, volatility)
	if quality < sc.cfg.MinQualityScore {
		return nil
	}

	features := map[string]float64{
		"quality_score": quality,
		"separation":    separation,
		"momentum":      momentum,
		"volatility":    volatility,
	}
	for _, name := range []string{sc.rsiName, sc.adxName, "volume_ratio", "macd_hist"} {
		if v, ok := ind.At(name, i); ok {
			features[name] = v
		}
	}

	stopLoss, takeProfit := sc.exitLevels(direction, closePrice)
	return &Signal{
		Time:         bar.Time,
		Direction:    direction,
		QualityScore: quality,
		EntryPrice:   closePrice,
		StopLoss:     stopLoss,
		TakeProfit:   takeProfit,
		Features:     features,
	}
}

func (sc *Scorer) inEntryZone(price, shortEMA, longEMA float64) bool {
	tol := sc.cfg.EntryZoneTolerance
	return math.Abs(price-shortEMA)/shortEMA <= tol || math.Abs(price-longEMA)/longEMA <= tol
}

// quality maps the three normalized sub-scores to [0,100]. Each sub-score is
// capped at its configured ceiling before weighting, so one extreme input
// cannot dominate the score.
func (sc *Scorer) quality(separation, momentum, volatility float64) float64 {
	w := sc.cfg.Score
	sepScore := math.Min(separation/w.SeparationCap, 1)
	momScore := math.Min(momentum/w.MomentumCap, 1)
	volScore := math.Min(volatility/w.VolatilityCap, 1)

	totalWeight := w.SeparationWeight + w.MomentumWeight + w.VolatilityWeight
	weighted := w.SeparationWeight*sepScore + w.MomentumWeight*momScore + w.VolatilityWeight*volScore
	return 100 * weighted / totalWeight
}

// exitLevels derives stop-loss and take-profit from the fixed risk:reward
// policy applied to the entry price.
func (sc *Scorer) exitLevels(direction Direction, entry float64) (stopLoss, takeProfit float64) {
	stop := sc.cfg.StopPct
	reward := sc.cfg.StopPct * sc.cfg.RiskRewardRatio
	if direction == DirectionLong {
		return entry * (1 - stop), entry * (1 + reward)
	}
	return entry * (1 + stop), entry * (1 - reward)
}
