package indicator

// Config selects the lookbacks used by Compute. The zero value is not
// usable; start from DefaultConfig and override.
type Config struct {
	EMASpans        []int   `yaml:"ema_spans"`
	RSIPeriod       int     `yaml:"rsi_period"`
	MACDFast        int     `yaml:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal"`
	ATRPeriod       int     `yaml:"atr_period"`
	ADXPeriod       int     `yaml:"adx_period"`
	BollingerPeriod int     `yaml:"bollinger_period"`
	BollingerK      float64 `yaml:"bollinger_k"`
	VolumeWindow    int     `yaml:"volume_window"`
}

// DefaultConfig returns the standard lookback set.
func DefaultConfig() Config {
	return Config{
		EMASpans:        []int{9, 21},
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		ATRPeriod:       14,
		ADXPeriod:       14,
		BollingerPeriod: 20,
		BollingerK:      2.0,
		VolumeWindow:    20,
	}
}

// MaxLookback returns the longest configured lookback, which bounds the
// warm-up region of every line Compute produces.
func (c Config) MaxLookback() int {
	max := c.MACDSlow + c.MACDSignal
	for _, span := range c.EMASpans {
		if span > max {
			max = span
		}
	}
	for _, p := range []int{c.RSIPeriod + 1, c.ATRPeriod + 1, 2 * c.ADXPeriod, c.BollingerPeriod, c.VolumeWindow} {
		if p > max {
			max = p
		}
	}
	return max
}
