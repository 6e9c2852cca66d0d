package dbwriter

// DummyWriter is a no-op ResultWriter used when persistence is disabled.
type DummyWriter struct{}

// SaveTrade discards the row.
func (d *DummyWriter) SaveTrade(trade TradeRow) {}

// SaveFoldStats discards the row.
func (d *DummyWriter) SaveFoldStats(stats FoldStatsRow) {}

// Close does nothing.
func (d *DummyWriter) Close() {}
