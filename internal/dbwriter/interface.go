package dbwriter

// ResultWriter defines the interface for persisting backtest output.
// This allows for mocking in tests.
type ResultWriter interface {
	SaveTrade(trade TradeRow)
	SaveFoldStats(stats FoldStatsRow)
	Close()
}
