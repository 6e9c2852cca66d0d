// Package main runs a single-pass backtest over a candle history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/your-org/wave3-backtester/internal/benchmark"
	"github.com/your-org/wave3-backtester/internal/candle"
	"github.com/your-org/wave3-backtester/internal/config"
	"github.com/your-org/wave3-backtester/internal/csvwriter"
	"github.com/your-org/wave3-backtester/internal/datastore"
	"github.com/your-org/wave3-backtester/internal/dbwriter"
	"github.com/your-org/wave3-backtester/internal/filter"
	"github.com/your-org/wave3-backtester/internal/indicator"
	"github.com/your-org/wave3-backtester/internal/learning"
	"github.com/your-org/wave3-backtester/internal/report"
	"github.com/your-org/wave3-backtester/internal/signal"
	"github.com/your-org/wave3-backtester/internal/simulator"
	"github.com/your-org/wave3-backtester/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	csvPath := flag.String("csv", "", "Path to a candle CSV file (overrides the database)")
	fromStr := flag.String("from", "", "Start of the candle range, RFC3339 (database mode)")
	toStr := flag.String("to", "", "End of the candle range, RFC3339 (database mode)")
	outPath := flag.String("out", "", "Optional path for a trade CSV export")
	modelPath := flag.String("model", "", "Optional path to a trained confidence model (JSON)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetGlobalLogLevel(cfg.LogLevel)
	logger.Info("Backtest starting...")
	logger.Infof("Loaded configuration from: %s", *configPath)
	logger.Infof("Target symbol: %s %s", cfg.Symbol, cfg.Interval)

	zapLogger := newZapLogger(cfg.LogLevel)
	defer func() {
		_ = zapLogger.Sync()
	}()

	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		pool, err = pgxpool.New(ctx, cfg.Database.URL())
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
	}

	series, err := loadSeries(ctx, cfg, pool, *csvPath, *fromStr, *toStr)
	if err != nil {
		logger.Fatalf("Failed to load candles: %v", err)
	}
	logger.Infof("Loaded %d candles", series.Len())

	var predictor filter.Predictor
	if *modelPath != "" {
		model, err := learning.LoadLogisticModel(*modelPath)
		if err != nil {
			logger.Fatalf("Failed to load confidence model: %v", err)
		}
		logger.Infof("Loaded confidence model %s", model.Version())
		predictor = model
	}

	// Score, filter and simulate over the whole series in one pass.
	ind := indicator.Compute(series, cfg.Indicator)
	scorer := signal.NewScorer(cfg.Strategy, cfg.Indicator)
	gate := filter.New(cfg.Filter, predictor)

	var accepted []filter.ScoredSignal
	for i := 0; i < series.Len(); i++ {
		sig := scorer.Score(series, ind, i)
		if sig == nil {
			continue
		}
		scored := gate.Apply(ctx, *sig)
		if scored.Accepted() {
			accepted = append(accepted, scored)
		}
	}

	trades := simulator.New(cfg.Strategy.MaxHoldingBars).Run(series, accepted)
	stats := report.Summarize(trades)

	logger.Infof("Signals accepted: %d, trades: %d", len(accepted), len(trades))
	logger.Infof("Win rate: %.2f%%, profit factor: %.2f, Sharpe: %.2f, max drawdown: %.2f%%",
		stats.WinRate*100, stats.ProfitFactor, stats.SharpeRatio, stats.MaxDrawdown*100)
	logger.Infof("Total return: %s", stats.TotalReturn.StringFixed(4))

	bench := benchmark.BuyAndHold(series)
	logger.Infof("Buy-and-hold return: %s, alpha: %s",
		bench.Return.StringFixed(4), benchmark.Alpha(stats.TotalReturn, bench.Return).StringFixed(4))

	runID := uuid.New().String()
	if pool != nil {
		persistTrades(zapLogger, pool, cfg, runID, trades)
	}
	if *outPath != "" {
		exportTrades(zapLogger, *outPath, trades)
	}

	logger.Info("Backtest finished.")
}

// loadSeries reads candles from the CSV file when one is given, otherwise
// from the candles table over the requested time range.
func loadSeries(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, csvPath, fromStr, toStr string) (candle.Series, error) {
	if csvPath != "" {
		return datastore.ReadSeriesCSV(csvPath, cfg.Symbol, cfg.Interval)
	}
	if pool == nil {
		return candle.Series{}, fmt.Errorf("no candle source: set -csv or configure the database via DB_* env vars")
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return candle.Series{}, fmt.Errorf("invalid -from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return candle.Series{}, fmt.Errorf("invalid -to: %w", err)
	}
	repo := datastore.NewTimescaleRepository(pool)
	return repo.FetchCandles(ctx, cfg.Symbol, cfg.Interval, from, to)
}

func persistTrades(zapLogger *zap.Logger, pool *pgxpool.Pool, cfg *config.Config, runID string, trades []simulator.Trade) {
	writer, err := dbwriter.NewTimescaleWriter(pool, cfg.DBWriter, zapLogger)
	if err != nil {
		logger.Errorf("Failed to initialize result writer: %v", err)
		return
	}
	defer writer.Close()

	for _, t := range trades {
		writer.SaveTrade(dbwriter.TradeRow{
			RunID:      runID,
			Symbol:     t.Symbol,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Direction:  t.Direction.String(),
			ReturnPct:  t.ReturnPct,
			ExitReason: t.ExitReason.String(),
		})
	}
	logger.Infof("Persisted %d trades under run %s", len(trades), runID)
}

func exportTrades(zapLogger *zap.Logger, path string, trades []simulator.Trade) {
	writer, err := csvwriter.NewWriter(path, zapLogger)
	if err != nil {
		logger.Errorf("Failed to create CSV writer: %v", err)
		return
	}
	defer writer.Close()
	if err := writer.WriteTrades(trades); err != nil {
		logger.Errorf("Failed to export trades: %v", err)
	}
}

func newZapLogger(logLevel string) *zap.Logger {
	var zapLogger *zap.Logger
	var err error
	if logLevel == "debug" {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		logger.Fatalf("Failed to initialize Zap logger: %v", err)
	}
	return zapLogger
}
