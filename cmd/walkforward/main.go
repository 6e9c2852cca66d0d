// Package main runs a walk-forward evaluation over a candle history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/your-org/wave3-backtester/internal/benchmark"
	"github.com/your-org/wave3-backtester/internal/candle"
	"github.com/your-org/wave3-backtester/internal/config"
	"github.com/your-org/wave3-backtester/internal/csvwriter"
	"github.com/your-org/wave3-backtester/internal/datastore"
	"github.com/your-org/wave3-backtester/internal/dbwriter"
	"github.com/your-org/wave3-backtester/internal/filter"
	"github.com/your-org/wave3-backtester/internal/learning"
	"github.com/your-org/wave3-backtester/internal/walkforward"
	"github.com/your-org/wave3-backtester/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	csvPath := flag.String("csv", "", "Path to a candle CSV file (overrides the database)")
	fromStr := flag.String("from", "", "Start of the candle range, RFC3339 (database mode)")
	toStr := flag.String("to", "", "End of the candle range, RFC3339 (database mode)")
	outPath := flag.String("out", "", "Optional path for a fold result CSV export")
	modelPath := flag.String("model", "", "Optional path to a trained confidence model (JSON)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fold workers honour context cancellation, so SIGINT aborts the run.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Infof("Received signal: %s, cancelling run...", sig)
		cancel()
	}()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetGlobalLogLevel(cfg.LogLevel)
	logger.Info("Walk-forward run starting...")
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

	runner := walkforward.NewRunner(cfg, predictor)
	run, err := runner.Run(ctx, series)
	if err != nil {
		logger.Fatalf("Walk-forward run failed: %v", err)
	}

	logger.Infof("Run %s: %d folds", run.RunID, len(run.Folds))
	for _, res := range run.Folds {
		if res.Err != nil {
			logger.Errorf("Fold %d failed: %v", res.Fold.Number, res.Err)
			continue
		}
		testSlice := series.Slice(
			series.IndexAtOrAfter(res.Fold.TestStart),
			series.IndexAtOrAfter(res.Fold.TestEnd),
		)
		bench := benchmark.BuyAndHold(testSlice)
		logger.Infof("Fold %d [%s .. %s]: trades=%d, win rate=%.2f%%, Sharpe=%.2f, alpha=%s",
			res.Fold.Number,
			res.Fold.TestStart.Format("2006-01-02"),
			res.Fold.TestEnd.Format("2006-01-02"),
			res.Stats.TotalTrades, res.Stats.WinRate*100, res.Stats.SharpeRatio,
			benchmark.Alpha(res.Stats.TotalReturn, bench.Return).StringFixed(4))
	}
	logger.Infof("Consistency: win rate %.2f%%±%.2f%%, return %.4f±%.4f, Sharpe %.2f±%.2f",
		run.Consistency.WinRateMean*100, run.Consistency.WinRateStd*100,
		run.Consistency.ReturnMean, run.Consistency.ReturnStd,
		run.Consistency.SharpeMean, run.Consistency.SharpeStd)

	if pool != nil {
		persistFoldStats(zapLogger, pool, cfg, run)
	}
	if *outPath != "" {
		exportFoldResults(zapLogger, *outPath, run.Folds)
	}

	logger.Info("Walk-forward run finished.")
}

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

func persistFoldStats(zapLogger *zap.Logger, pool *pgxpool.Pool, cfg *config.Config, run *walkforward.RunResult) {
	writer, err := dbwriter.NewTimescaleWriter(pool, cfg.DBWriter, zapLogger)
	if err != nil {
		logger.Errorf("Failed to initialize result writer: %v", err)
		return
	}
	defer writer.Close()

	for _, res := range run.Folds {
		if res.Err != nil {
			continue
		}
		writer.SaveFoldStats(dbwriter.FoldStatsRow{
			RunID:        run.RunID,
			FoldNumber:   res.Fold.Number,
			Symbol:       run.Symbol,
			TestStart:    res.Fold.TestStart,
			TestEnd:      res.Fold.TestEnd,
			TotalTrades:  res.Stats.TotalTrades,
			WinRate:      res.Stats.WinRate,
			ProfitFactor: res.Stats.ProfitFactor,
			SharpeRatio:  res.Stats.SharpeRatio,
			MaxDrawdown:  res.Stats.MaxDrawdown,
			TotalReturn:  res.Stats.TotalReturn.InexactFloat64(),
		})
		for _, t := range res.Trades {
			writer.SaveTrade(dbwriter.TradeRow{
				RunID:      run.RunID,
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
	}
	logger.Infof("Persisted fold stats under run %s", run.RunID)
}

func exportFoldResults(zapLogger *zap.Logger, path string, results []walkforward.Result) {
	writer, err := csvwriter.NewWriter(path, zapLogger)
	if err != nil {
		logger.Errorf("Failed to create CSV writer: %v", err)
		return
	}
	defer writer.Close()
	if err := writer.WriteFoldResults(results); err != nil {
		logger.Errorf("Failed to export fold results: %v", err)
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
