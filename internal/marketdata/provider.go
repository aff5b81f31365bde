// Package marketdata turns raw candle feeds into per-cycle indicator
// snapshots.
package marketdata

import (
	"context"

	"github.com/rs/zerolog"

	"cryptopilot/internal/analysis/indicators"
	"cryptopilot/internal/models"
)

// Provider supplies OHLCV history for a symbol and timeframe, most recent
// candle last.
type Provider interface {
	Candles(ctx context.Context, symbol string, timeframe models.Timeframe, limit int) ([]models.Candle, error)
}

// candles beyond the indicator minimum give the smoothed indicators room to
// settle.
const defaultCandleLimit = 120

// SnapshotBuilder fetches candles and computes the full indicator set for
// both timeframes of a symbol.
type SnapshotBuilder struct {
	provider Provider
	limit    int
	log      zerolog.Logger
}

// NewSnapshotBuilder creates a snapshot builder over a candle provider.
func NewSnapshotBuilder(provider Provider, log zerolog.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{
		provider: provider,
		limit:    defaultCandleLimit,
		log:      log,
	}
}

// Snapshot builds the indicator snapshot for one symbol and timeframe. A
// fetch failure or short history yields an invalid snapshot, never an error:
// downstream consumers treat missing data as a scoring no-op.
func (b *SnapshotBuilder) Snapshot(ctx context.Context, symbol string, timeframe models.Timeframe) models.IndicatorSnapshot {
	candles, err := b.provider.Candles(ctx, symbol, timeframe, b.limit)
	if err != nil {
		b.log.Warn().
			Err(err).
			Str("symbol", symbol).
			Str("timeframe", string(timeframe)).
			Msg("Candle fetch failed")
		return models.IndicatorSnapshot{Symbol: symbol, Timeframe: timeframe}
	}
	return indicators.BuildSnapshot(symbol, timeframe, candles)
}

// SnapshotPair builds the short and long timeframe snapshots for a symbol.
func (b *SnapshotBuilder) SnapshotPair(ctx context.Context, symbol string) (short, long models.IndicatorSnapshot) {
	short = b.Snapshot(ctx, symbol, models.TimeframeShort)
	long = b.Snapshot(ctx, symbol, models.TimeframeLong)
	return short, long
}
