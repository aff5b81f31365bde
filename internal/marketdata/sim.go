package marketdata

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"cryptopilot/internal/models"
)

// SimProvider serves synthetic candle history for paper trading runs. Each
// symbol follows an independent random walk; history is extended in place so
// consecutive cycles see a continuous series rather than a fresh one.
type SimProvider struct {
	mu     sync.Mutex
	series map[string][]models.Candle
	rng    *rand.Rand

	basePrices map[string]float64
	drift      float64
	volatility float64
}

// SimConfig tunes the synthetic walk.
type SimConfig struct {
	// BasePrices seeds the starting price per symbol. Symbols without an
	// entry start at 100.
	BasePrices map[string]float64
	// Drift is the per-candle expected return, e.g. 0.0001.
	Drift float64
	// Volatility is the per-candle return standard deviation, e.g. 0.01.
	Volatility float64
	// Seed fixes the walk for reproducible runs; 0 seeds from the clock.
	Seed int64
}

// NewSimProvider creates a synthetic candle provider.
func NewSimProvider(cfg SimConfig) *SimProvider {
	if cfg.Volatility <= 0 {
		cfg.Volatility = 0.01
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimProvider{
		series:     make(map[string][]models.Candle),
		rng:        rand.New(rand.NewSource(seed)),
		basePrices: cfg.BasePrices,
		drift:      cfg.Drift,
		volatility: cfg.Volatility,
	}
}

// Candles returns the most recent candles for the symbol and timeframe,
// extending the walk by one candle per call after the initial backfill.
func (p *SimProvider) Candles(_ context.Context, symbol string, timeframe models.Timeframe, limit int) ([]models.Candle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := symbol + "/" + string(timeframe)
	series, ok := p.series[key]
	if !ok {
		series = p.backfill(symbol, timeframe, limit)
	} else {
		series = append(series, p.nextCandle(series[len(series)-1], timeframe))
	}
	p.series[key] = series

	if len(series) > limit {
		series = series[len(series)-limit:]
	}
	out := make([]models.Candle, len(series))
	copy(out, series)
	return out, nil
}

func (p *SimProvider) backfill(symbol string, timeframe models.Timeframe, limit int) []models.Candle {
	price := 100.0
	if base, ok := p.basePrices[symbol]; ok && base > 0 {
		price = base
	}

	interval := timeframeInterval(timeframe)
	start := time.Now().Add(-time.Duration(limit) * interval)

	series := make([]models.Candle, 0, limit)
	prev := models.Candle{
		Timestamp: start,
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		Volume:    1000,
	}
	series = append(series, prev)
	for i := 1; i < limit; i++ {
		prev = p.nextCandle(prev, timeframe)
		series = append(series, prev)
	}
	return series
}

// nextCandle rolls the walk forward one interval from the previous close.
func (p *SimProvider) nextCandle(prev models.Candle, timeframe models.Timeframe) models.Candle {
	ret := p.drift + p.rng.NormFloat64()*p.volatility
	open := prev.Close
	close := open * (1 + ret)
	if close <= 0 {
		close = open * 0.5
	}

	high := open
	if close > high {
		high = close
	}
	high *= 1 + p.rng.Float64()*p.volatility/2

	low := open
	if close < low {
		low = close
	}
	low *= 1 - p.rng.Float64()*p.volatility/2

	volume := int64(float64(prev.Volume) * (0.5 + p.rng.Float64()))
	if volume < 1 {
		volume = 1
	}

	return models.Candle{
		Timestamp: prev.Timestamp.Add(timeframeInterval(timeframe)),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

func timeframeInterval(timeframe models.Timeframe) time.Duration {
	switch timeframe {
	case models.TimeframeLong:
		return time.Hour
	default:
		return 5 * time.Minute
	}
}
