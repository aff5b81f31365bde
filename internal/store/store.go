// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"cryptopilot/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Cycles
	SaveCycle(ctx context.Context, cycle *models.CycleRecord) error
	GetCycles(ctx context.Context, filter CycleFilter) ([]models.CycleRecord, error)

	// Recommendations
	SaveRecommendations(ctx context.Context, cycleID string, recs map[string]models.Recommendation) error
	GetRecommendations(ctx context.Context, cycleID string) (map[string]models.Recommendation, error)

	// Trades
	LogTrade(ctx context.Context, trade *models.Trade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Positions
	SavePosition(ctx context.Context, pos *models.PositionState) error
	GetPositions(ctx context.Context) (map[string]*models.PositionState, error)

	// Lifecycle
	Close() error
}

// CycleFilter represents filters for querying cycle records.
type CycleFilter struct {
	Outcome   models.ValidationDecision
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	Action    models.Action
	CycleID   string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
