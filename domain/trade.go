package domain

import "time"

// TradeRecord pairs an opening fill with the closing fill(s) that
// flatten a position into one round-trip trade, per §4.6 trade
// extraction.
type TradeRecord struct {
	Symbol       string
	Side         OrderSide // side of the opening fill
	EntryBar     int
	ExitBar      int
	EntryDate    time.Time
	ExitDate     time.Time
	Quantity     float64
	EntryPrice   float64
	ExitPrice    float64
	GrossPnL     float64
	Commission   float64
	Slippage     float64
	NetPnL       float64
	BarsHeld     int
	MAE          float64 // maximum adverse excursion (worst unrealized, negative or zero)
	MFE          float64 // maximum favorable excursion (best unrealized, positive or zero)

	// Traceability metadata, attached from the entry signal.
	SignalType         string
	PositionManagerType string
	ExecutionModelType  string
	SignalFilterType    string
}
