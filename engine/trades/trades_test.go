package trades

import (
	"testing"
	"time"

	"github.com/ridopark/trendlab/domain"
)

var tags = ComponentTags{SignalType: "tsmom", PositionManagerType: "no_op", ExecutionModelType: "next_bar_open", SignalFilterType: "no_filter"}

func mkFill(orderID, barIndex int, side domain.OrderSide, price, qty float64) domain.Fill {
	return domain.Fill{
		OrderID:  domain.OrderID(orderID),
		BarIndex: barIndex,
		Date:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, barIndex),
		Symbol:   "AAA",
		Side:     side,
		Price:    price,
		Quantity: qty,
	}
}

func TestFifoEntryThenFullExit(t *testing.T) {
	e := NewExtractor()
	e.OnFill(mkFill(1, 0, domain.Buy, 100, 50), tags)
	e.OnFill(mkFill(2, 5, domain.Sell, 110, 50), tags)

	closed := e.Trades()
	if len(closed) != 1 {
		t.Fatalf("expected 1 closed trade, got %d", len(closed))
	}
	tr := closed[0]
	if tr.GrossPnL != (110-100)*50 {
		t.Fatalf("expected gross pnl 500, got %v", tr.GrossPnL)
	}
	if tr.BarsHeld != 5 {
		t.Fatalf("expected bars held 5, got %d", tr.BarsHeld)
	}
	if tr.SignalType != "tsmom" {
		t.Fatalf("expected tags carried onto trade record, got %q", tr.SignalType)
	}
}

func TestFifoPartialClose(t *testing.T) {
	e := NewExtractor()
	e.OnFill(mkFill(1, 0, domain.Buy, 100, 100), tags)
	e.OnFill(mkFill(2, 2, domain.Sell, 105, 40), tags)
	e.OnFill(mkFill(3, 4, domain.Sell, 108, 60), tags)

	closed := e.Trades()
	if len(closed) != 2 {
		t.Fatalf("expected 2 closed trades from the two partial exits, got %d", len(closed))
	}
	total := 0.0
	for _, tr := range closed {
		total += tr.Quantity
	}
	if total != 100 {
		t.Fatalf("expected total closed quantity 100, got %v", total)
	}
	if closed[0].Quantity != 40 || closed[1].Quantity != 60 {
		t.Fatalf("expected FIFO quantities 40 then 60, got %v then %v", closed[0].Quantity, closed[1].Quantity)
	}
}

func TestReversalFillLargerThanRestingLot(t *testing.T) {
	e := NewExtractor()
	e.OnFill(mkFill(1, 0, domain.Buy, 100, 50), tags)  // open long 50
	e.OnFill(mkFill(2, 3, domain.Sell, 90, 80), tags)   // close 50 long, open 30 short
	e.OnFill(mkFill(3, 6, domain.Buy, 85, 30), tags)    // close 30 short

	closed := e.Trades()
	if len(closed) != 2 {
		t.Fatalf("expected 2 closed trades (long close + short close), got %d", len(closed))
	}
	if closed[0].Side != domain.Buy || closed[0].Quantity != 50 {
		t.Fatalf("expected first closed trade to be the 50-share long, got side=%v qty=%v", closed[0].Side, closed[0].Quantity)
	}
	if closed[1].Side != domain.Sell || closed[1].Quantity != 30 {
		t.Fatalf("expected second closed trade to be the 30-share short opened by the reversal, got side=%v qty=%v", closed[1].Side, closed[1].Quantity)
	}
}

func TestMaeMfeTrackingOnLong(t *testing.T) {
	e := NewExtractor()
	e.OnFill(mkFill(1, 0, domain.Buy, 100, 10), tags)

	e.OnBarMark("AAA", domain.Bar{Symbol: "AAA", High: 101, Low: 90, Close: 95})  // adverse dip to 90
	e.OnBarMark("AAA", domain.Bar{Symbol: "AAA", High: 115, Low: 94, Close: 112}) // favorable run to 115

	e.OnFill(mkFill(2, 2, domain.Sell, 112, 10), tags)

	tr := e.Trades()[0]
	if tr.MAE != (90-100)*10 {
		t.Fatalf("expected MAE -100 from the 90 dip, got %v", tr.MAE)
	}
	if tr.MFE != (115-100)*10 {
		t.Fatalf("expected MFE 150 from the 115 run, got %v", tr.MFE)
	}
}

func TestComputeStickinessPercentilesAndChaseRatio(t *testing.T) {
	closed := []domain.TradeRecord{
		{BarsHeld: 2}, {BarsHeld: 4}, {BarsHeld: 6}, {BarsHeld: 8}, {BarsHeld: 10},
	}
	s := ComputeStickiness(closed, 100, 25)
	if s.MedianHoldingBars != 6 {
		t.Fatalf("expected median holding 6, got %v", s.MedianHoldingBars)
	}
	if s.ReferenceChaseRatio != 0.25 {
		t.Fatalf("expected chase ratio 0.25, got %v", s.ReferenceChaseRatio)
	}
}

func TestComputeStickinessEmptyTrades(t *testing.T) {
	s := ComputeStickiness(nil, 0, 0)
	if s.MedianHoldingBars != 0 || s.ReferenceChaseRatio != 0 {
		t.Fatalf("expected zero-value stickiness for no trades, got %+v", s)
	}
}
