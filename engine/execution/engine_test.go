package execution

import (
	"math"
	"testing"
	"time"

	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/engine/orderbook"
)

func bar(open, high, low, close float64) domain.Bar {
	return domain.Bar{Symbol: "SPY", Date: time.Now(), Open: open, High: high, Low: low, Close: close, Volume: 1_000_000}
}

var usEquity = domain.USEquityInstrument("SPY")

func TestProcessStartOfBarFillsMarketOnOpen(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Buy, Type: domain.NewMarketOnOpen(), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	eng := New(Frictionless())
	fills := eng.ProcessStartOfBar(book, "SPY", bar(100, 105, 99, 103), 0, usEquity)
	if len(fills) != 1 || fills[0].Price != 100 {
		t.Fatalf("expected one fill at open=100, got %v", fills)
	}
	if o.Status.Kind != domain.Filled {
		t.Fatalf("expected order filled")
	}
}

func TestProcessStartOfBarSkipsVoidBar(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Buy, Type: domain.NewMarketOnOpen(), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	eng := New(Frictionless())
	fills := eng.ProcessStartOfBar(book, "SPY", domain.VoidBar("SPY", time.Now()), 0, usEquity)
	if len(fills) != 0 {
		t.Fatalf("expected no fills on a void bar")
	}
	if !o.IsActive() {
		t.Fatalf("expected order to remain active on a void bar")
	}
}

// S2 — OCO sibling cancellation.
func TestOcoSiblingCancellationUnderWorstCase(t *testing.T) {
	book := orderbook.New()
	groupID := domain.OcoGroupID(1)
	stop := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(95), Quantity: 100, Status: domain.StatusPending(), OcoGroupID: &groupID}
	tp := &domain.Order{ID: 2, Symbol: "SPY", Side: domain.Sell, Type: domain.NewLimit(110), Quantity: 100, Status: domain.StatusPending(), OcoGroupID: &groupID}
	book.Submit(stop)
	book.Submit(tp)
	book.RegisterOcoGroup(domain.OcoGroup{ID: groupID, OrderIDs: []domain.OrderID{1, 2}})

	eng := New(Frictionless())
	fills := eng.ProcessIntrabar(book, "SPY", bar(100, 112, 94, 105), 0, domain.Long, usEquity)

	if len(fills) != 1 || fills[0].Price != 95 {
		t.Fatalf("expected exactly one fill at 95 (stop), got %v", fills)
	}
	if tp.Status.Kind != domain.Cancelled || tp.Status.Reason != "OCO sibling filled" {
		t.Fatalf("expected take-profit cancelled with OCO reason, got %v", tp.Status)
	}
}

// S3 — Gap-through sell stop, FillAtOpen.
func TestGapThroughSellStopFillAtOpen(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(100), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	cfg := Frictionless()
	cfg.GapPolicy = FillAtOpen
	eng := New(cfg)
	fills := eng.ProcessIntrabar(book, "SPY", bar(95, 97, 93, 96), 0, domain.Flat, usEquity)

	if len(fills) != 1 {
		t.Fatalf("expected one fill, got %v", fills)
	}
	if fills[0].Price != 95 || !fills[0].GapThrough {
		t.Fatalf("expected gap-through fill at 95, got %+v", fills[0])
	}
}

// S4 — Bracket same-bar exclusion.
func TestBracketSameBarExclusion(t *testing.T) {
	book := orderbook.New()
	entry := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Buy, Type: domain.NewMarketOnOpen(), Quantity: 100, Status: domain.StatusPending()}
	stop := &domain.Order{ID: 2, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(95), Quantity: 100, Status: domain.StatusPending()}
	book.SubmitBracket(entry, stop, nil, 1)

	eng := New(Frictionless())
	startFills := eng.ProcessStartOfBar(book, "SPY", bar(100, 105, 94, 103), 0, usEquity)
	if len(startFills) != 1 || startFills[0].Price != 100 {
		t.Fatalf("expected entry to fill at open=100, got %v", startFills)
	}
	if stop.ActivatedBar == nil || *stop.ActivatedBar != 0 {
		t.Fatalf("expected stop activated_bar == 0")
	}

	intraFills := eng.ProcessIntrabar(book, "SPY", bar(100, 105, 94, 103), 0, domain.Long, usEquity)
	if len(intraFills) != 0 {
		t.Fatalf("expected stop NOT to fill on its activation bar even though low=94, got %v", intraFills)
	}

	nextBar := bar(96, 97, 93, 94)
	intraFills = eng.ProcessIntrabar(book, "SPY", nextBar, 1, domain.Long, usEquity)
	if len(intraFills) != 1 {
		t.Fatalf("expected stop to fill on the following bar, got %v", intraFills)
	}
}

func TestBuyStopTriggersOnHigh(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Buy, Type: domain.NewStopMarket(105), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	eng := New(Frictionless())
	fills := eng.ProcessIntrabar(book, "SPY", bar(100, 106, 99, 104), 0, domain.Flat, usEquity)
	if len(fills) != 1 || fills[0].Price != 105 {
		t.Fatalf("expected buy stop fill at trigger 105, got %v", fills)
	}
}

func TestBuyLimitFavorableGapFillsAtOpen(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Buy, Type: domain.NewLimit(100), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	eng := New(Frictionless())
	fills := eng.ProcessIntrabar(book, "SPY", bar(95, 101, 94, 98), 0, domain.Flat, usEquity)
	if len(fills) != 1 || fills[0].Price != 95 {
		t.Fatalf("expected favorable gap fill at open=95, got %v", fills)
	}
}

func TestSellLimitFavorableGapFillsAtOpen(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewLimit(100), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	eng := New(Frictionless())
	fills := eng.ProcessIntrabar(book, "SPY", bar(105, 106, 99, 101), 0, domain.Flat, usEquity)
	if len(fills) != 1 || fills[0].Price != 105 {
		t.Fatalf("expected favorable gap fill at open=105, got %v", fills)
	}
}

func TestStopLimitTriggersWithoutFillingWhenLimitUnreachable(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopLimit(100, 90), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	eng := New(Frictionless())
	fills := eng.ProcessIntrabar(book, "SPY", bar(89, 89.5, 85, 87), 0, domain.Flat, usEquity)
	if len(fills) != 0 {
		t.Fatalf("expected no fill, got %v", fills)
	}
	if o.Status.Kind != domain.Triggered {
		t.Fatalf("expected order triggered but resting, got %v", o.Status)
	}
}

func TestStopLimitFillsWhenLimitReachable(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopLimit(100, 94), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	eng := New(Frictionless())
	fills := eng.ProcessIntrabar(book, "SPY", bar(99, 100, 93, 97), 0, domain.Flat, usEquity)
	if len(fills) != 1 || fills[0].Price != 94 {
		t.Fatalf("expected fill at limit=94, got %v", fills)
	}
}

func TestProcessEndOfBarFillsMarketOnClose(t *testing.T) {
	book := orderbook.New()
	o := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewMarketOnClose(), Quantity: 100, Status: domain.StatusPending()}
	book.Submit(o)

	eng := New(Frictionless())
	fills := eng.ProcessEndOfBar(book, "SPY", bar(100, 105, 99, 103), 0, usEquity)
	if len(fills) != 1 || fills[0].Price != 103 {
		t.Fatalf("expected fill at close=103, got %v", fills)
	}
}

func TestRegulatoryCostModelAppliesSecFeeAndTafOnSellsOnly(t *testing.T) {
	model := RegulatoryCostModel{PercentCostModel: PercentCostModel{}}

	_, buyCommission, _ := model.ComputeFill(100, domain.Buy, 100, usEquity)
	if buyCommission != 0 {
		t.Fatalf("expected zero regulatory fee on a buy, got %v", buyCommission)
	}

	_, sellCommission, _ := model.ComputeFill(100, domain.Sell, 100, usEquity)
	expectedSec := 100.0 * 100.0 * 0.0000278
	expectedTaf := 100.0 * 0.000145
	expected := expectedSec + expectedTaf
	if math.Abs(sellCommission-expected) > 1e-9 {
		t.Fatalf("expected regulatory fee ~%v, got %v", expected, sellCommission)
	}
}

func TestRegulatoryCostModelCapsFinraTaf(t *testing.T) {
	model := RegulatoryCostModel{PercentCostModel: PercentCostModel{}}
	_, commission, _ := model.ComputeFill(10, domain.Sell, 1_000_000, usEquity)
	secFee := 10.0 * 1_000_000 * 0.0000278
	if commission < secFee+7.27-1e-6 || commission > secFee+7.27+1e-6 {
		t.Fatalf("expected FINRA TAF capped at 7.27, got commission %v (sec fee %v)", commission, secFee)
	}
}

func TestPercentCostModelSlippageDirectional(t *testing.T) {
	model := PercentCostModel{SlippageBps: 100, CommissionRate: 0}
	buyPrice, _, _ := model.ComputeFill(100, domain.Buy, 1, usEquity)
	sellPrice, _, _ := model.ComputeFill(100, domain.Sell, 1, usEquity)
	if buyPrice <= 100 {
		t.Fatalf("expected buy slippage to push price up, got %v", buyPrice)
	}
	if sellPrice >= 100 {
		t.Fatalf("expected sell slippage to push price down, got %v", sellPrice)
	}
}

func TestParticipationRateLiquidityConstrains(t *testing.T) {
	p := ParticipationRateLiquidity{Rate: 0.1}
	eff, remainder := p.Constrain(500, 1000)
	if eff != 100 || remainder != 400 {
		t.Fatalf("expected effective=100 remainder=400, got %v %v", eff, remainder)
	}
}

func TestDeterministicPathOrdersByID(t *testing.T) {
	orders := []*domain.Order{
		{ID: 3, Side: domain.Sell, Type: domain.NewLimit(110)},
		{ID: 1, Side: domain.Sell, Type: domain.NewStopMarket(95)},
		{ID: 2, Side: domain.Sell, Type: domain.NewStopMarket(90)},
	}
	seq := DeterministicPath{}.OrderEvaluationSequence(orders, domain.Long, domain.Bar{})
	if seq[0].ID != 1 || seq[1].ID != 2 || seq[2].ID != 3 {
		t.Fatalf("expected ascending id order, got %v %v %v", seq[0].ID, seq[1].ID, seq[2].ID)
	}
}

func TestWorstCasePathPutsStopBeforeTakeProfitOnLong(t *testing.T) {
	stop := &domain.Order{ID: 2, Side: domain.Sell, Type: domain.NewStopMarket(95)}
	tp := &domain.Order{ID: 1, Side: domain.Sell, Type: domain.NewLimit(110)}
	seq := WorstCasePath{}.OrderEvaluationSequence([]*domain.Order{tp, stop}, domain.Long, domain.Bar{})
	if seq[0].ID != stop.ID {
		t.Fatalf("expected stop evaluated first under WorstCase, got order %v first", seq[0].ID)
	}
}

func TestBestCasePathPutsTakeProfitBeforeStopOnLong(t *testing.T) {
	stop := &domain.Order{ID: 2, Side: domain.Sell, Type: domain.NewStopMarket(95)}
	tp := &domain.Order{ID: 1, Side: domain.Sell, Type: domain.NewLimit(110)}
	seq := BestCasePath{}.OrderEvaluationSequence([]*domain.Order{stop, tp}, domain.Long, domain.Bar{})
	if seq[0].ID != tp.ID {
		t.Fatalf("expected take-profit evaluated first under BestCase, got order %v first", seq[0].ID)
	}
}

func TestDecodePresetMatchesOriginalOrdinals(t *testing.T) {
	if DecodePreset(1).GapPolicy != Realistic().GapPolicy {
		t.Fatalf("expected ordinal 1 to decode to Realistic")
	}
	if DecodePreset(99).GapPolicy != Realistic().GapPolicy {
		t.Fatalf("expected unknown ordinal to default to Realistic")
	}
}
