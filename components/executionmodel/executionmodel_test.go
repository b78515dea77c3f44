package executionmodel

import (
	"testing"

	"github.com/ridopark/trendlab/domain"
)

var usEquity = domain.USEquityInstrument("SPY")

func TestNextBarOpenReturnsMarketOnOpen(t *testing.T) {
	ot := NextBarOpen{}.EntryOrderType(domain.SignalEvent{}, domain.Bar{}, usEquity)
	if ot.Kind != domain.MarketOnOpen {
		t.Fatalf("expected MarketOnOpen, got %v", ot.Kind)
	}
}

func TestStopEntryOffsetsInSignalDirection(t *testing.T) {
	bar := domain.Bar{Close: 100}
	long := StopEntry{OffsetBps: 100}.EntryOrderType(domain.SignalEvent{Direction: domain.DirectionLong}, bar, usEquity)
	if long.TriggerPrice <= 100 {
		t.Fatalf("expected long stop entry above close, got %v", long.TriggerPrice)
	}
	short := StopEntry{OffsetBps: 100}.EntryOrderType(domain.SignalEvent{Direction: domain.DirectionShort}, bar, usEquity)
	if short.TriggerPrice >= 100 {
		t.Fatalf("expected short stop entry below close, got %v", short.TriggerPrice)
	}
}

func TestLimitEntryOffsetsAgainstSignalDirection(t *testing.T) {
	bar := domain.Bar{Close: 100}
	long := LimitEntry{OffsetBps: 100}.EntryOrderType(domain.SignalEvent{Direction: domain.DirectionLong}, bar, usEquity)
	if long.LimitPrice >= 100 {
		t.Fatalf("expected long limit entry below close (pullback), got %v", long.LimitPrice)
	}
}

func TestFactoryCreatesKnownTags(t *testing.T) {
	for _, tag := range []string{"next_bar_open", "close_on_signal", "stop_entry", "limit_entry"} {
		m, err := Create(domain.ComponentConfig{ComponentType: tag})
		if err != nil || m == nil {
			t.Fatalf("expected %s to be created, got err=%v", tag, err)
		}
	}
}

func TestFactoryRejectsUnknownTag(t *testing.T) {
	if _, err := Create(domain.ComponentConfig{ComponentType: "nonsense"}); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
}
