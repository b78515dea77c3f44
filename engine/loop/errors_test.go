package loop

import (
	"testing"

	"github.com/ridopark/trendlab/indicators"
)

func TestValidateConfigRejectsEmptyDataset(t *testing.T) {
	aligned := buildAligned("AAA", nil)
	if err := ValidateConfig(aligned, nil, baseConfig()); err == nil {
		t.Fatal("expected error for zero-bar dataset")
	}
}

func TestValidateConfigRejectsWarmupAtOrAboveBarCount(t *testing.T) {
	closes := make([]float64, 5)
	for i := range closes {
		closes[i] = 100
	}
	aligned := buildAligned("AAA", closes)
	cfg := baseConfig()
	cfg.WarmupBars = 5
	if err := ValidateConfig(aligned, nil, cfg); err == nil {
		t.Fatal("expected error when warmup bars meets dataset length")
	}
}

func TestValidateConfigRejectsNonPositiveCapital(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104}
	aligned := buildAligned("AAA", closes)
	cfg := baseConfig()
	cfg.InitialCapital = 0
	if err := ValidateConfig(aligned, nil, cfg); err == nil {
		t.Fatal("expected error for zero initial capital")
	}
}

func TestValidateConfigRejectsOutOfRangePositionSize(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104}
	aligned := buildAligned("AAA", closes)
	cfg := baseConfig()
	cfg.PositionSizePct = 1.5
	if err := ValidateConfig(aligned, nil, cfg); err == nil {
		t.Fatal("expected error for position_size_pct out of (0,1]")
	}
}

func TestValidateConfigAcceptsSensibleInputs(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105}
	aligned := buildAligned("AAA", closes)
	if err := ValidateConfig(aligned, []indicators.Indicator(nil), baseConfig()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
