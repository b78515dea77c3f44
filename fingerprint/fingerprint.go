// Package fingerprint computes stable hashes over ComponentConfig and
// StrategyConfig so identical strategy definitions always produce the
// same cache key and run identifier, regardless of map iteration order.
// Grounded on original_source/trendlab-core's fingerprint.rs call-sites
// in factory.rs and loop_runner.rs (the source file itself was not
// retained in the pack — reconstructed from spec.md §6's
// "config_hash, full_hash" wording and the canonicalization requirement
// implied by using a BTreeMap-backed ComponentConfig.params in Rust).
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ridopark/trendlab/domain"
)

// ComponentHash canonicalizes a ComponentConfig by sorting its
// parameter keys before hashing, so map iteration order never affects
// the result.
func ComponentHash(cfg domain.ComponentConfig) string {
	keys := make([]string, 0, len(cfg.Params))
	for k := range cfg.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(cfg.ComponentType)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(cfg.Params[k], 'g', -1, 64))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ConfigHash is the stable hash of the four pluggable components that
// define a strategy's behavior, independent of capital/date-range
// bookkeeping.
func ConfigHash(cfg domain.StrategyConfig) string {
	parts := []string{
		ComponentHash(cfg.Signal),
		ComponentHash(cfg.PositionManager),
		ComponentHash(cfg.ExecutionModel),
		ComponentHash(cfg.SignalFilter),
		strconv.Itoa(int(cfg.TradingMode)),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "::")))
	return hex.EncodeToString(sum[:])
}

// FullHash additionally folds in capital, date range, and the dataset
// fingerprint, so two runs of the same strategy over different data or
// capital never collide in the results store.
func FullHash(cfg domain.StrategyConfig) string {
	base := ConfigHash(cfg)
	tail := fmt.Sprintf("%s::%s::%s::%s",
		strconv.FormatFloat(cfg.InitialCapital, 'g', -1, 64),
		cfg.StartDate, cfg.EndDate, cfg.DatasetFingerprint)
	sum := sha256.Sum256([]byte(base + "::" + tail))
	return hex.EncodeToString(sum[:])
}
