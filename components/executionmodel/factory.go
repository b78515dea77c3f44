package executionmodel

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Error reports an unknown execution-model tag. Mirrors factory.rs's
// FactoryError::Execution variant.
type Error struct {
	Tag    string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("execution model factory: %s: %s", e.Tag, e.Detail)
}

// Create builds a Model from a ComponentConfig, keyed by
// cfg.ComponentType. Tags mirror factory.rs's create_execution exactly.
func Create(cfg domain.ComponentConfig) (Model, error) {
	switch cfg.ComponentType {
	case "next_bar_open":
		return NextBarOpen{}, nil
	case "close_on_signal":
		return CloseOnSignal{}, nil
	case "stop_entry":
		return StopEntry{OffsetBps: cfg.Param("offset_bps", 10)}, nil
	case "limit_entry":
		return LimitEntry{OffsetBps: cfg.Param("offset_bps", 10)}, nil
	default:
		return nil, &Error{Tag: cfg.ComponentType, Detail: "unknown execution model component"}
	}
}
