package orderbook

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// ErrorKind distinguishes the four OrderBookError variants described in
// the error taxonomy. All are recoverable at the engine boundary: the
// execution engine and the loop discard them and carry on rather than
// aborting the backtest; they are not logged.
type ErrorKind int

const (
	OrderNotFound ErrorKind = iota
	OrderNotActive
	InvalidTransition
	OrderIsDormant
)

// Error is the order book's error type. Kind is comparable directly;
// callers that need to distinguish variants should switch on Kind
// rather than matching on the formatted message.
type Error struct {
	Kind    ErrorKind
	OrderID domain.OrderID
	Detail  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case OrderNotFound:
		return fmt.Sprintf("order %d not found", e.OrderID)
	case OrderNotActive:
		return fmt.Sprintf("order %d not active: %s", e.OrderID, e.Detail)
	case InvalidTransition:
		return fmt.Sprintf("order %d: invalid transition: %s", e.OrderID, e.Detail)
	case OrderIsDormant:
		return fmt.Sprintf("order %d is dormant", e.OrderID)
	default:
		return fmt.Sprintf("order %d: unknown error", e.OrderID)
	}
}

func notFound(id domain.OrderID) error {
	return &Error{Kind: OrderNotFound, OrderID: id}
}

func notActive(id domain.OrderID, detail string) error {
	return &Error{Kind: OrderNotActive, OrderID: id, Detail: detail}
}

func invalidTransition(id domain.OrderID, detail string) error {
	return &Error{Kind: InvalidTransition, OrderID: id, Detail: detail}
}
