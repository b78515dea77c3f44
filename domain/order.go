package domain

import "fmt"

// OrderSide is the direction of an order.
type OrderSide int

const (
	Buy OrderSide = iota
	Sell
)

func (s OrderSide) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// OrderTypeKind enumerates the order-type variants. Go has no sum
// types, so OrderType pairs a kind tag with the price fields relevant
// to that kind; fields unused by a given kind are zero and never read.
type OrderTypeKind int

const (
	MarketOnOpen OrderTypeKind = iota
	MarketOnClose
	MarketImmediate
	StopMarket
	Limit
	StopLimit
)

func (k OrderTypeKind) String() string {
	switch k {
	case MarketOnOpen:
		return "market_on_open"
	case MarketOnClose:
		return "market_on_close"
	case MarketImmediate:
		return "market_immediate"
	case StopMarket:
		return "stop_market"
	case Limit:
		return "limit"
	case StopLimit:
		return "stop_limit"
	default:
		return "unknown"
	}
}

// OrderType is the tagged order-type variant described in the domain
// model: MarketOnOpen | MarketOnClose | MarketImmediate |
// StopMarket{trigger} | Limit{limit} | StopLimit{trigger, limit}.
type OrderType struct {
	Kind         OrderTypeKind
	TriggerPrice float64 // StopMarket, StopLimit
	LimitPrice   float64 // Limit, StopLimit
}

func NewMarketOnOpen() OrderType      { return OrderType{Kind: MarketOnOpen} }
func NewMarketOnClose() OrderType     { return OrderType{Kind: MarketOnClose} }
func NewMarketImmediate() OrderType   { return OrderType{Kind: MarketImmediate} }
func NewStopMarket(trigger float64) OrderType {
	return OrderType{Kind: StopMarket, TriggerPrice: trigger}
}
func NewLimit(limit float64) OrderType { return OrderType{Kind: Limit, LimitPrice: limit} }
func NewStopLimit(trigger, limit float64) OrderType {
	return OrderType{Kind: StopLimit, TriggerPrice: trigger, LimitPrice: limit}
}

// OrderStatus is the tagged order-status variant. Active = Pending or
// Triggered; Terminal = the negation of Active.
type OrderStatus struct {
	Kind   OrderStatusKind
	Reason string // only meaningful when Kind == Cancelled
}

type OrderStatusKind int

const (
	Pending OrderStatusKind = iota
	Triggered
	Filled
	Cancelled
	Expired
)

func (k OrderStatusKind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Triggered:
		return "triggered"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

func StatusPending() OrderStatus   { return OrderStatus{Kind: Pending} }
func StatusTriggered() OrderStatus { return OrderStatus{Kind: Triggered} }
func StatusFilled() OrderStatus    { return OrderStatus{Kind: Filled} }
func StatusExpired() OrderStatus   { return OrderStatus{Kind: Expired} }
func StatusCancelled(reason string) OrderStatus {
	return OrderStatus{Kind: Cancelled, Reason: reason}
}

// IsActive reports whether the status is Pending or Triggered.
func (s OrderStatus) IsActive() bool {
	return s.Kind == Pending || s.Kind == Triggered
}

// IsTerminal is the negation of IsActive.
func (s OrderStatus) IsTerminal() bool {
	return !s.IsActive()
}

func (s OrderStatus) String() string {
	if s.Kind == Cancelled && s.Reason != "" {
		return fmt.Sprintf("cancelled(%s)", s.Reason)
	}
	return s.Kind.String()
}

// Order is a single resting or filled order owned by the order book
// for the lifetime of one backtest.
type Order struct {
	ID             OrderID
	Symbol         string
	Side           OrderSide
	Type           OrderType
	Quantity       float64
	FilledQuantity float64
	Status         OrderStatus
	CreatedBar     int
	ParentID       *OrderID     // set on bracket children
	OcoGroupID     *OcoGroupID
	ActivatedBar   *int // set when a dormant bracket child becomes active
}

// RemainingQuantity is Quantity - FilledQuantity, never negative.
func (o *Order) RemainingQuantity() float64 {
	r := o.Quantity - o.FilledQuantity
	if r < 0 {
		return 0
	}
	return r
}

// IsActive reports whether the order's status is Active.
func (o *Order) IsActive() bool {
	return o.Status.IsActive()
}

// OcoGroup is a set of orders of which at most one may reach Filled.
type OcoGroup struct {
	ID       OcoGroupID
	OrderIDs []OrderID
}

// BracketOrder bundles an entry with its protective children. Children
// are dormant (invisible to the execution engine and active-order
// queries) until the entry fills in full.
type BracketOrder struct {
	EntryID      OrderID
	StopLossID   OrderID
	TakeProfitID *OrderID
	OcoGroupID   OcoGroupID
}
