// Package orderbook implements the order lifecycle state machine: plain
// transitions, OCO cancellation, bracket dormancy/activation, atomic
// cancel/replace, and an append-only audit trail. Grounded on
// original_source/trendlab-core/src/engine/order_book.rs.
package orderbook

import (
	"sort"

	"github.com/ridopark/trendlab/domain"
)

// OrderBook owns every order it has seen for the lifetime of one
// backtest — filled, cancelled, and expired orders are retained for
// audit and trade extraction. No cyclic ownership: orders reference
// each other only by id.
type OrderBook struct {
	orders     map[domain.OrderID]*domain.Order
	dormant    map[domain.OrderID][]*domain.Order // entry id -> children
	brackets   map[domain.OrderID]domain.BracketOrder
	ocoGroups  map[domain.OcoGroupID]*domain.OcoGroup
	auditTrail []domain.OrderAuditEntry
}

// New returns an empty order book.
func New() *OrderBook {
	return &OrderBook{
		orders:    make(map[domain.OrderID]*domain.Order),
		dormant:   make(map[domain.OrderID][]*domain.Order),
		brackets:  make(map[domain.OrderID]domain.BracketOrder),
		ocoGroups: make(map[domain.OcoGroupID]*domain.OcoGroup),
	}
}

// GetOrder returns the order by id, if known (including terminal orders).
func (b *OrderBook) GetOrder(id domain.OrderID) (*domain.Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// Submit registers a new order. The order must already be Pending.
func (b *OrderBook) Submit(order *domain.Order) {
	b.orders[order.ID] = order
}

// SubmitBracket registers entry as a visible Pending order and stores
// stopLoss (and optional takeProfit) dormant until entry fills. The
// children's OcoGroupID is set to groupID and an OcoGroup covering them
// is registered; the entry itself is not a member of that group.
func (b *OrderBook) SubmitBracket(entry, stopLoss, takeProfit *domain.Order, groupID domain.OcoGroupID) {
	b.orders[entry.ID] = entry

	stopLoss.OcoGroupID = &groupID
	children := []*domain.Order{stopLoss}
	memberIDs := []domain.OrderID{stopLoss.ID}
	if takeProfit != nil {
		takeProfit.OcoGroupID = &groupID
		children = append(children, takeProfit)
		memberIDs = append(memberIDs, takeProfit.ID)
	}
	b.dormant[entry.ID] = children
	b.ocoGroups[groupID] = &domain.OcoGroup{ID: groupID, OrderIDs: memberIDs}

	var tpID *domain.OrderID
	if takeProfit != nil {
		id := takeProfit.ID
		tpID = &id
	}
	b.brackets[entry.ID] = domain.BracketOrder{
		EntryID:      entry.ID,
		StopLossID:   stopLoss.ID,
		TakeProfitID: tpID,
		OcoGroupID:   groupID,
	}
}

// RecordFill applies a fill of fillQty to order. When the order's
// filled quantity reaches its total quantity, the order transitions to
// Filled, any OCO siblings are cancelled, and — if the order is a
// bracket entry — its dormant children activate with activated_bar set
// to barIndex. Returns whether this fill completed the order.
func (b *OrderBook) RecordFill(orderID domain.OrderID, fillQty float64, barIndex int) (bool, error) {
	order, ok := b.orders[orderID]
	if !ok {
		return false, notFound(orderID)
	}
	if !order.IsActive() {
		return false, notActive(orderID, order.Status.String())
	}

	from := order.Status
	order.FilledQuantity += fillQty
	if order.FilledQuantity < order.Quantity {
		return false, nil
	}

	order.Status = domain.StatusFilled()
	b.recordAudit(orderID, barIndex, from, order.Status, "")
	b.handleOcoCancellation(orderID, barIndex)
	b.activateBracketChildren(orderID, barIndex)
	return true, nil
}

// Trigger transitions a Pending StopMarket or StopLimit order to
// Triggered.
func (b *OrderBook) Trigger(orderID domain.OrderID, barIndex int) error {
	order, ok := b.orders[orderID]
	if !ok {
		return notFound(orderID)
	}
	if order.Status.Kind != domain.Pending {
		return invalidTransition(orderID, "trigger requires Pending status")
	}
	if order.Type.Kind != domain.StopMarket && order.Type.Kind != domain.StopLimit {
		return invalidTransition(orderID, "trigger only valid for StopMarket/StopLimit")
	}

	from := order.Status
	order.Status = domain.StatusTriggered()
	b.recordAudit(orderID, barIndex, from, order.Status, "")
	return nil
}

// Cancel transitions an active order to Cancelled with reason. If the
// order is a bracket entry with dormant children still pending
// activation, those children are cancelled too, with reason
// "bracket entry cancelled".
func (b *OrderBook) Cancel(orderID domain.OrderID, barIndex int, reason string) error {
	order, ok := b.orders[orderID]
	if !ok {
		return notFound(orderID)
	}
	if !order.IsActive() {
		return notActive(orderID, order.Status.String())
	}

	from := order.Status
	order.Status = domain.StatusCancelled(reason)
	b.recordAudit(orderID, barIndex, from, order.Status, reason)

	if children, ok := b.dormant[orderID]; ok {
		for _, child := range children {
			childFrom := child.Status
			child.Status = domain.StatusCancelled("bracket entry cancelled")
			b.recordAudit(child.ID, barIndex, childFrom, child.Status, "bracket entry cancelled")
		}
		delete(b.dormant, orderID)
	}
	return nil
}

// CancelReplace cancels old (reason "replaced") and submits newOrder as
// Pending in a single logical step: newOrder inherits old's OCO group
// membership (the group's member list is rewritten to substitute
// newOrder for old), and if old was partially filled, newOrder's
// quantity is set to old's unfilled remainder.
func (b *OrderBook) CancelReplace(oldID domain.OrderID, newOrder *domain.Order, barIndex int) error {
	old, ok := b.orders[oldID]
	if !ok {
		return notFound(oldID)
	}
	if !old.IsActive() {
		return notActive(oldID, old.Status.String())
	}

	if old.FilledQuantity > 0 {
		newOrder.Quantity = old.RemainingQuantity()
	}
	newOrder.OcoGroupID = old.OcoGroupID
	if old.OcoGroupID != nil {
		if group, ok := b.ocoGroups[*old.OcoGroupID]; ok {
			for i, id := range group.OrderIDs {
				if id == oldID {
					group.OrderIDs[i] = newOrder.ID
				}
			}
		}
	}

	from := old.Status
	old.Status = domain.StatusCancelled("replaced")
	b.recordAudit(oldID, barIndex, from, old.Status, "replaced")

	newOrder.Status = domain.StatusPending()
	b.orders[newOrder.ID] = newOrder
	return nil
}

// Expire transitions an active order to Expired (day-order lifecycle).
func (b *OrderBook) Expire(orderID domain.OrderID, barIndex int) error {
	order, ok := b.orders[orderID]
	if !ok {
		return notFound(orderID)
	}
	if !order.IsActive() {
		return notActive(orderID, order.Status.String())
	}

	from := order.Status
	order.Status = domain.StatusExpired()
	b.recordAudit(orderID, barIndex, from, order.Status, "")
	return nil
}

// ActiveOrders returns every active order, sorted by ascending id for
// deterministic iteration.
func (b *OrderBook) ActiveOrders() []*domain.Order {
	out := make([]*domain.Order, 0, len(b.orders))
	for _, o := range b.orders {
		if o.IsActive() {
			out = append(out, o)
		}
	}
	sortByID(out)
	return out
}

// ActiveOrdersForSymbol returns active orders restricted to symbol.
func (b *OrderBook) ActiveOrdersForSymbol(symbol string) []*domain.Order {
	out := make([]*domain.Order, 0)
	for _, o := range b.orders {
		if o.IsActive() && o.Symbol == symbol {
			out = append(out, o)
		}
	}
	sortByID(out)
	return out
}

// GetBracket returns the bracket metadata registered for entryID.
func (b *OrderBook) GetBracket(entryID domain.OrderID) (domain.BracketOrder, bool) {
	br, ok := b.brackets[entryID]
	return br, ok
}

// GetOcoGroup returns the OCO group by id.
func (b *OrderBook) GetOcoGroup(groupID domain.OcoGroupID) (*domain.OcoGroup, bool) {
	g, ok := b.ocoGroups[groupID]
	return g, ok
}

// RegisterOcoGroup registers a standalone OCO group not created via
// SubmitBracket.
func (b *OrderBook) RegisterOcoGroup(group domain.OcoGroup) {
	g := group
	b.ocoGroups[group.ID] = &g
}

// AuditTrail returns the full append-only audit trail.
func (b *OrderBook) AuditTrail() []domain.OrderAuditEntry {
	return b.auditTrail
}

// HasActiveOrders reports whether any order is currently active.
func (b *OrderBook) HasActiveOrders() bool {
	for _, o := range b.orders {
		if o.IsActive() {
			return true
		}
	}
	return false
}

// ActiveCount returns the number of currently active orders.
func (b *OrderBook) ActiveCount() int {
	n := 0
	for _, o := range b.orders {
		if o.IsActive() {
			n++
		}
	}
	return n
}

// IsDormant reports whether orderID is a bracket child awaiting entry fill.
func (b *OrderBook) IsDormant(orderID domain.OrderID) bool {
	for _, children := range b.dormant {
		for _, c := range children {
			if c.ID == orderID {
				return true
			}
		}
	}
	return false
}

func (b *OrderBook) handleOcoCancellation(filledOrderID domain.OrderID, barIndex int) {
	order := b.orders[filledOrderID]
	if order.OcoGroupID == nil {
		return
	}
	group, ok := b.ocoGroups[*order.OcoGroupID]
	if !ok {
		return
	}
	for _, siblingID := range group.OrderIDs {
		if siblingID == filledOrderID {
			continue
		}
		sibling, ok := b.orders[siblingID]
		if !ok || !sibling.IsActive() {
			continue
		}
		from := sibling.Status
		sibling.Status = domain.StatusCancelled("OCO sibling filled")
		b.recordAudit(siblingID, barIndex, from, sibling.Status, "OCO sibling filled")
	}
}

func (b *OrderBook) activateBracketChildren(entryID domain.OrderID, barIndex int) {
	children, ok := b.dormant[entryID]
	if !ok {
		return
	}
	delete(b.dormant, entryID)

	bar := barIndex
	for _, child := range children {
		child.ActivatedBar = &bar
		b.orders[child.ID] = child
		b.recordAudit(child.ID, barIndex, child.Status, child.Status, "bracket entry filled — child activated")
	}
}

func (b *OrderBook) recordAudit(orderID domain.OrderID, barIndex int, from, to domain.OrderStatus, reason string) {
	b.auditTrail = append(b.auditTrail, domain.OrderAuditEntry{
		OrderID:  orderID,
		BarIndex: barIndex,
		From:     from,
		To:       to,
		Reason:   reason,
	})
}

func sortByID(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
}
