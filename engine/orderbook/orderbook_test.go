package orderbook

import (
	"testing"

	"github.com/ridopark/trendlab/domain"
)

func pendingOrder(id domain.OrderID, symbol string, qty float64) *domain.Order {
	return &domain.Order{
		ID:       id,
		Symbol:   symbol,
		Side:     domain.Buy,
		Type:     domain.NewMarketOnOpen(),
		Quantity: qty,
		Status:   domain.StatusPending(),
	}
}

func TestSubmitAndGet(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)

	got, ok := b.GetOrder(1)
	if !ok || got.ID != 1 {
		t.Fatalf("expected to find order 1, got %v ok=%v", got, ok)
	}
}

func TestActiveOrdersReturnsOnlyActive(t *testing.T) {
	b := New()
	b.Submit(pendingOrder(1, "SPY", 100))
	filled := pendingOrder(2, "SPY", 100)
	b.Submit(filled)
	if _, err := b.RecordFill(2, 100, 0); err != nil {
		t.Fatal(err)
	}

	active := b.ActiveOrders()
	if len(active) != 1 || active[0].ID != 1 {
		t.Fatalf("expected only order 1 active, got %v", active)
	}
}

func TestActiveOrdersForSymbolFilters(t *testing.T) {
	b := New()
	b.Submit(pendingOrder(1, "SPY", 100))
	b.Submit(pendingOrder(2, "QQQ", 100))

	spy := b.ActiveOrdersForSymbol("SPY")
	if len(spy) != 1 || spy[0].Symbol != "SPY" {
		t.Fatalf("expected only SPY orders, got %v", spy)
	}
}

func TestRecordFillFullyFills(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)

	full, err := b.RecordFill(1, 100, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !full {
		t.Fatalf("expected fully filled")
	}
	if o.Status.Kind != domain.Filled {
		t.Fatalf("expected Filled status, got %v", o.Status)
	}
}

func TestPartialFillTracking(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)

	full, err := b.RecordFill(1, 40, 0)
	if err != nil {
		t.Fatal(err)
	}
	if full {
		t.Fatalf("expected partial fill, not full")
	}
	if o.Status.Kind != domain.Pending {
		t.Fatalf("partial fill must not change status, got %v", o.Status)
	}
	if o.FilledQuantity != 40 {
		t.Fatalf("expected filled_quantity 40, got %v", o.FilledQuantity)
	}

	full, err = b.RecordFill(1, 60, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !full || o.Status.Kind != domain.Filled {
		t.Fatalf("expected second fill to complete the order")
	}
}

func TestCancelPendingOrder(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)

	if err := b.Cancel(1, 0, "user requested"); err != nil {
		t.Fatal(err)
	}
	if o.Status.Kind != domain.Cancelled || o.Status.Reason != "user requested" {
		t.Fatalf("expected cancelled with reason, got %v", o.Status)
	}
}

func TestCancelTriggeredOrder(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	o.Type = domain.NewStopMarket(95)
	b.Submit(o)

	if err := b.Trigger(1, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Cancel(1, 1, "cancelled"); err != nil {
		t.Fatal(err)
	}
	if o.Status.Kind != domain.Cancelled {
		t.Fatalf("expected cancelled, got %v", o.Status)
	}
}

func TestCancelFilledOrderFails(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)
	if _, err := b.RecordFill(1, 100, 0); err != nil {
		t.Fatal(err)
	}

	if err := b.Cancel(1, 1, "too late"); err == nil {
		t.Fatalf("expected error cancelling a filled order")
	}
}

func TestCancelAlreadyCancelledFails(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)
	if err := b.Cancel(1, 0, "first"); err != nil {
		t.Fatal(err)
	}
	if err := b.Cancel(1, 1, "second"); err == nil {
		t.Fatalf("expected error on double cancel")
	}
}

func TestExpirePendingOrder(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)
	if err := b.Expire(1, 5); err != nil {
		t.Fatal(err)
	}
	if o.Status.Kind != domain.Expired {
		t.Fatalf("expected expired, got %v", o.Status)
	}
}

func TestExpireFilledOrderFails(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)
	if _, err := b.RecordFill(1, 100, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Expire(1, 1); err == nil {
		t.Fatalf("expected error expiring a filled order")
	}
}

func TestTriggerNonPendingFails(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	o.Type = domain.NewStopMarket(95)
	b.Submit(o)
	if err := b.Trigger(1, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Trigger(1, 1); err == nil {
		t.Fatalf("expected error re-triggering an already-triggered order")
	}
}

func TestTriggerNonStopFails(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100) // MarketOnOpen
	b.Submit(o)
	if err := b.Trigger(1, 0); err == nil {
		t.Fatalf("expected error triggering a non-stop order")
	}
}

func TestFillNonexistentOrderFails(t *testing.T) {
	b := New()
	if _, err := b.RecordFill(999, 10, 0); err == nil {
		t.Fatalf("expected error filling an unknown order")
	}
}

func TestFillCancelledOrderFails(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)
	if err := b.Cancel(1, 0, "reason"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.RecordFill(1, 10, 1); err == nil {
		t.Fatalf("expected error filling a cancelled order")
	}
}

func TestOcoOneFillCancelsSibling(t *testing.T) {
	b := New()
	groupID := domain.OcoGroupID(1)
	stop := pendingOrder(1, "SPY", 100)
	stop.OcoGroupID = &groupID
	tp := pendingOrder(2, "SPY", 100)
	tp.OcoGroupID = &groupID
	b.Submit(stop)
	b.Submit(tp)
	b.RegisterOcoGroup(domain.OcoGroup{ID: groupID, OrderIDs: []domain.OrderID{1, 2}})

	if _, err := b.RecordFill(1, 100, 0); err != nil {
		t.Fatal(err)
	}
	if stop.Status.Kind != domain.Filled {
		t.Fatalf("expected stop filled")
	}
	if tp.Status.Kind != domain.Cancelled || tp.Status.Reason != "OCO sibling filled" {
		t.Fatalf("expected tp cancelled with OCO reason, got %v", tp.Status)
	}
}

func TestOcoThreeSiblingsOneFillCancelsBothOthers(t *testing.T) {
	b := New()
	groupID := domain.OcoGroupID(1)
	orders := []*domain.Order{
		pendingOrder(1, "SPY", 100),
		pendingOrder(2, "SPY", 100),
		pendingOrder(3, "SPY", 100),
	}
	ids := []domain.OrderID{}
	for _, o := range orders {
		o.OcoGroupID = &groupID
		b.Submit(o)
		ids = append(ids, o.ID)
	}
	b.RegisterOcoGroup(domain.OcoGroup{ID: groupID, OrderIDs: ids})

	if _, err := b.RecordFill(2, 100, 0); err != nil {
		t.Fatal(err)
	}
	if orders[0].Status.Kind != domain.Cancelled || orders[2].Status.Kind != domain.Cancelled {
		t.Fatalf("expected the two non-filled siblings cancelled")
	}
}

func TestOcoPartialFillDoesNotCancelSiblings(t *testing.T) {
	b := New()
	groupID := domain.OcoGroupID(1)
	stop := pendingOrder(1, "SPY", 100)
	stop.OcoGroupID = &groupID
	tp := pendingOrder(2, "SPY", 100)
	tp.OcoGroupID = &groupID
	b.Submit(stop)
	b.Submit(tp)
	b.RegisterOcoGroup(domain.OcoGroup{ID: groupID, OrderIDs: []domain.OrderID{1, 2}})

	if _, err := b.RecordFill(1, 50, 0); err != nil {
		t.Fatal(err)
	}
	if tp.Status.Kind != domain.Pending {
		t.Fatalf("expected sibling unaffected by partial fill, got %v", tp.Status)
	}
}

func submitTestBracket(b *OrderBook) (entry, stop, tp *domain.Order) {
	entry = pendingOrder(1, "SPY", 100)
	stop = &domain.Order{ID: 2, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(95), Quantity: 100, Status: domain.StatusPending()}
	tp = &domain.Order{ID: 3, Symbol: "SPY", Side: domain.Sell, Type: domain.NewLimit(110), Quantity: 100, Status: domain.StatusPending()}
	b.SubmitBracket(entry, stop, tp, 1)
	return
}

func TestBracketChildrenDormantBeforeEntryFill(t *testing.T) {
	b := New()
	_, stop, tp := submitTestBracket(b)

	active := b.ActiveOrders()
	for _, o := range active {
		if o.ID == stop.ID || o.ID == tp.ID {
			t.Fatalf("dormant child should not appear in active orders")
		}
	}
	if !b.IsDormant(stop.ID) || !b.IsDormant(tp.ID) {
		t.Fatalf("expected both children dormant")
	}
}

func TestBracketChildrenActivateOnEntryFill(t *testing.T) {
	b := New()
	entry, stop, tp := submitTestBracket(b)

	if _, err := b.RecordFill(entry.ID, 100, 4); err != nil {
		t.Fatal(err)
	}
	if b.IsDormant(stop.ID) || b.IsDormant(tp.ID) {
		t.Fatalf("expected children no longer dormant")
	}
	if stop.ActivatedBar == nil || *stop.ActivatedBar != 4 {
		t.Fatalf("expected stop activated_bar == 4, got %v", stop.ActivatedBar)
	}
	if !stop.IsActive() || !tp.IsActive() {
		t.Fatalf("expected children active (Pending) after activation")
	}
}

func TestBracketOcoWorksAfterActivation(t *testing.T) {
	b := New()
	entry, stop, tp := submitTestBracket(b)
	if _, err := b.RecordFill(entry.ID, 100, 0); err != nil {
		t.Fatal(err)
	}

	if _, err := b.RecordFill(stop.ID, 100, 1); err != nil {
		t.Fatal(err)
	}
	if tp.Status.Kind != domain.Cancelled || tp.Status.Reason != "OCO sibling filled" {
		t.Fatalf("expected take-profit OCO-cancelled after stop fill, got %v", tp.Status)
	}
}

func TestBracketEntryCancelCleansUpDormantChildren(t *testing.T) {
	b := New()
	entry, stop, tp := submitTestBracket(b)

	if err := b.Cancel(entry.ID, 0, "strategy stopped"); err != nil {
		t.Fatal(err)
	}
	if stop.Status.Kind != domain.Cancelled || stop.Status.Reason != "bracket entry cancelled" {
		t.Fatalf("expected stop cancelled with bracket reason, got %v", stop.Status)
	}
	if tp.Status.Kind != domain.Cancelled || tp.Status.Reason != "bracket entry cancelled" {
		t.Fatalf("expected tp cancelled with bracket reason, got %v", tp.Status)
	}
}

func TestBracketWithoutTakeProfit(t *testing.T) {
	b := New()
	entry := pendingOrder(1, "SPY", 100)
	stop := &domain.Order{ID: 2, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(95), Quantity: 100, Status: domain.StatusPending()}
	b.SubmitBracket(entry, stop, nil, 1)

	br, ok := b.GetBracket(entry.ID)
	if !ok || br.TakeProfitID != nil {
		t.Fatalf("expected bracket with nil take profit, got %v", br)
	}
}

func TestCancelReplaceBasic(t *testing.T) {
	b := New()
	old := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(95), Quantity: 100, Status: domain.StatusPending()}
	b.Submit(old)

	next := &domain.Order{ID: 2, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(97), Quantity: 100, Status: domain.StatusPending()}
	if err := b.CancelReplace(1, next, 3); err != nil {
		t.Fatal(err)
	}
	if old.Status.Kind != domain.Cancelled || old.Status.Reason != "replaced" {
		t.Fatalf("expected old cancelled with reason 'replaced', got %v", old.Status)
	}
	if next.Status.Kind != domain.Pending {
		t.Fatalf("expected new order pending, got %v", next.Status)
	}
}

func TestCancelReplaceWithPartialFill(t *testing.T) {
	b := New()
	old := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(95), Quantity: 100, Status: domain.StatusPending()}
	b.Submit(old)
	if _, err := b.RecordFill(1, 30, 0); err != nil {
		t.Fatal(err)
	}

	next := &domain.Order{ID: 2, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(97), Quantity: 999, Status: domain.StatusPending()}
	if err := b.CancelReplace(1, next, 1); err != nil {
		t.Fatal(err)
	}
	if next.Quantity != 70 {
		t.Fatalf("expected new order quantity to be old's remainder (70), got %v", next.Quantity)
	}
}

func TestCancelReplaceInheritsOcoGroup(t *testing.T) {
	b := New()
	groupID := domain.OcoGroupID(9)
	old := &domain.Order{ID: 1, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(95), Quantity: 100, Status: domain.StatusPending(), OcoGroupID: &groupID}
	b.Submit(old)
	b.RegisterOcoGroup(domain.OcoGroup{ID: groupID, OrderIDs: []domain.OrderID{1, 42}})

	next := &domain.Order{ID: 2, Symbol: "SPY", Side: domain.Sell, Type: domain.NewStopMarket(97), Quantity: 100, Status: domain.StatusPending()}
	if err := b.CancelReplace(1, next, 1); err != nil {
		t.Fatal(err)
	}
	if next.OcoGroupID == nil || *next.OcoGroupID != groupID {
		t.Fatalf("expected new order to inherit oco group")
	}
	group, _ := b.GetOcoGroup(groupID)
	found := false
	for _, id := range group.OrderIDs {
		if id == 2 {
			found = true
		}
		if id == 1 {
			t.Fatalf("expected old id removed from group member list")
		}
	}
	if !found {
		t.Fatalf("expected new id present in group member list")
	}
}

func TestCancelReplaceFilledOrderFails(t *testing.T) {
	b := New()
	old := pendingOrder(1, "SPY", 100)
	b.Submit(old)
	if _, err := b.RecordFill(1, 100, 0); err != nil {
		t.Fatal(err)
	}

	next := pendingOrder(2, "SPY", 100)
	if err := b.CancelReplace(1, next, 1); err == nil {
		t.Fatalf("expected error replacing a filled order")
	}
}

func TestAuditTrailRecordsAllTransitions(t *testing.T) {
	b := New()
	o := pendingOrder(1, "SPY", 100)
	b.Submit(o)
	if err := b.Cancel(1, 2, "done"); err != nil {
		t.Fatal(err)
	}

	trail := b.AuditTrail()
	if len(trail) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(trail))
	}
	if trail[0].From.Kind != domain.Pending || trail[0].To.Kind != domain.Cancelled {
		t.Fatalf("unexpected audit entry: %+v", trail[0])
	}
}

func TestAuditTrailIncludesOcoCancellations(t *testing.T) {
	b := New()
	groupID := domain.OcoGroupID(1)
	stop := pendingOrder(1, "SPY", 100)
	stop.OcoGroupID = &groupID
	tp := pendingOrder(2, "SPY", 100)
	tp.OcoGroupID = &groupID
	b.Submit(stop)
	b.Submit(tp)
	b.RegisterOcoGroup(domain.OcoGroup{ID: groupID, OrderIDs: []domain.OrderID{1, 2}})

	if _, err := b.RecordFill(1, 100, 0); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, e := range b.AuditTrail() {
		if e.OrderID == 2 && e.Reason == "OCO sibling filled" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an audit entry for the OCO cancellation")
	}
}

func TestAuditTrailIncludesBracketActivation(t *testing.T) {
	b := New()
	entry, stop, _ := submitTestBracket(b)
	if _, err := b.RecordFill(entry.ID, 100, 7); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, e := range b.AuditTrail() {
		if e.OrderID == stop.ID && e.BarIndex == 7 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an audit entry for bracket child activation")
	}
}

func TestNewBookIsEmpty(t *testing.T) {
	b := New()
	if b.HasActiveOrders() || b.ActiveCount() != 0 {
		t.Fatalf("expected a fresh book to have no active orders")
	}
}

func TestOcoInvariantSiblingsNeverBothFill(t *testing.T) {
	for _, firstFill := range []domain.OrderID{1, 2} {
		b := New()
		groupID := domain.OcoGroupID(1)
		a := pendingOrder(1, "SPY", 100)
		a.OcoGroupID = &groupID
		c := pendingOrder(2, "SPY", 100)
		c.OcoGroupID = &groupID
		b.Submit(a)
		b.Submit(c)
		b.RegisterOcoGroup(domain.OcoGroup{ID: groupID, OrderIDs: []domain.OrderID{1, 2}})

		if _, err := b.RecordFill(firstFill, 100, 0); err != nil {
			t.Fatal(err)
		}

		filledCount := 0
		for _, o := range []*domain.Order{a, c} {
			if o.Status.Kind == domain.Filled {
				filledCount++
			}
		}
		if filledCount != 1 {
			t.Fatalf("expected exactly one sibling filled, got %d", filledCount)
		}
	}
}

func TestBracketInvariantChildrenNeverActiveBeforeEntry(t *testing.T) {
	b := New()
	_, stop, tp := submitTestBracket(b)
	for _, o := range b.ActiveOrders() {
		if o.ID == stop.ID || o.ID == tp.ID {
			t.Fatalf("bracket child must never be active before entry fill")
		}
	}
}

func TestCancelReplaceAtomicity(t *testing.T) {
	b := New()
	old := pendingOrder(1, "SPY", 100)
	b.Submit(old)
	next := pendingOrder(2, "SPY", 100)

	if err := b.CancelReplace(1, next, 0); err != nil {
		t.Fatal(err)
	}
	oldActive := old.IsActive()
	newActive := next.IsActive()
	if oldActive == newActive {
		t.Fatalf("expected exactly one of old/new to be active, old=%v new=%v", oldActive, newActive)
	}
}
