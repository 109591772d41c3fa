package book

import (
	"fmt"

	"matchbook/internal/common"
)

// PriceLevel is the FIFO resting queue at a single price point. A level is
// "untethered" (price == 0, not yet registered with its MBL) until its
// first order adopts a price; from then on every push must match that
// price. When the level's
// order count drops back to zero it deletes itself from its owning MBL.
type PriceLevel struct {
	price float64
	mbl   *MBL

	orders []common.Order
	index  map[string]int
}

// NewPriceLevel creates a level at price, owned by mbl. price == 0 creates
// an untethered level that adopts its price from the first pushed order;
// mbl may be nil for a level under test in isolation.
func NewPriceLevel(price float64, mbl *MBL) *PriceLevel {
	lvl := &PriceLevel{
		price: price,
		mbl:   mbl,
		index: make(map[string]int),
	}
	if price != 0 && mbl != nil {
		mbl.appendLevel(lvl)
	}
	return lvl
}

// Price returns the level's price point (0 for an untethered, empty level).
func (lvl *PriceLevel) Price() float64 {
	return lvl.price
}

// Count returns the number of resting orders.
func (lvl *PriceLevel) Count() int {
	return len(lvl.orders)
}

// Size returns the sum of LeavesQty across all resting orders.
func (lvl *PriceLevel) Size() uint64 {
	var total uint64
	for _, o := range lvl.orders {
		total += o.LeavesQty
	}
	return total
}

// Head returns the order at the front of the FIFO queue.
func (lvl *PriceLevel) Head() (common.Order, bool) {
	if len(lvl.orders) == 0 {
		return common.Order{}, false
	}
	return lvl.orders[0], true
}

// Orders returns the resting orders in FIFO order. Callers must not mutate
// the returned slice.
func (lvl *PriceLevel) Orders() []common.Order {
	return lvl.orders
}

// At returns the i-th resting order (0 == head) and whether i was in range.
func (lvl *PriceLevel) At(i int) (common.Order, bool) {
	if i < 0 || i >= len(lvl.orders) {
		return common.Order{}, false
	}
	return lvl.orders[i], true
}

func (lvl *PriceLevel) verifyPrice(price float64) error {
	if lvl.price == 0 {
		return nil
	}
	if price != lvl.price {
		return fmt.Errorf("%w: order price %v does not match level price %v", common.ErrPriceMismatch, price, lvl.price)
	}
	return nil
}

// PushOrder appends o to the tail of the queue, returning its index.
// A level with price == 0 and no resting orders adopts o.Price as its own
// and, if owned by an MBL, registers itself there. Any other price
// mismatch or a duplicate OrderID fails.
func (lvl *PriceLevel) PushOrder(o common.Order) (int, error) {
	if lvl.price == 0 && len(lvl.orders) == 0 {
		lvl.price = o.Price
		if lvl.mbl != nil {
			lvl.mbl.appendLevel(lvl)
		}
	} else if err := lvl.verifyPrice(o.Price); err != nil {
		return -1, err
	}

	if _, exists := lvl.index[o.OrderID]; exists {
		return -1, fmt.Errorf("%w: order %s already resting at price %v", common.ErrDuplicateOrder, o.OrderID, lvl.price)
	}

	idx := len(lvl.orders)
	lvl.orders = append(lvl.orders, o)
	lvl.index[o.OrderID] = idx
	return idx, nil
}

// ModifyOrder replaces the resting order sharing o.OrderID in place,
// preserving its queue position. Callers decide whether an in-place
// replacement is legal (size-down only; size-up must cancel and repost) —
// ModifyOrder itself only checks identity and price. An empty level
// returns (-1, nil): there is nothing to modify and nothing went wrong. A
// non-empty level missing that OrderID is ErrNotFound.
func (lvl *PriceLevel) ModifyOrder(o common.Order) (int, error) {
	if len(lvl.orders) == 0 {
		return -1, nil
	}
	if err := lvl.verifyPrice(o.Price); err != nil {
		return -1, err
	}
	idx, exists := lvl.index[o.OrderID]
	if !exists {
		return -1, fmt.Errorf("%w: order %s not resting at price %v", common.ErrNotFound, o.OrderID, lvl.price)
	}
	lvl.orders[idx] = o
	return idx, nil
}

// RemoveOrder removes the resting order matching o's OrderID, first
// verifying o's price belongs to this level.
func (lvl *PriceLevel) RemoveOrder(o common.Order) (common.Order, error) {
	if err := lvl.verifyPrice(o.Price); err != nil {
		return common.Order{}, err
	}
	return lvl.RemoveOrderByID(o.OrderID)
}

// RemoveOrderByID removes and returns the resting order with the given
// OrderID. A missing OrderID is ErrNotFound (an explicit decision: the
// reference implementation returns a sentinel here, but a Go caller is
// better served by an error than a silent -1).
func (lvl *PriceLevel) RemoveOrderByID(orderID string) (common.Order, error) {
	idx, exists := lvl.index[orderID]
	if !exists {
		return common.Order{}, fmt.Errorf("%w: order %s not resting at price %v", common.ErrNotFound, orderID, lvl.price)
	}

	removed := lvl.orders[idx]
	lvl.orders = append(lvl.orders[:idx], lvl.orders[idx+1:]...)
	delete(lvl.index, orderID)
	for id, i := range lvl.index {
		if i > idx {
			lvl.index[id] = i - 1
		}
	}

	lvl.checkEmpty()
	return removed, nil
}

// TradeVolume consumes volume units of liquidity from the head of the
// queue. Orders fully absorbed are reported with LeavesQty zeroed and
// removed from the level. When volume is exhausted partway through an
// order, that order's LeavesQty is set to the unconsumed remainder and it
// stays resting at the head; it is not included in the reported slice.
// Returns the unconsumed remainder (0 if volume was fully placed) and the
// reported (fully consumed) orders in FIFO order.
func (lvl *PriceLevel) TradeVolume(volume uint64) (uint64, []common.Order) {
	remaining := int64(volume)
	idx := 0
	for idx < len(lvl.orders) {
		remaining -= int64(lvl.orders[idx].LeavesQty)
		if remaining <= 0 {
			break
		}
		idx++
	}

	var keepFrom int
	if idx >= len(lvl.orders) {
		// Demand meets or exceeds the level's whole size: everything goes.
		keepFrom = len(lvl.orders)
	} else if remaining < 0 {
		keepFrom = idx
	} else {
		keepFrom = idx + 1
	}

	reported := make([]common.Order, keepFrom)
	for i := 0; i < keepFrom; i++ {
		o := lvl.orders[i]
		o.LeavesQty = 0
		o.CumQty = o.OrderQty
		reported[i] = o
		delete(lvl.index, o.OrderID)
	}

	lvl.orders = lvl.orders[keepFrom:]
	if remaining < 0 && len(lvl.orders) > 0 {
		head := lvl.orders[0]
		head.LeavesQty = uint64(-remaining)
		head.CumQty = head.OrderQty - head.LeavesQty
		lvl.orders[0] = head
	}
	lvl.reindex()
	lvl.checkEmpty()

	if remaining < 0 {
		remaining = 0
	}
	return uint64(remaining), reported
}

func (lvl *PriceLevel) reindex() {
	lvl.index = make(map[string]int, len(lvl.orders))
	for i, o := range lvl.orders {
		lvl.index[o.OrderID] = i
	}
}

func (lvl *PriceLevel) checkEmpty() {
	if len(lvl.orders) == 0 && lvl.mbl != nil {
		lvl.mbl.deleteLevel(lvl.price)
	}
}

func (lvl *PriceLevel) String() string {
	return fmt.Sprintf("PriceLevel{price=%g count=%d size=%d}", lvl.price, lvl.Count(), lvl.Size())
}
