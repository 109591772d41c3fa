package book

import (
	"fmt"

	"matchbook/internal/common"
)

// MBL (market-by-level) owns one side's PriceHeap together with the map
// from price to the PriceLevel resting there. There is one MBL per side of
// an OrderBook.
type MBL struct {
	side   common.Side
	heap   *PriceHeap
	levels map[float64]*PriceLevel
}

// NewMBL creates an empty MBL for side.
func NewMBL(side common.Side) *MBL {
	return &MBL{
		side:   side,
		heap:   NewPriceHeap(side),
		levels: make(map[float64]*PriceLevel),
	}
}

// Side returns the side this MBL represents.
func (m *MBL) Side() common.Side {
	return m.side
}

// Depth returns the number of distinct price levels.
func (m *MBL) Depth() int {
	return len(m.levels)
}

// BestPrice returns the best resting price, or this side's empty-book
// sentinel (see PriceHeap.BestPrice).
func (m *MBL) BestPrice() float64 {
	return m.heap.BestPrice()
}

// BestLevel returns the level at the best price, if any.
func (m *MBL) BestLevel() (*PriceLevel, bool) {
	price := m.heap.BestPrice()
	lvl, ok := m.levels[price]
	return lvl, ok
}

// LevelAt returns the level resting at price, if any.
func (m *MBL) LevelAt(price float64) (*PriceLevel, bool) {
	lvl, ok := m.levels[price]
	return lvl, ok
}

// Top returns up to n levels, best price first.
func (m *MBL) Top(n int) []*PriceLevel {
	prices := m.heap.Top(n)
	out := make([]*PriceLevel, 0, len(prices))
	for _, p := range prices {
		if lvl, ok := m.levels[p]; ok {
			out = append(out, lvl)
		}
	}
	return out
}

// appendLevel registers lvl (already carrying a nonzero price) with this
// MBL. Called by NewPriceLevel for a level created with a price, and by
// PushOrder when an untethered level adopts one.
func (m *MBL) appendLevel(lvl *PriceLevel) {
	if _, exists := m.levels[lvl.price]; exists {
		return
	}
	m.levels[lvl.price] = lvl
	m.heap.Push(lvl.price)
}

// deleteLevel removes the level at price, if any. Called by PriceLevel
// when its order count drops to zero.
func (m *MBL) deleteLevel(price float64) {
	if _, exists := m.levels[price]; !exists {
		return
	}
	delete(m.levels, price)
	m.heap.Remove(price)
}

// PopLevel removes and returns the best level, if any. Unlike BestLevel
// (a non-destructive peek), PopLevel takes the level off this MBL
// entirely: its price no longer appears in Top/LevelAt until something
// rests there again.
func (m *MBL) PopLevel() (*PriceLevel, bool) {
	price, ok := m.heap.Pop()
	if !ok {
		return nil, false
	}
	lvl, ok := m.levels[price]
	if !ok {
		return nil, false
	}
	delete(m.levels, price)
	return lvl, true
}

// AddOrder routes o to the level at o.Price, creating the level (and
// registering it with this MBL) on first touch.
func (m *MBL) AddOrder(o common.Order) (int, error) {
	lvl, ok := m.levels[o.Price]
	if !ok {
		lvl = NewPriceLevel(o.Price, m)
	}
	return lvl.PushOrder(o)
}

// ModifyOrder replaces the resting order sharing o.OrderID in place at
// o.Price.
func (m *MBL) ModifyOrder(o common.Order) (int, error) {
	lvl, ok := m.levels[o.Price]
	if !ok {
		return -1, fmt.Errorf("%w: no level at price %v", common.ErrNotFound, o.Price)
	}
	return lvl.ModifyOrder(o)
}

// RemoveOrder removes the resting order matching o's OrderID and price.
func (m *MBL) RemoveOrder(o common.Order) (common.Order, error) {
	lvl, ok := m.levels[o.Price]
	if !ok {
		return common.Order{}, fmt.Errorf("%w: no level at price %v", common.ErrNotFound, o.Price)
	}
	return lvl.RemoveOrder(o)
}

// RemoveOrderByID searches every level for an order with orderID. Callers
// that know the order's price should prefer RemoveOrder, which is O(1)
// against the level map instead of O(depth).
func (m *MBL) RemoveOrderByID(orderID string) (common.Order, error) {
	for _, lvl := range m.levels {
		if _, exists := lvl.index[orderID]; exists {
			return lvl.RemoveOrderByID(orderID)
		}
	}
	return common.Order{}, fmt.Errorf("%w: order %s not resting on %s side", common.ErrNotFound, orderID, m.side)
}

// TradeVolume consumes volume units of liquidity from the best level,
// cascading into successive levels until volume is exhausted or the side
// empties. Returns the unconsumed remainder and every fully drained order
// across every level touched, in price-time priority order. An order left
// partially filled at the head of its level is not in the returned slice;
// only its reduced LeavesQty in the level records that it traded.
func (m *MBL) TradeVolume(volume uint64) (uint64, []common.Order) {
	var consumed []common.Order
	remaining := volume

	for remaining > 0 {
		lvl, ok := m.BestLevel()
		if !ok {
			break
		}
		rem, reported := lvl.TradeVolume(remaining)
		consumed = append(consumed, reported...)
		if rem == remaining {
			// No progress: the level reported nothing, avoid spinning.
			break
		}
		remaining = rem
	}

	return remaining, consumed
}

func (m *MBL) String() string {
	return fmt.Sprintf("MBL{side=%s depth=%d best=%g}", m.side, m.Depth(), m.BestPrice())
}
