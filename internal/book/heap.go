// Package book implements the resting side of the limit order book: a
// direction-aware price heap, FIFO price levels, and the market-by-level
// view that ties them together, plus the OrderBook facade that drives
// place/cancel/amend against both sides at once.
package book

import (
	"math"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"

	"matchbook/internal/common"
)

// PriceHeap is an ordered set of distinct price points for one side of the
// book. The "best" price is always the root regardless of side: Buy stores
// negated prices internally so the tree's ascending order (lowest stored
// value first) surfaces the highest real buy price; Sell stores raw prices
// so the same ascending order surfaces the lowest real sell price. One
// btree.BTreeG[float64], ordered by plain float64 comparison, serves both
// directions through the sign of mult.
type PriceHeap struct {
	side common.Side
	mult float64
	tree *btree.BTreeG[float64]

	hasWorst    bool
	worstStored float64
}

// NewPriceHeap creates an empty PriceHeap for side.
func NewPriceHeap(side common.Side) *PriceHeap {
	return &PriceHeap{
		side: side,
		mult: -float64(side),
		tree: btree.NewBTreeG(func(a, b float64) bool { return a < b }),
	}
}

// Push adds price to the set. Pushing a price already present is a no-op
// beyond refreshing the worst-seen high-water mark.
func (h *PriceHeap) Push(price float64) {
	stored := price * h.mult
	if !h.hasWorst || stored > h.worstStored {
		h.worstStored = stored
		h.hasWorst = true
	}
	h.tree.Set(stored)
}

// Remove discards price from the set. Removing a price that was never
// pushed, or was already removed, is logged and otherwise ignored: the
// caller (MBL) only calls Remove when a level has emptied, and a missing
// entry there means the heap and the level map have already diverged.
func (h *PriceHeap) Remove(price float64) {
	stored := price * h.mult
	if _, ok := h.tree.Delete(stored); !ok {
		log.Warn().
			Float64("price", price).
			Str("side", h.side.String()).
			Msg("price heap: remove of an untracked price was ignored")
	}
}

// Len reports the number of distinct prices currently held.
func (h *PriceHeap) Len() int {
	return h.tree.Len()
}

// BestPrice returns the best (highest bid / lowest ask) price, or the
// empty-book sentinel for this side when the heap holds nothing: 0 for
// Buy, +Inf for Sell, so that comparing an empty book's best price against
// any real quote always reports the book as non-competitive.
func (h *PriceHeap) BestPrice() float64 {
	if stored, ok := h.tree.Min(); ok {
		return stored * h.mult
	}
	if h.side == common.Sell {
		return math.Inf(1)
	}
	return 0
}

// WorstPrice returns the furthest-from-best price ever pushed onto this
// heap, even if it has since been removed. Empty-book sentinel is the
// mirror of BestPrice's: +Inf for Buy, 0 for Sell.
func (h *PriceHeap) WorstPrice() float64 {
	if h.hasWorst {
		return h.worstStored * h.mult
	}
	if h.side == common.Buy {
		return math.Inf(1)
	}
	return 0
}

// Pop removes and returns the best price, or (0, false) if the heap is
// empty.
func (h *PriceHeap) Pop() (float64, bool) {
	stored, ok := h.tree.PopMin()
	if !ok {
		return 0, false
	}
	return stored * h.mult, true
}

// Top returns up to n best prices, best-first. n<=0 returns nil.
func (h *PriceHeap) Top(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, 0, n)
	h.tree.Scan(func(stored float64) bool {
		out = append(out, stored*h.mult)
		return len(out) < n
	})
	return out
}

// At returns the i-th best price (0 == best) and whether i was in range.
func (h *PriceHeap) At(i int) (float64, bool) {
	if i < 0 {
		return 0, false
	}
	stored, ok := h.tree.GetAt(i)
	if !ok {
		return 0, false
	}
	return stored * h.mult, true
}
