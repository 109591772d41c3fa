package book

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/common"
)

func TestPriceHeapLen(t *testing.T) {
	h := NewPriceHeap(common.Buy)
	assert.Equal(t, 0, h.Len())

	for price := 0; price < 100; price++ {
		h.Push(float64(price))
	}
	assert.Equal(t, 100, h.Len())
}

func TestPriceHeapEmptySentinels(t *testing.T) {
	buy := NewPriceHeap(common.Buy)
	sell := NewPriceHeap(common.Sell)

	assert.Equal(t, 0.0, buy.BestPrice())
	assert.True(t, math.IsInf(sell.BestPrice(), 1))

	assert.True(t, math.IsInf(buy.WorstPrice(), 1))
	assert.Equal(t, 0.0, sell.WorstPrice())
}

func TestPriceHeapSortAndDirection(t *testing.T) {
	buy := NewPriceHeap(common.Buy)
	sell := NewPriceHeap(common.Sell)

	for price := 1; price <= 100; price++ {
		buy.Push(float64(price))
		sell.Push(float64(price))
	}

	sellBest, ok := sell.At(0)
	require.True(t, ok)
	assert.Equal(t, 1.0, sellBest)

	buyBest, ok := buy.At(0)
	require.True(t, ok)
	assert.Equal(t, 100.0, buyBest)

	assert.Equal(t, []float64{1, 2, 3, 4, 5}, sell.Top(5))
	assert.Equal(t, []float64{100, 99, 98, 97, 96}, buy.Top(5))

	assert.Equal(t, 100.0, sell.WorstPrice())
	assert.Equal(t, 1.0, buy.WorstPrice())

	// Remove the bottom half of sell's prices and top half of buy's.
	for price := 1; price < 50; price++ {
		sell.Remove(float64(price))
	}
	assert.Equal(t, 51, sell.Len())
	best, _ := sell.At(0)
	assert.Equal(t, 50.0, best)
	assert.Equal(t, []float64{50, 51, 52}, sell.Top(3))

	for price := 50; price <= 100; price++ {
		buy.Remove(float64(price))
	}
	assert.Equal(t, 49, buy.Len())
	best, _ = buy.At(0)
	assert.Equal(t, 49.0, best)
	assert.Equal(t, []float64{49, 48, 47}, buy.Top(3))
}

func TestPriceHeapRemoveUntrackedIsIgnored(t *testing.T) {
	h := NewPriceHeap(common.Buy)
	h.Push(10)
	assert.NotPanics(t, func() { h.Remove(99) })
	assert.Equal(t, 1, h.Len())
}

func TestPriceHeapPop(t *testing.T) {
	buy := NewPriceHeap(common.Buy)
	for price := 1; price <= 100; price++ {
		buy.Push(float64(price))
	}

	popped, ok := buy.Pop()
	require.True(t, ok)
	assert.Equal(t, 100.0, popped)
	assert.Equal(t, 99, buy.Len())
	assert.Equal(t, []float64{99, 98, 97, 96, 95}, buy.Top(5))

	empty := NewPriceHeap(common.Sell)
	_, ok = empty.Pop()
	assert.False(t, ok)
}
