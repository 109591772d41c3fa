package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/common"
)

const testLevelPrice = 256.0

func newTestOrder(t *testing.T, id string, price float64, qty int64) common.Order {
	t.Helper()
	o, err := common.NewOrder(common.OrderInput{
		OrderID:  id,
		Symbol:   "XBTUSD",
		Price:    price,
		OrderQty: qty,
	})
	require.NoError(t, err)
	return o
}

func TestPriceLevelAt(t *testing.T) {
	lvl := NewPriceLevel(testLevelPrice, nil)

	_, ok := lvl.At(0)
	assert.False(t, ok)

	order1 := newTestOrder(t, "123", testLevelPrice, 1)
	order2 := newTestOrder(t, "456", testLevelPrice, 1)

	_, err := lvl.PushOrder(order1)
	require.NoError(t, err)
	_, err = lvl.PushOrder(order2)
	require.NoError(t, err)

	got0, ok := lvl.At(0)
	require.True(t, ok)
	assert.True(t, order1.Equal(got0))

	got1, ok := lvl.At(1)
	require.True(t, ok)
	assert.True(t, order2.Equal(got1))
}

func TestPriceLevelPushOrder(t *testing.T) {
	lvl := NewPriceLevel(testLevelPrice, nil)

	order1 := newTestOrder(t, "123", testLevelPrice, 1)
	order2 := newTestOrder(t, "456", testLevelPrice+1, 1)

	idx, err := lvl.PushOrder(order1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, lvl.Count())
	assert.Equal(t, testLevelPrice, lvl.Price())

	_, err = lvl.PushOrder(order2)
	assert.ErrorIs(t, err, common.ErrPriceMismatch)

	_, err = lvl.PushOrder(order1)
	assert.ErrorIs(t, err, common.ErrDuplicateOrder)
}

func TestPriceLevelModifyOrder(t *testing.T) {
	lvl := NewPriceLevel(testLevelPrice, nil)

	order1 := newTestOrder(t, "123", testLevelPrice, 1)
	replacement, err := common.NewOrder(common.OrderInput{
		OrderID: "123", Symbol: "XBTUSD", Price: testLevelPrice, OrderQty: 5,
	})
	require.NoError(t, err)
	order3 := newTestOrder(t, "456", testLevelPrice, 1)

	// Empty level: no-op, no error.
	idx, err := lvl.ModifyOrder(order1)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	_, err = lvl.PushOrder(order1)
	require.NoError(t, err)

	idx, err = lvl.ModifyOrder(replacement)
	require.NoError(t, err)
	got, ok := lvl.At(idx)
	require.True(t, ok)
	assert.Equal(t, uint64(5), got.LeavesQty)

	_, err = lvl.ModifyOrder(order3)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPriceLevelRemoveOrder(t *testing.T) {
	lvl := NewPriceLevel(testLevelPrice, nil)

	order1 := newTestOrder(t, "123", testLevelPrice, 1)
	order2 := newTestOrder(t, "456", testLevelPrice, 1)

	_, err := lvl.RemoveOrder(order1)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = lvl.PushOrder(order1)
	require.NoError(t, err)

	_, err = lvl.RemoveOrder(order2)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = lvl.PushOrder(order2)
	require.NoError(t, err)

	removed, err := lvl.RemoveOrder(order1)
	require.NoError(t, err)
	assert.Equal(t, "123", removed.OrderID)

	head, ok := lvl.At(0)
	require.True(t, ok)
	assert.Equal(t, "456", head.OrderID)
}

func TestPriceLevelTradeVolume(t *testing.T) {
	mbl := NewMBL(common.Buy)
	lvl := NewPriceLevel(testLevelPrice, mbl)

	order1 := newTestOrder(t, "123", testLevelPrice, 1)
	order2 := newTestOrder(t, "456", testLevelPrice, 2)
	order3 := newTestOrder(t, "foo", testLevelPrice, 3)
	order4 := newTestOrder(t, "bar", testLevelPrice, 4)

	for _, o := range []common.Order{order1, order2, order3, order4} {
		_, err := lvl.PushOrder(o)
		require.NoError(t, err)
	}

	_, hasLevel := mbl.LevelAt(testLevelPrice)
	assert.True(t, hasLevel)

	remaining, reported := lvl.TradeVolume(3)
	assert.Equal(t, uint64(0), remaining)
	require.Len(t, reported, 2)
	assert.Equal(t, "123", reported[0].OrderID)
	assert.Equal(t, "456", reported[1].OrderID)
	assert.Equal(t, uint64(0), reported[1].LeavesQty)

	remaining, reported = lvl.TradeVolume(4)
	assert.Equal(t, uint64(0), remaining)
	require.Len(t, reported, 1)
	assert.Equal(t, "foo", reported[0].OrderID)

	head, ok := lvl.At(0)
	require.True(t, ok)
	assert.Equal(t, "bar", head.OrderID)
	assert.Equal(t, uint64(3), head.LeavesQty)

	remaining, reported = lvl.TradeVolume(5)
	assert.Equal(t, uint64(2), remaining)
	require.Len(t, reported, 1)
	assert.Equal(t, "bar", reported[0].OrderID)

	_, hasLevel = mbl.LevelAt(testLevelPrice)
	assert.False(t, hasLevel)
}

func TestPriceLevelUntetheredAdoptsPrice(t *testing.T) {
	mbl := NewMBL(common.Sell)
	lvl := NewPriceLevel(0, mbl)
	assert.Equal(t, 0.0, lvl.Price())

	order := newTestOrder(t, "1", testLevelPrice, -1)
	_, err := lvl.PushOrder(order)
	require.NoError(t, err)

	assert.Equal(t, testLevelPrice, lvl.Price())
	registered, ok := mbl.LevelAt(testLevelPrice)
	require.True(t, ok)
	assert.Same(t, lvl, registered)
}
