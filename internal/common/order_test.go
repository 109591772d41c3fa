package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderDerivesSideFromQtySign(t *testing.T) {
	o, err := NewOrder(OrderInput{OrderID: "1", OrderQty: -5, Price: 10})
	require.NoError(t, err)
	assert.Equal(t, Sell, o.Side)
	assert.Equal(t, uint64(5), o.OrderQty)
	assert.Equal(t, uint64(5), o.LeavesQty)
	assert.Equal(t, uint64(0), o.CumQty)
	assert.Equal(t, Limit, o.OrdType)
	assert.Equal(t, GoodTillCancel, o.TimeInForce)
}

func TestNewOrderRejectsSideQtyMismatch(t *testing.T) {
	_, err := NewOrder(OrderInput{OrderID: "1", Side: Buy, OrderQty: -5, Price: 10})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestNewOrderRequiresID(t *testing.T) {
	_, err := NewOrder(OrderInput{OrderQty: 1})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestNewOrderRejectsZeroQty(t *testing.T) {
	_, err := NewOrder(OrderInput{OrderID: "1", OrderQty: 0})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestNewOrderRejectsNegativePrice(t *testing.T) {
	_, err := NewOrder(OrderInput{OrderID: "1", OrderQty: 1, Price: -1})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestNewOrderPartialLeavesQty(t *testing.T) {
	leaves := uint64(3)
	o, err := NewOrder(OrderInput{OrderID: "1", OrderQty: 10, LeavesQty: &leaves, Price: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), o.OrderQty)
	assert.Equal(t, uint64(3), o.LeavesQty)
	assert.Equal(t, uint64(7), o.CumQty)
}

func TestOrderEqualAndHash(t *testing.T) {
	a, err := NewOrder(OrderInput{OrderID: "1", OrderQty: 1, Timestamp: int64(1000)})
	require.NoError(t, err)
	b, err := NewOrder(OrderInput{OrderID: "1", OrderQty: 1, Timestamp: int64(1000)})
	require.NoError(t, err)
	c, err := NewOrder(OrderInput{OrderID: "1", OrderQty: 1, Timestamp: int64(2000)})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.Hash(), c.Hash(), "hash is defined on OrderID alone")
}

func TestOrderIsTerminal(t *testing.T) {
	o, err := NewOrder(OrderInput{OrderID: "1", OrderQty: 1, OrdStatus: Filled})
	require.NoError(t, err)
	assert.True(t, o.IsTerminal())
}
