package common

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"
)

// Order is a resting or aggressing limit/market order. Two orders compare
// equal iff their OrderID and Timestamp match (Equal); OrderID alone is
// hashed (Hash) so it can key a set independent of timestamp jitter.
type Order struct {
	OrderID      string
	ClOrdID      string
	Symbol       string
	Side         Side
	Price        float64
	OrderQty     uint64
	LeavesQty    uint64
	CumQty       uint64
	OrdStatus    OrderStatus
	OrdType      OrderType
	TimeInForce  TimeCondition
	Timestamp    time.Time
	TransactTime time.Time
}

// OrderInput is the constructor payload for NewOrder. OrderQty is signed:
// when Side is left zero, OrderQty's sign determines the side and its
// magnitude becomes the order's quantity. When both are supplied they must
// agree, or construction fails with ErrInvalidOrder.
type OrderInput struct {
	OrderID      string
	ClOrdID      string
	Symbol       string
	Side         Side
	Price        float64
	OrderQty     int64
	LeavesQty    *uint64
	OrdStatus    OrderStatus
	OrdType      OrderType
	TimeInForce  TimeCondition
	Timestamp    any
	TransactTime any
}

// NewOrder validates an OrderInput and constructs an Order. Required:
// OrderID. OrderQty must be non-zero; Price must be non-negative and
// finite.
func NewOrder(in OrderInput) (Order, error) {
	if in.OrderID == "" {
		return Order{}, fmt.Errorf("%w: orderID is required", ErrInvalidOrder)
	}
	if in.OrderQty == 0 {
		return Order{}, fmt.Errorf("%w: orderQty must be non-zero", ErrInvalidOrder)
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return Order{}, fmt.Errorf("%w: price[%v] must be non-negative and finite", ErrInvalidOrder, in.Price)
	}

	derivedSide := Buy
	if in.OrderQty < 0 {
		derivedSide = Sell
	}

	side := in.Side
	switch side {
	case 0:
		side = derivedSide
	case Buy, Sell:
		if side != derivedSide {
			return Order{}, fmt.Errorf(
				"%w: orderQty[%d] mismatches side[%s]", ErrInvalidOrder, in.OrderQty, side)
		}
	default:
		return Order{}, fmt.Errorf("%w: side %v", ErrInvalidEnum, side)
	}

	qty := uint64(absInt64(in.OrderQty))

	leavesQty := qty
	if in.LeavesQty != nil {
		leavesQty = *in.LeavesQty
	}

	ordType := in.OrdType
	if ordType == 0 {
		ordType = Limit
	}
	tif := in.TimeInForce
	if tif == 0 {
		tif = GoodTillCancel
	}

	ts := time.Now().UTC()
	if in.Timestamp != nil {
		parsed, err := ParseTimestamp(in.Timestamp)
		if err != nil {
			return Order{}, err
		}
		ts = parsed
	}

	tt := ts
	if in.TransactTime != nil {
		parsed, err := ParseTimestamp(in.TransactTime)
		if err != nil {
			return Order{}, err
		}
		tt = parsed
	}

	return Order{
		OrderID:      in.OrderID,
		ClOrdID:      in.ClOrdID,
		Symbol:       in.Symbol,
		Side:         side,
		Price:        in.Price,
		OrderQty:     qty,
		LeavesQty:    leavesQty,
		CumQty:       qty - leavesQty,
		OrdStatus:    in.OrdStatus,
		OrdType:      ordType,
		TimeInForce:  tif,
		Timestamp:    ts,
		TransactTime: tt,
	}, nil
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Equal reports whether two orders share both OrderID and Timestamp.
func (o Order) Equal(other Order) bool {
	return o.OrderID == other.OrderID && o.Timestamp.Equal(other.Timestamp)
}

// Hash is defined on OrderID alone.
func (o Order) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(o.OrderID))
	return h.Sum64()
}

// IsTerminal reports whether the order's status has no legal outbound
// transitions (Canceled, PartiallyFilledCanceled, Filled, Rejected).
func (o Order) IsTerminal() bool {
	return o.OrdStatus.IsTerminal()
}

func (o Order) String() string {
	return fmt.Sprintf(
		"Order{id=%s symbol=%s side=%s price=%g qty=%d leaves=%d cum=%d status=%s type=%s tif=%s}",
		o.OrderID, o.Symbol, o.Side, o.Price, o.OrderQty, o.LeavesQty, o.CumQty,
		o.OrdStatus, o.OrdType, o.TimeInForce,
	)
}
