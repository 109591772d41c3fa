package common

import (
	"fmt"
	"time"
)

// Trade records one execution between an aggressor and a resting order.
// Two trades compare equal iff TrdMatchID and Side match.
type Trade struct {
	Timestamp     time.Time
	Symbol        string
	Side          Side // aggressor side
	Size          uint64
	Price         float64
	TickDirection Side
	TrdMatchID    string
}

// TradeInput is the constructor payload for NewTrade. Required: Symbol.
// Timestamp defaults to now if omitted.
type TradeInput struct {
	Timestamp     any
	Symbol        string
	Side          Side
	Size          uint64
	Price         float64
	TickDirection Side
	TrdMatchID    string
}

// NewTrade validates a TradeInput and constructs a Trade.
func NewTrade(in TradeInput) (Trade, error) {
	if in.Symbol == "" {
		return Trade{}, fmt.Errorf("%w: symbol is required", ErrInvalidOrder)
	}

	ts := time.Now().UTC()
	if in.Timestamp != nil {
		parsed, err := ParseTimestamp(in.Timestamp)
		if err != nil {
			return Trade{}, err
		}
		ts = parsed
	}

	return Trade{
		Timestamp:     ts,
		Symbol:        in.Symbol,
		Side:          in.Side,
		Size:          in.Size,
		Price:         in.Price,
		TickDirection: in.TickDirection,
		TrdMatchID:    in.TrdMatchID,
	}, nil
}

// Equal reports whether two trades share both TrdMatchID and Side.
func (t Trade) Equal(other Trade) bool {
	return t.TrdMatchID == other.TrdMatchID && t.Side == other.Side
}

// HomeNotional is the traded size expressed in the quote currency (price *
// size), the derived notional carried alongside the raw fill fields.
func (t Trade) HomeNotional() float64 {
	return t.Price * float64(t.Size)
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{match=%s symbol=%s side=%s size=%d price=%g ts=%s}",
		t.TrdMatchID, t.Symbol, t.Side, t.Size, t.Price, t.Timestamp.Format(time.RFC3339Nano),
	)
}
