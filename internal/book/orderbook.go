package book

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"matchbook/internal/common"
)

// Fill is one execution produced by Place: a Trade plus the two order IDs
// it matched. Trades always print at the resting (maker) order's price,
// never the aggressor's limit price, so an aggressive order with price
// improvement passes the improvement to the resting side.
type Fill struct {
	Trade        common.Trade
	TakerOrderID string
	MakerOrderID string
}

// OrderBook is the matching engine for a single instrument: two MBLs (bid
// and ask) plus a flat OrderID index used to route Cancel/Amend without
// scanning both sides.
type OrderBook struct {
	symbol    string
	tickPrice float64
	maxDepth  int

	bids *MBL
	asks *MBL

	// orders indexes every resting order by OrderID. Entries here are kept
	// in lockstep with the copy held in the owning PriceLevel's FIFO slice:
	// whichever code path mutates LeavesQty on one must write the same
	// value into the other.
	orders map[string]*common.Order
}

// NewOrderBook creates an empty book for symbol. tickPrice must be
// positive; every incoming price is normalized to a multiple of it before
// matching. maxDepth is informational only — exposed via MaxDepth and
// carried for callers that want to cap how many levels they render, but
// the book itself never rejects an order for exceeding it.
func NewOrderBook(symbol string, tickPrice float64, maxDepth int) (*OrderBook, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", common.ErrInvalidConfiguration)
	}
	if tickPrice <= 0 {
		return nil, fmt.Errorf("%w: tick price %v must be positive", common.ErrInvalidConfiguration, tickPrice)
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: maxDepth %d must be non-negative", common.ErrInvalidConfiguration, maxDepth)
	}
	return &OrderBook{
		symbol:    symbol,
		tickPrice: tickPrice,
		maxDepth:  maxDepth,
		bids:      NewMBL(common.Buy),
		asks:      NewMBL(common.Sell),
		orders:    make(map[string]*common.Order),
	}, nil
}

// Symbol returns the instrument this book matches.
func (ob *OrderBook) Symbol() string { return ob.symbol }

// TickPrice returns the normalization tick.
func (ob *OrderBook) TickPrice() float64 { return ob.tickPrice }

// MaxDepth returns the informational depth cap.
func (ob *OrderBook) MaxDepth() int { return ob.maxDepth }

// BestBid returns the best resting buy price (0 if the bid side is empty).
func (ob *OrderBook) BestBid() float64 { return ob.bids.BestPrice() }

// BestAsk returns the best resting sell price (+Inf if the ask side is empty).
func (ob *OrderBook) BestAsk() float64 { return ob.asks.BestPrice() }

// Spread returns BestAsk - BestBid.
func (ob *OrderBook) Spread() float64 { return ob.asks.BestPrice() - ob.bids.BestPrice() }

// Depth returns the distinct price-level count on each side.
func (ob *OrderBook) Depth() (bidDepth, askDepth int) {
	return ob.bids.Depth(), ob.asks.Depth()
}

// Top returns up to n levels per side, best price first.
func (ob *OrderBook) Top(n int) (bids, asks []*PriceLevel) {
	return ob.bids.Top(n), ob.asks.Top(n)
}

// IsCrossed reports whether the best bid meets or exceeds the best ask —
// a state Place never leaves the book in, since it matches through any
// crossing liquidity before resting the remainder.
func (ob *OrderBook) IsCrossed() bool {
	if ob.bids.Depth() == 0 || ob.asks.Depth() == 0 {
		return false
	}
	return ob.bids.BestPrice() >= ob.asks.BestPrice()
}

// InGap reports whether price sits strictly inside the bid/ask spread:
// it would neither match the ask side nor be bettered by the bid side.
func (ob *OrderBook) InGap(price float64) bool {
	return price > ob.bids.BestPrice() && price < ob.asks.BestPrice()
}

// GetPriceDirection classifies which side of the book a hypothetical
// resting order at price would belong to: Buy if it would rest at or
// through the current best bid, Sell if at or through the current best
// ask. A price strictly inside the spread has no natural side and
// returns ErrPriceMismatch; callers should check InGap first.
func (ob *OrderBook) GetPriceDirection(price float64) (common.Side, error) {
	switch {
	case price <= ob.bids.BestPrice():
		return common.Buy, nil
	case price >= ob.asks.BestPrice():
		return common.Sell, nil
	default:
		return 0, fmt.Errorf("%w: price %v sits inside the bid/ask gap", common.ErrPriceMismatch, price)
	}
}

// OverlapLevels returns the contra-side levels that a hypothetical order
// resting at price on side would cross, best price first. An empty result
// means the order would rest without trading.
func (ob *OrderBook) OverlapLevels(side common.Side, price float64) []*PriceLevel {
	contra := ob.contraSide(side)
	all := contra.Top(contra.Depth())
	out := make([]*PriceLevel, 0, len(all))
	for _, lvl := range all {
		if !crosses(side, price, lvl.Price()) {
			break
		}
		out = append(out, lvl)
	}
	return out
}

// Order looks up a resting order by ID.
func (ob *OrderBook) Order(orderID string) (common.Order, bool) {
	o, ok := ob.orders[orderID]
	if !ok {
		return common.Order{}, false
	}
	return *o, true
}

// Level looks up the resting level at price on side.
func (ob *OrderBook) Level(side common.Side, price float64) (*PriceLevel, bool) {
	return ob.sideMBL(side).LevelAt(price)
}

// Place submits a new order to the book, matching it against resting
// contra-side liquidity before (depending on TimeInForce and OrdType)
// resting the remainder. It returns the order's final state and every
// Fill produced, best (most price-improved) match first.
func (ob *OrderBook) Place(incoming common.Order) (common.Order, []Fill, error) {
	normalized, err := common.NormalizePrice(incoming.Price, ob.tickPrice)
	if err != nil {
		return common.Order{}, nil, err
	}
	incoming.Price = normalized

	if _, exists := ob.orders[incoming.OrderID]; exists {
		return common.Order{}, nil, fmt.Errorf("%w: order %s already on book", common.ErrDuplicateOrder, incoming.OrderID)
	}

	contra := ob.contraSide(incoming.Side)
	marketOrder := incoming.OrdType == common.Market

	if incoming.TimeInForce == common.FillOrKill {
		if ob.availableLiquidity(contra, incoming.Side, incoming.Price, marketOrder) < incoming.LeavesQty {
			incoming.OrdStatus, _ = incoming.OrdStatus.Migrate(common.Canceled)
			return incoming, nil, fmt.Errorf("%w: order %s", common.ErrInsufficientLiquidity, incoming.OrderID)
		}
	}

	fills := ob.match(&incoming, contra, marketOrder)

	switch {
	case incoming.LeavesQty == 0:
		incoming.OrdStatus, _ = incoming.OrdStatus.Migrate(common.Filled)
	case len(fills) > 0:
		incoming.OrdStatus, _ = incoming.OrdStatus.Migrate(common.PartiallyFilled)
		if marketOrder || incoming.TimeInForce == common.ImmediateOrCancel || incoming.TimeInForce == common.FillOrKill {
			incoming.OrdStatus, _ = incoming.OrdStatus.Migrate(common.PartiallyFilledCanceled)
		} else {
			ob.rest(incoming)
		}
	default:
		if marketOrder || incoming.TimeInForce == common.ImmediateOrCancel || incoming.TimeInForce == common.FillOrKill {
			incoming.OrdStatus, _ = incoming.OrdStatus.Migrate(common.Canceled)
		} else {
			ob.rest(incoming)
		}
	}

	log.Debug().
		Str("orderID", incoming.OrderID).
		Str("symbol", ob.symbol).
		Int("fills", len(fills)).
		Str("status", incoming.OrdStatus.String()).
		Msg("book: place settled")

	return incoming, fills, nil
}

// match drives the MBL's own TradeVolume primitive over a single volume
// — whichever is smaller of what incoming still wants and the total
// crossing liquidity resting on contra — and turns what it consumed into
// Fills. TradeVolume does the level-by-level cascading on its own;
// match's job is pricing each maker execution at the maker's own resting
// price and keeping the OrderBook's flat order index in step with what
// TradeVolume just mutated inside the PriceLevels.
//
// TradeVolume's consumed slice only reports fully-drained makers, so the
// trailing partially-filled maker (if incoming's demand didn't land on an
// exact order boundary) is picked up separately off contra's new best
// level afterward.
func (ob *OrderBook) match(incoming *common.Order, contra *MBL, marketOrder bool) []Fill {
	available := ob.availableLiquidity(contra, incoming.Side, incoming.Price, marketOrder)
	if available == 0 {
		return nil
	}

	volume := incoming.LeavesQty
	if available < volume {
		volume = available
	}
	if volume == 0 {
		return nil
	}

	_, consumed := contra.TradeVolume(volume)

	fills := make([]Fill, 0, len(consumed)+1)
	var spent uint64
	for _, maker := range consumed {
		prior := ob.orders[maker.OrderID]
		matchQty := prior.LeavesQty
		spent += matchQty
		fills = append(fills, ob.recordFill(incoming, maker, matchQty))
		delete(ob.orders, maker.OrderID)
	}

	if spent < volume {
		if lvl, ok := contra.BestLevel(); ok {
			if head, ok := lvl.Head(); ok {
				prior := ob.orders[head.OrderID]
				matchQty := prior.LeavesQty - head.LeavesQty
				spent += matchQty
				fills = append(fills, ob.recordFill(incoming, head, matchQty))

				updated := head
				updated.OrdStatus, _ = updated.OrdStatus.Migrate(common.PartiallyFilled)
				lvl.orders[0].OrdStatus = updated.OrdStatus
				ob.orders[head.OrderID] = &updated
			}
		}
	}

	incoming.LeavesQty -= volume
	incoming.CumQty += volume

	return fills
}

// recordFill builds the Fill for one maker execution, pricing the trade
// at the maker's own resting price rather than incoming's limit, so any
// price improvement flows to the side that was already in the book.
func (ob *OrderBook) recordFill(incoming *common.Order, maker common.Order, matchQty uint64) Fill {
	trade, err := common.NewTrade(common.TradeInput{
		Timestamp:  incoming.TransactTime,
		Symbol:     ob.symbol,
		Side:       incoming.Side,
		Size:       matchQty,
		Price:      maker.Price,
		TrdMatchID: uuid.NewString(),
	})
	if err != nil {
		// TransactTime was already validated by NewOrder; unreachable.
		trade = common.Trade{Symbol: ob.symbol, Side: incoming.Side, Size: matchQty, Price: maker.Price}
	}
	return Fill{Trade: trade, TakerOrderID: incoming.OrderID, MakerOrderID: maker.OrderID}
}

func (ob *OrderBook) rest(o common.Order) {
	stored := o
	ob.sideMBL(stored.Side).AddOrder(stored)
	ob.orders[stored.OrderID] = &stored
}

// availableLiquidity sums the resting size across every contra level that
// would cross against side/price (or, for a market order, every level
// regardless of price). Used to pre-check FillOrKill orders before
// touching the book.
func (ob *OrderBook) availableLiquidity(contra *MBL, side common.Side, price float64, marketOrder bool) uint64 {
	var total uint64
	for _, lvl := range contra.Top(contra.Depth()) {
		if !marketOrder && !crosses(side, price, lvl.Price()) {
			break
		}
		total += lvl.Size()
	}
	return total
}

// Cancel removes a resting order from the book entirely.
func (ob *OrderBook) Cancel(orderID string) (common.Order, error) {
	o, ok := ob.orders[orderID]
	if !ok {
		return common.Order{}, fmt.Errorf("%w: order %s", common.ErrNotFound, orderID)
	}

	removed, err := ob.sideMBL(o.Side).RemoveOrder(*o)
	if err != nil {
		return common.Order{}, err
	}
	delete(ob.orders, orderID)

	target := common.Canceled
	if removed.OrdStatus == common.PartiallyFilled {
		target = common.PartiallyFilledCanceled
	}
	removed.OrdStatus, _ = removed.OrdStatus.Migrate(target)
	return removed, nil
}

// Amend changes a resting order's price and/or remaining quantity. A
// size-down at an unchanged price is applied in place, preserving the
// order's queue position. Anything else (a price change, or a size
// increase) loses time priority: the existing order is canceled and a new
// one reusing its OrderID is placed at the back of its new queue,
// potentially matching immediately.
func (ob *OrderBook) Amend(orderID string, newPrice float64, newLeavesQty uint64) (common.Order, []Fill, error) {
	existing, ok := ob.orders[orderID]
	if !ok {
		return common.Order{}, nil, fmt.Errorf("%w: order %s", common.ErrNotFound, orderID)
	}

	normalizedPrice, err := common.NormalizePrice(newPrice, ob.tickPrice)
	if err != nil {
		return common.Order{}, nil, err
	}

	if normalizedPrice == existing.Price && newLeavesQty <= existing.LeavesQty {
		updated := *existing
		updated.LeavesQty = newLeavesQty
		updated.CumQty = updated.OrderQty - newLeavesQty
		if _, err := ob.sideMBL(existing.Side).ModifyOrder(updated); err != nil {
			return common.Order{}, nil, err
		}
		ob.orders[orderID] = &updated
		return updated, nil, nil
	}

	side := existing.Side
	clOrdID := existing.ClOrdID
	ordType := existing.OrdType
	tif := existing.TimeInForce

	if _, err := ob.Cancel(orderID); err != nil {
		return common.Order{}, nil, err
	}

	signedQty := int64(newLeavesQty)
	if side == common.Sell {
		signedQty = -signedQty
	}

	replacement, err := common.NewOrder(common.OrderInput{
		OrderID:     orderID,
		ClOrdID:     clOrdID,
		Symbol:      ob.symbol,
		Side:        side,
		Price:       normalizedPrice,
		OrderQty:    signedQty,
		OrdType:     ordType,
		TimeInForce: tif,
	})
	if err != nil {
		return common.Order{}, nil, err
	}

	return ob.Place(replacement)
}

func (ob *OrderBook) sideMBL(side common.Side) *MBL {
	if side == common.Buy {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) contraSide(side common.Side) *MBL {
	if side == common.Buy {
		return ob.asks
	}
	return ob.bids
}

// crosses reports whether an order on side at price would trade against a
// resting level at contraPrice.
func crosses(side common.Side, price, contraPrice float64) bool {
	switch side {
	case common.Buy:
		return price >= contraPrice
	case common.Sell:
		return price <= contraPrice
	default:
		return false
	}
}

func (ob *OrderBook) String() string {
	return fmt.Sprintf(
		"OrderBook{symbol=%s bid=%g ask=%g depth=(%d,%d)}",
		ob.symbol, ob.BestBid(), ob.BestAsk(), ob.bids.Depth(), ob.asks.Depth(),
	)
}
