package common

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// NormalizePrice snaps a raw price to the nearest multiple of tick using
// decimal arithmetic (never raw float64) so price equality stays hashable:
// 15.486 with tick 0.01 must come out exactly 15.49, not 15.490000000000001.
//
// Ties on exact halves use banker's rounding (round-half-to-even), matching
// the reference implementation's use of Python's round().
func NormalizePrice(price, tick float64) (float64, error) {
	if tick <= 0 || math.IsNaN(tick) || math.IsInf(tick, 0) {
		return 0, fmt.Errorf("%w: tick price %v must be finite and positive", ErrInvalidConfiguration, tick)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price %v must be finite", ErrInvalidOrder, price)
	}

	decPrice := decimal.NewFromFloat(price)
	decTick := decimal.NewFromFloat(tick)

	quotient := decPrice.DivRound(decTick, 16)
	ticks := bankersRound(quotient)

	normalized := ticks.Mul(decTick)

	out, _ := normalized.Float64()
	return out, nil
}

// bankersRound rounds a decimal to the nearest integer, breaking exact
// ties toward the even neighbor (round-half-to-even).
func bankersRound(d decimal.Decimal) decimal.Decimal {
	floor := d.Floor()
	remainder := d.Sub(floor)

	half := decimal.NewFromFloat(0.5)
	one := decimal.NewFromInt(1)
	two := decimal.NewFromInt(2)

	switch remainder.Cmp(half) {
	case -1:
		return floor
	case 1:
		return floor.Add(one)
	default:
		if floor.Mod(two).IsZero() {
			return floor
		}
		return floor.Add(one)
	}
}
