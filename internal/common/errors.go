// Package common holds the value types shared across the order book core:
// Order, Trade, the Side/OrderStatus/OrderType/TimeCondition enums, price
// normalization, and timestamp parsing.
package common

import "errors"

// Sentinel errors for the book core's error taxonomy. Callers compare
// against these with errors.Is; call sites wrap them with fmt.Errorf("%w: ...")
// for a human-readable message.
var (
	// ErrInvalidConfiguration signals a bad OrderBook construction argument,
	// e.g. a non-positive tick price.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidOrder signals a missing required field, zero quantity,
	// qty/side sign mismatch, or non-finite/negative price.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrPriceMismatch signals an order's price disagrees with the price
	// level it is being pushed onto.
	ErrPriceMismatch = errors.New("price mismatch")

	// ErrDuplicateOrder signals an orderID already resident on the book.
	ErrDuplicateOrder = errors.New("duplicate order")

	// ErrNotFound signals a cancel/amend referencing an unknown orderID,
	// including a cancel racing a fill that has already completed the order.
	ErrNotFound = errors.New("order not found")

	// ErrBookCrossedAtRest signals the invariant that the book must never be
	// crossed between operations was violated. This should never surface in
	// production; it is a bug if it does.
	ErrBookCrossedAtRest = errors.New("book crossed at rest")

	// ErrInvalidTimestamp signals a timestamp value that is neither an
	// epoch-millis integer, a float seconds value, nor an ISO-8601 string.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidEnum signals an enum value that is neither a known name
	// (case-insensitive) nor an integer. ParseSide also rejects integers
	// other than 1 and -1; ParseOrderStatus, ParseOrderType and
	// ParseTimeCondition accept any integer without checking it.
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrInsufficientLiquidity signals a FillOrKill order that cannot be
	// fully satisfied by resting contra liquidity; the book is left
	// untouched.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)
