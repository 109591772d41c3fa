// Package bench measures raw PriceLevel throughput: how fast one price
// level can absorb pushes, random-order cancels, and partial/full trades
// at the volumes a single busy price point sees in production.
package bench

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

// Defaults mirror the reference benchmark: one price level, 10,000 orders
// sized 1..N, 100 iterations, an 80/20 cancel/trade split after shuffling.
const (
	DefaultIterations     = 100
	DefaultOrderCount     = 10000
	DefaultOrderPrice     = 100.0
	DefaultCancelFraction = 0.8
)

// Config parameterizes Run. Zero values fall back to the package defaults.
type Config struct {
	Iterations     int
	OrderCount     int
	OrderPrice     float64
	CancelFraction float64
	Rand           *rand.Rand
}

func (c Config) withDefaults() Config {
	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	if c.OrderCount <= 0 {
		c.OrderCount = DefaultOrderCount
	}
	if c.OrderPrice <= 0 {
		c.OrderPrice = DefaultOrderPrice
	}
	if c.CancelFraction <= 0 || c.CancelFraction >= 1 {
		c.CancelFraction = DefaultCancelFraction
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// RateMetrics summarizes one operation's throughput across every
// iteration of a Run: ops/sec max, min, mean, and population standard
// deviation (both absolute and as a percentage of the mean).
type RateMetrics struct {
	Max       float64
	Min       float64
	Mean      float64
	StdDev    float64
	StdDevPct float64
}

func (r RateMetrics) String() string {
	return fmt.Sprintf("Max[%.2f], Min[%.2f], Avg[%.2f], Std[%.2f@%.2f %%]",
		r.Max, r.Min, r.Mean, r.StdDev, r.StdDevPct)
}

// Result holds the aggregated rate metrics for each of the three phases.
type Result struct {
	Order  RateMetrics
	Cancel RateMetrics
	Trade  RateMetrics
}

// Run executes cfg.Iterations rounds of the three-phase workload against
// a fresh PriceLevel each round: push OrderCount orders at OrderPrice
// (quantities 1..OrderCount), shuffle their IDs, cancel a CancelFraction
// share of them by ID, then trade_volume the remainder one order-sized
// clip at a time. It returns the aggregated ops/sec metrics per phase.
func Run(cfg Config) (Result, error) {
	cfg = cfg.withDefaults()

	orderRates := make([]float64, 0, cfg.Iterations)
	cancelRates := make([]float64, 0, cfg.Iterations)
	tradeRates := make([]float64, 0, cfg.Iterations)

	for round := 0; round < cfg.Iterations; round++ {
		lvl := book.NewPriceLevel(cfg.OrderPrice, nil)

		// Each order gets a server-generated UUID for its OrderID, the same
		// way a live book would stamp an order with no caller-supplied ID;
		// qty is tracked alongside it since the trade phase needs the
		// original size, not the ID, to drive TradeVolume.
		orders := make([]struct {
			id  string
			qty int
		}, cfg.OrderCount)
		for i := range orders {
			orders[i].id = uuid.NewString()
			orders[i].qty = i + 1
		}

		orderStart := time.Now()
		for _, entry := range orders {
			o, err := common.NewOrder(common.OrderInput{
				OrderID:  entry.id,
				Symbol:   "BENCH",
				Side:     common.Buy,
				Price:    cfg.OrderPrice,
				OrderQty: int64(entry.qty),
			})
			if err != nil {
				return Result{}, fmt.Errorf("bench: building order %d: %w", entry.qty, err)
			}
			if _, err := lvl.PushOrder(o); err != nil {
				return Result{}, fmt.Errorf("bench: pushing order %d: %w", entry.qty, err)
			}
		}
		orderSpan := time.Since(orderStart).Seconds()
		orderRates = append(orderRates, rate(cfg.OrderCount, orderSpan))

		cfg.Rand.Shuffle(len(orders), func(i, j int) { orders[i], orders[j] = orders[j], orders[i] })

		split := int(float64(cfg.OrderCount) * cfg.CancelFraction)
		cancelOrders, tradeOrders := orders[:split], orders[split:]

		cancelStart := time.Now()
		for _, entry := range cancelOrders {
			if _, err := lvl.RemoveOrderByID(entry.id); err != nil {
				return Result{}, fmt.Errorf("bench: canceling order %s: %w", entry.id, err)
			}
		}
		cancelSpan := time.Since(cancelStart).Seconds()
		cancelRates = append(cancelRates, rate(len(cancelOrders), cancelSpan))

		tradeCount := 0
		tradeStart := time.Now()
		for _, entry := range tradeOrders {
			_, reported := lvl.TradeVolume(uint64(entry.qty))
			tradeCount += len(reported)
		}
		tradeSpan := time.Since(tradeStart).Seconds()
		tradeRates = append(tradeRates, rate(tradeCount, tradeSpan))
	}

	orderMetrics, err := aggregate(orderRates)
	if err != nil {
		return Result{}, err
	}
	cancelMetrics, err := aggregate(cancelRates)
	if err != nil {
		return Result{}, err
	}
	tradeMetrics, err := aggregate(tradeRates)
	if err != nil {
		return Result{}, err
	}

	return Result{Order: orderMetrics, Cancel: cancelMetrics, Trade: tradeMetrics}, nil
}

func rate(ops int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(ops) / seconds
}

func aggregate(rates []float64) (RateMetrics, error) {
	data := stats.LoadRawData(rates)

	max, err := stats.Max(data)
	if err != nil {
		return RateMetrics{}, fmt.Errorf("bench: aggregating max: %w", err)
	}
	min, err := stats.Min(data)
	if err != nil {
		return RateMetrics{}, fmt.Errorf("bench: aggregating min: %w", err)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return RateMetrics{}, fmt.Errorf("bench: aggregating mean: %w", err)
	}
	stddev, err := stats.StandardDeviation(data)
	if err != nil {
		return RateMetrics{}, fmt.Errorf("bench: aggregating stddev: %w", err)
	}

	var pct float64
	if mean != 0 {
		pct = stddev / mean * 100
	}

	return RateMetrics{Max: max, Min: min, Mean: mean, StdDev: stddev, StdDevPct: pct}, nil
}
