// Command bench runs the PriceLevel throughput benchmark: push, cancel,
// and trade rates at one busy price point.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matchbook/internal/bench"
)

func main() {
	iterations := flag.Int("iterations", bench.DefaultIterations, "benchmark rounds to run")
	orderCount := flag.Int("orders", bench.DefaultOrderCount, "orders pushed per round")
	orderPrice := flag.Float64("price", bench.DefaultOrderPrice, "price of the level under test")
	cancelFraction := flag.Float64("cancel-fraction", bench.DefaultCancelFraction, "share of orders canceled rather than traded")
	verbose := flag.Bool("verbose", false, "emit debug-level logs during the run")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Int("iterations", *iterations).
		Int("orders", *orderCount).
		Float64("price", *orderPrice).
		Float64("cancelFraction", *cancelFraction).
		Msg("bench: starting run")

	result, err := bench.Run(bench.Config{
		Iterations:     *iterations,
		OrderCount:     *orderCount,
		OrderPrice:     *orderPrice,
		CancelFraction: *cancelFraction,
	})
	if err != nil {
		log.Error().Err(err).Msg("bench: run failed")
		os.Exit(1)
	}

	fmt.Printf("order  rate metrics: %s\n", result.Order)
	fmt.Printf("cancel rate metrics: %s\n", result.Cancel)
	fmt.Printf("trade  rate metrics: %s\n", result.Trade)
}
