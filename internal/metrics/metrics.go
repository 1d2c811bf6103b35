// Package metrics exposes prometheus instrumentation for the ledger core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchasesTotal counts recorded purchases by promoter presence.
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "purchases_total",
		Help:      "Purchases recorded and split.",
	}, []string{"has_promoter"})

	// PayoutsTotal counts payout attempts by outcome.
	PayoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "payouts_total",
		Help:      "Payout attempts by outcome (settled, no_pending, rail_failed, error).",
	}, []string{"outcome"})

	// SettledCents counts cents moved from pending to total earnings.
	SettledCents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "settled_cents_total",
		Help:      "Cents settled from pending to total earnings.",
	})

	// PoolDistributionsTotal counts pool distribution runs by outcome.
	PoolDistributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "pool_distributions_total",
		Help:      "Pool distribution runs by outcome (distributed, carried, empty, error).",
	}, []string{"outcome"})

	// PoolCarriedCents counts cents carried forward between pool periods.
	PoolCarriedCents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "pool_carried_cents_total",
		Help:      "Cents carried forward to the next pool period.",
	})
)
