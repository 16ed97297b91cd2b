package distributor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	claimsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "merkle_distributor_claims_total",
			Help: "Total number of successful claims",
		},
	)

	claimFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merkle_distributor_claim_failures_total",
			Help: "Total number of rejected claim attempts",
		},
		[]string{"reason"},
	)

	tokensClaimedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "merkle_distributor_tokens_claimed_total",
			Help: "Total token amount paid out through claims",
		},
	)

	delegationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "merkle_distributor_delegations_total",
			Help: "Total number of delegations bundled with claims",
		},
	)

	sweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "merkle_distributor_sweeps_total",
			Help: "Total number of successful sweeps",
		},
	)
)

// Failure reason labels for claimFailuresTotal
const (
	reasonInvalidProof        = "invalid_proof"
	reasonAlreadyClaimed      = "already_claimed"
	reasonDistributionEnded   = "distribution_ended"
	reasonInsufficientBalance = "insufficient_pool_balance"
	reasonUnknownIndex        = "unknown_index"
	reasonDelegationRejected  = "delegation_rejected"
	reasonTransferFailed      = "transfer_failed"
)
