// Package eligibility enforces the tiered daily voting-rights budget with
// streak continuity. The budget check runs before any ledger write, so a vote
// attempt that would exceed its daily limit never spends a transaction.
package eligibility

import "sort"

// Tier is a bracket of combined liquid+staked balance controlling the daily
// vote allowance.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// TierConfig maps a minimum combined balance to a daily vote allowance.
type TierConfig struct {
	Tier       Tier
	MinBalance uint64
	DailyVotes int
}

// DefaultTiers are the platform's standard brackets, ascending by threshold.
// Balances are in the smallest token unit.
var DefaultTiers = []TierConfig{
	{Tier: TierBronze, MinBalance: 0, DailyVotes: 3},
	{Tier: TierSilver, MinBalance: 1_000_000, DailyVotes: 10},
	{Tier: TierGold, MinBalance: 10_000_000, DailyVotes: 25},
	{Tier: TierPlatinum, MinBalance: 100_000_000, DailyVotes: 100},
}

// TierFor returns the highest tier whose threshold the combined balance
// meets. tiers must be non-empty; out-of-order input is tolerated.
func TierFor(tiers []TierConfig, combined uint64) TierConfig {
	sorted := make([]TierConfig, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinBalance < sorted[j].MinBalance })

	out := sorted[0]
	for _, tc := range sorted {
		if combined >= tc.MinBalance {
			out = tc
		}
	}
	return out
}
