// Package rewards implements the fee and reward-split arithmetic for funded
// poll pools. All amounts are integers in the smallest token unit; division
// truncates and no floating point is used anywhere in this package.
package rewards

import (
	"errors"
	"math/bits"
)

// BpsDenominator is the basis-point scale: 10000 bps == 100%.
const BpsDenominator = 10000

var (
	// ErrFeeRate indicates a fee rate outside [0, 10000).
	ErrFeeRate = errors.New("fee rate must be in [0, 10000) basis points")
	// ErrAmountRange indicates an amount too large to represent in the
	// smallest token unit without overflow.
	ErrAmountRange = errors.New("amount out of range")
)

// Breakdown is the result of a fee computation: gross deposited, platform fee
// taken, and net pool available for rewards. Gross == Fee + Net always holds.
type Breakdown struct {
	Gross uint64
	Fee   uint64
	Net   uint64
}

// FromGross computes the fee and net pool for a gross deposit.
// The fee floors, so the platform never over-collects:
//
//	fee = floor(gross * feeBps / 10000)
func FromGross(gross, feeBps uint64) (Breakdown, error) {
	if feeBps >= BpsDenominator {
		return Breakdown{}, ErrFeeRate
	}
	hi, lo := bits.Mul64(gross, feeBps)
	// quotient < gross, so it always fits in 64 bits
	fee, _ := bits.Div64(hi, lo, BpsDenominator)
	return Breakdown{Gross: gross, Fee: fee, Net: gross - fee}, nil
}

// FromNet computes the gross deposit required to fund a desired net pool.
// The gross ceils, so the net payout is never short-funded by rounding:
//
//	gross = ceil(net * 10000 / (10000 - feeBps))
//
// FromNet and FromGross are not exact inverses under integer rounding; the
// round trip net -> gross -> net' guarantees net' >= net.
func FromNet(net, feeBps uint64) (Breakdown, error) {
	if feeBps >= BpsDenominator {
		return Breakdown{}, ErrFeeRate
	}
	denom := uint64(BpsDenominator - feeBps)
	hi, lo := bits.Mul64(net, BpsDenominator)
	if hi >= denom {
		return Breakdown{}, ErrAmountRange
	}
	gross, rem := bits.Div64(hi, lo, denom)
	if rem > 0 {
		gross++
	}
	return Breakdown{Gross: gross, Fee: gross - net, Net: net}, nil
}

// EqualSplit returns the per-participant reward for an equally split net pool.
// Division truncates; the remainder stays in the pool. A pool with zero
// participants pays zero rather than dividing by zero.
func EqualSplit(net, participants uint64) uint64 {
	if participants == 0 {
		return 0
	}
	return net / participants
}

// FixedFundingNet returns the net pool required to pay fixedAmount to each of
// targetParticipants. Computed once at creation time; it is not recomputed if
// fewer participants show up.
func FixedFundingNet(fixedAmount, targetParticipants uint64) (uint64, error) {
	hi, lo := bits.Mul64(fixedAmount, targetParticipants)
	if hi > 0 {
		return 0, ErrAmountRange
	}
	return lo, nil
}

// FixedFundingGross returns the gross deposit required to pay fixedAmount to
// each of targetParticipants after the platform fee, using the ceiling
// direction so payouts are never short.
func FixedFundingGross(fixedAmount, targetParticipants, feeBps uint64) (Breakdown, error) {
	net, err := FixedFundingNet(fixedAmount, targetParticipants)
	if err != nil {
		return Breakdown{}, err
	}
	return FromNet(net, feeBps)
}
