// Package calculator holds the pure money math: revenue splits and pool
// distribution. Nothing in here touches storage or has side effects.
package calculator

import (
	"errors"
	"fmt"
)

// ErrInvalidAmount is returned when a non-positive amount is presented.
var ErrInvalidAmount = errors.New("amount must be positive")

// bpsDenominator is the basis-point scale: 10000 bps == 100%.
const bpsDenominator = 10000

// SplitConfig is a named, versioned rule dividing a transaction across the
// four parties. Shares are basis points and must sum to exactly 10000.
//
// The platform share is the remainder absorber: promoter, pool and venue are
// rounded to the nearest cent and the platform takes whatever is left, so
// the four shares always sum exactly to the amount.
type SplitConfig struct {
	Version     int
	PromoterBps int64
	PoolBps     int64
	VenueBps    int64
	PlatformBps int64
}

// Current split rules, version 1.
//
// With a promoter the take is 10/30/30/30. Without one, the promoter's 10%
// is reallocated 5%/5% to venue and platform, giving 0/30/35/35.
var (
	splitWithPromoter = SplitConfig{
		Version:     1,
		PromoterBps: 1000,
		PoolBps:     3000,
		VenueBps:    3000,
		PlatformBps: 3000,
	}
	splitNoPromoter = SplitConfig{
		Version:     1,
		PromoterBps: 0,
		PoolBps:     3000,
		VenueBps:    3500,
		PlatformBps: 3500,
	}
)

// ConfigFor returns the current split configuration for a purchase with or
// without a promoter.
func ConfigFor(hasPromoter bool) SplitConfig {
	if hasPromoter {
		return splitWithPromoter
	}
	return splitNoPromoter
}

// Validate checks that the shares cover exactly 100% and none is negative.
func (c SplitConfig) Validate() error {
	if c.PromoterBps < 0 || c.PoolBps < 0 || c.VenueBps < 0 || c.PlatformBps < 0 {
		return fmt.Errorf("split config v%d has a negative share", c.Version)
	}
	if sum := c.PromoterBps + c.PoolBps + c.VenueBps + c.PlatformBps; sum != bpsDenominator {
		return fmt.Errorf("split config v%d shares sum to %d bps, want %d", c.Version, sum, bpsDenominator)
	}
	return nil
}

// Split is the allocation of one transaction amount, in cents.
type Split struct {
	Promoter int64
	Pool     int64
	Venue    int64
	Platform int64
}

// Total returns the sum of the four shares.
func (s Split) Total() int64 {
	return s.Promoter + s.Pool + s.Venue + s.Platform
}

// Compute divides amount (cents) according to the config.
//
// Promoter, pool and venue shares are rounded to the nearest cent; the
// platform share is amount minus the other three, absorbing the rounding
// remainder so no cent is created or lost.
func Compute(amount int64, hasPromoter bool) (Split, error) {
	return ComputeWithConfig(amount, ConfigFor(hasPromoter))
}

// ComputeWithConfig splits amount using an explicit configuration, for
// replaying historical purchases against the rule in effect at the time.
func ComputeWithConfig(amount int64, cfg SplitConfig) (Split, error) {
	if amount <= 0 {
		return Split{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if err := cfg.Validate(); err != nil {
		return Split{}, err
	}

	split := Split{
		Promoter: roundBps(amount, cfg.PromoterBps),
		Pool:     roundBps(amount, cfg.PoolBps),
		Venue:    roundBps(amount, cfg.VenueBps),
	}
	split.Platform = amount - split.Promoter - split.Pool - split.Venue
	if split.Platform < 0 {
		// Only reachable with a degenerate config (platform share near
		// zero on a tiny amount); refuse rather than go negative.
		return Split{}, fmt.Errorf("split of %d leaves negative platform share %d", amount, split.Platform)
	}
	return split, nil
}

// roundBps returns amount * bps / 10000, rounded to the nearest cent
// (half away from zero; amounts here are always positive).
func roundBps(amount, bps int64) int64 {
	return (amount*bps + bpsDenominator/2) / bpsDenominator
}
