// AngelaMos | 2026
// tier.go

package core

import (
	"time"
)

const (
	TierFree  = "free"
	TierBasic = "basic"
	TierPro   = "pro"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// TierRank orders listings in the feed. Unknown tiers rank as free.
func TierRank(tier string) int {
	switch tier {
	case TierPro:
		return 2
	case TierBasic:
		return 1
	default:
		return 0
	}
}

func IsPaidTier(tier string) bool {
	return tier == TierBasic || tier == TierPro
}

func ValidTier(tier string) bool {
	return tier == TierFree || IsPaidTier(tier)
}

// EffectiveTier downgrades a paid tier whose subscription has lapsed. A
// paid tier without an expiry is an open-ended grant.
func EffectiveTier(tier string, expiresAt *time.Time, now time.Time) string {
	if !IsPaidTier(tier) {
		return TierFree
	}
	if expiresAt != nil && !now.Before(*expiresAt) {
		return TierFree
	}
	return tier
}
