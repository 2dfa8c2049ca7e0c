package level

// Level is the XP-derived cosmetic rank shown next to a member's name.
type Level string

const (
	Bronze   Level = "bronze"
	Silver   Level = "silver"
	Gold     Level = "gold"
	Platinum Level = "platinum"
	Diamond  Level = "diamond"
)

// XP thresholds for each band. A member sits in the band whose lower
// bound they have reached.
const (
	SilverThreshold   = 500
	GoldThreshold     = 1500
	PlatinumThreshold = 3500
	DiamondThreshold  = 7500
)

// FromXP maps an experience total to its level band.
func FromXP(xp int) Level {
	switch {
	case xp >= DiamondThreshold:
		return Diamond
	case xp >= PlatinumThreshold:
		return Platinum
	case xp >= GoldThreshold:
		return Gold
	case xp >= SilverThreshold:
		return Silver
	default:
		return Bronze
	}
}

// Progress returns how far through the current band xp sits, as a
// percentage. Diamond has no upper bound, so it saturates at 100.
func Progress(xp int) float64 {
	switch {
	case xp >= DiamondThreshold:
		return 100
	case xp >= PlatinumThreshold:
		return float64(xp-PlatinumThreshold) / float64(DiamondThreshold-PlatinumThreshold) * 100
	case xp >= GoldThreshold:
		return float64(xp-GoldThreshold) / float64(PlatinumThreshold-GoldThreshold) * 100
	case xp >= SilverThreshold:
		return float64(xp-SilverThreshold) / float64(GoldThreshold-SilverThreshold) * 100
	default:
		return float64(xp) / float64(SilverThreshold) * 100
	}
}

// ToNext returns the XP still needed to reach the next band, or 0 at Diamond.
func ToNext(xp int) int {
	switch {
	case xp >= DiamondThreshold:
		return 0
	case xp >= PlatinumThreshold:
		return DiamondThreshold - xp
	case xp >= GoldThreshold:
		return PlatinumThreshold - xp
	case xp >= SilverThreshold:
		return GoldThreshold - xp
	default:
		return SilverThreshold - xp
	}
}
