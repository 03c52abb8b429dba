package domain

// Tier is the loyalty level shown next to a member. It is derived from
// points on every read and never stored.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// tierFloors lists each tier's inclusive lower bound, ascending.
var tierFloors = [...]struct {
	tier  Tier
	floor int
}{
	{TierBronze, 0},
	{TierSilver, 500},
	{TierGold, 1500},
	{TierPlatinum, 3000},
}

// TierForPoints returns the highest tier whose floor points reaches.
// Negative totals are treated as zero.
func TierForPoints(points int) Tier {
	tier := TierBronze
	for _, f := range tierFloors {
		if points >= f.floor {
			tier = f.tier
		}
	}
	return tier
}

// NextTier returns the tier above t, false when t is the top tier.
func NextTier(t Tier) (Tier, bool) {
	for i, f := range tierFloors {
		if f.tier == t && i+1 < len(tierFloors) {
			return tierFloors[i+1].tier, true
		}
	}
	return "", false
}

// PointsToNextTier returns how many points are missing to reach the next
// tier, 0 at the top tier.
func PointsToNextTier(points int) int {
	points = max(points, 0)
	for _, f := range tierFloors {
		if points < f.floor {
			return f.floor - points
		}
	}
	return 0
}

// Floor returns the inclusive lower bound of t.
func (t Tier) Floor() int {
	for _, f := range tierFloors {
		if f.tier == t {
			return f.floor
		}
	}
	return 0
}
