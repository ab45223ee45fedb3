package rating

// Tier is a named rank bracket derived purely from the current rating value.
type Tier string

// The 18 tiers, best first.
const (
	TierChallenger  Tier = "Challenger"
	TierGrandMaster Tier = "GrandMaster"
	TierMaster      Tier = "Master"
	TierDiamondI    Tier = "Diamond I"
	TierDiamondII   Tier = "Diamond II"
	TierDiamondIII  Tier = "Diamond III"
	TierPlatinumI   Tier = "Platinum I"
	TierPlatinumII  Tier = "Platinum II"
	TierPlatinumIII Tier = "Platinum III"
	TierGoldI       Tier = "Gold I"
	TierGoldII      Tier = "Gold II"
	TierGoldIII     Tier = "Gold III"
	TierSilverI     Tier = "Silver I"
	TierSilverII    Tier = "Silver II"
	TierSilverIII   Tier = "Silver III"
	TierBronzeI     Tier = "Bronze I"
	TierBronzeII    Tier = "Bronze II"
	TierBronzeIII   Tier = "Bronze III"
)

type tierThreshold struct {
	min  int
	tier Tier
}

// Descending threshold table. Bronze through Platinum step 100 points per
// band; Diamond widens to 150 and the apex tiers use fixed cutoffs.
var tierTable = []tierThreshold{
	{2900, TierChallenger},
	{2800, TierGrandMaster},
	{2650, TierMaster},
	{2500, TierDiamondI},
	{2350, TierDiamondII},
	{2200, TierDiamondIII},
	{2100, TierPlatinumI},
	{2000, TierPlatinumII},
	{1900, TierPlatinumIII},
	{1800, TierGoldI},
	{1700, TierGoldII},
	{1600, TierGoldIII},
	{1500, TierSilverI},
	{1400, TierSilverII},
	{1300, TierSilverIII},
	{1200, TierBronzeI},
	{1100, TierBronzeII},
}

// TierFor classifies a rating value into its tier.
func TierFor(value int) Tier {
	for _, t := range tierTable {
		if value >= t.min {
			return t.tier
		}
	}
	return TierBronzeIII
}

// tierOrder maps each tier to its position, best first, for comparisons.
var tierOrder = func() map[Tier]int {
	order := make(map[Tier]int, len(tierTable)+1)
	for i, t := range tierTable {
		order[t.tier] = i
	}
	order[TierBronzeIII] = len(tierTable)
	return order
}()

// Better reports whether a outranks b.
func Better(a, b Tier) bool {
	return tierOrder[a] < tierOrder[b]
}
