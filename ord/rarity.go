package ord

// Rarity classifies a sat by its position relative to block, difficulty
// period, and halving era boundaries. Derived, never stored.
type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
	Legendary
	Mythic
)

func (r Rarity) String() string {
	switch r {
	case Common:
		return "common"
	case Uncommon:
		return "uncommon"
	case Rare:
		return "rare"
	case Epic:
		return "epic"
	case Legendary:
		return "legendary"
	case Mythic:
		return "mythic"
	}
	return "unknown"
}

// RarityOf classifies a sat given the first sat of its block's reward
// range and the block's height. Most specific tier wins.
func RarityOf(sat Sat, blockFirst Sat, height uint) Rarity {
	if sat == 0 {
		return Mythic
	}
	if sat != blockFirst {
		return Common
	}
	eraStart := IsEraStart(height)
	periodStart := IsPeriodStart(height)
	switch {
	case eraStart && periodStart:
		return Legendary
	case eraStart:
		return Epic
	case periodStart:
		return Rare
	default:
		return Uncommon
	}
}

// RarityOfSat classifies a sat from the emission schedule alone.
func RarityOfSat(sat Sat) Rarity {
	height, ok := HeightOf(sat)
	if !ok {
		return Common
	}
	return RarityOf(sat, FirstOrdinal(height), height)
}
