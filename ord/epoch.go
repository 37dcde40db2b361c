package ord

// Subsidy returns the block reward at the given height in sats.
func Subsidy(height uint) uint64 {
	era := height / SubsidyHalvingInterval
	if era >= 64 {
		return 0
	}
	return InitialSubsidy >> era
}

// FirstOrdinal returns the first sat minted at the given height. Minting
// is gap-free, so this is the sum of all subsidies of earlier blocks.
func FirstOrdinal(height uint) Sat {
	var sat uint64
	subsidy := InitialSubsidy
	h := height
	for h >= SubsidyHalvingInterval {
		sat += uint64(SubsidyHalvingInterval) * subsidy
		subsidy >>= 1
		h -= SubsidyHalvingInterval
	}
	sat += uint64(h) * subsidy
	return Sat(sat)
}

// RewardRange returns the sats minted at the given height. The range is
// deterministic from the emission schedule alone.
func RewardRange(height uint) SatRange {
	first := FirstOrdinal(height)
	return SatRange{
		Start: first,
		End:   first + Sat(Subsidy(height)),
	}
}

// HeightOf returns the height of the block that minted the sat, and
// whether the sat will ever be minted at all.
func HeightOf(sat Sat) (uint, bool) {
	if uint64(sat) >= SupplyLimit {
		return 0, false
	}
	remaining := uint64(sat)
	subsidy := InitialSubsidy
	var height uint
	for subsidy > 0 {
		eraSupply := uint64(SubsidyHalvingInterval) * subsidy
		if remaining < eraSupply {
			return height + uint(remaining/subsidy), true
		}
		remaining -= eraSupply
		subsidy >>= 1
		height += SubsidyHalvingInterval
	}
	return 0, false
}

func IsEraStart(height uint) bool {
	return height%SubsidyHalvingInterval == 0
}

func IsPeriodStart(height uint) bool {
	return height%DifficultyAdjustmentInterval == 0
}
