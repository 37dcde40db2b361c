package ord

// One coin in the smallest currency unit.
const Coin uint64 = 100_000_000

// The block subsidy halves every SubsidyHalvingInterval blocks.
const SubsidyHalvingInterval uint = 210_000

// The difficulty retargets every DifficultyAdjustmentInterval blocks.
const DifficultyAdjustmentInterval uint = 2016

// The subsidy of the genesis era.
const InitialSubsidy uint64 = 50 * Coin

// SupplyLimit is the total number of sats that will ever exist.
const SupplyLimit uint64 = 2_099_999_997_690_000

// The number of confirmations to be considered immutable and can't be re-organized.
// Commit undo records are retained for this many blocks.
const Confirmations uint = 6
