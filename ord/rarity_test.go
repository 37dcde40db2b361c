package ord

import "testing"

func TestRarityPrecedence(t *testing.T) {
	// Sat 0 is mythic even though height 0 starts an era and a period.
	if got := RarityOf(0, 0, 0); got != Mythic {
		t.Fatalf("sat 0: %v", got)
	}

	// The first sat of an era-start block is epic, not uncommon.
	h := SubsidyHalvingInterval
	first := FirstOrdinal(h)
	if got := RarityOf(first, first, h); got != Epic {
		t.Fatalf("era start: %v", got)
	}

	// 210000 is not a multiple of 2016; the first aligned height is
	// 1260000, which begins era 6 and a difficulty period at once.
	h = 6 * SubsidyHalvingInterval
	if !IsEraStart(h) || !IsPeriodStart(h) {
		t.Fatalf("height %d should start an era and a period", h)
	}
	first = FirstOrdinal(h)
	if got := RarityOf(first, first, h); got != Legendary {
		t.Fatalf("era+period start: %v", got)
	}

	// A plain period start is rare.
	h = DifficultyAdjustmentInterval
	first = FirstOrdinal(h)
	if got := RarityOf(first, first, h); got != Rare {
		t.Fatalf("period start: %v", got)
	}

	// Any other block first sat is uncommon.
	first = FirstOrdinal(123)
	if got := RarityOf(first, first, 123); got != Uncommon {
		t.Fatalf("block first sat: %v", got)
	}

	// Everything else is common.
	if got := RarityOf(first+1, first, 123); got != Common {
		t.Fatalf("mid-block sat: %v", got)
	}
}

func TestRarityOfSat(t *testing.T) {
	if got := RarityOfSat(0); got != Mythic {
		t.Fatalf("sat 0: %v", got)
	}
	if got := RarityOfSat(FirstOrdinal(SubsidyHalvingInterval)); got != Epic {
		t.Fatalf("era start sat: %v", got)
	}
	if got := RarityOfSat(FirstOrdinal(5) + 17); got != Common {
		t.Fatalf("mid-block sat: %v", got)
	}
}

func TestRarityString(t *testing.T) {
	for r, want := range map[Rarity]string{
		Common:    "common",
		Uncommon:  "uncommon",
		Rare:      "rare",
		Epic:      "epic",
		Legendary: "legendary",
		Mythic:    "mythic",
	} {
		if r.String() != want {
			t.Fatalf("%d: %s", r, r.String())
		}
	}
}
