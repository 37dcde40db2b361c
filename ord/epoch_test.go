package ord

import "testing"

func TestSubsidy(t *testing.T) {
	if got := Subsidy(0); got != 50*Coin {
		t.Fatalf("genesis subsidy: %d", got)
	}
	if got := Subsidy(SubsidyHalvingInterval - 1); got != 50*Coin {
		t.Fatalf("last block of era 0: %d", got)
	}
	if got := Subsidy(SubsidyHalvingInterval); got != 25*Coin {
		t.Fatalf("first block of era 1: %d", got)
	}
	if got := Subsidy(33 * SubsidyHalvingInterval); got != 0 {
		t.Fatalf("subsidy should be exhausted after 33 eras: %d", got)
	}
}

func TestFirstOrdinal(t *testing.T) {
	if got := FirstOrdinal(0); got != 0 {
		t.Fatalf("FirstOrdinal(0) = %d", got)
	}
	if got := FirstOrdinal(1); got != Sat(50*Coin) {
		t.Fatalf("FirstOrdinal(1) = %d", got)
	}
	eraOneStart := Sat(uint64(SubsidyHalvingInterval) * 50 * Coin)
	if got := FirstOrdinal(SubsidyHalvingInterval); got != eraOneStart {
		t.Fatalf("FirstOrdinal at era 1 = %d, want %d", got, eraOneStart)
	}
}

func TestRewardRangeGapFree(t *testing.T) {
	// Every block's reward range ends where the next one starts.
	heights := []uint{0, 1, 2, SubsidyHalvingInterval - 1, SubsidyHalvingInterval, SubsidyHalvingInterval + 1, 10 * SubsidyHalvingInterval}
	for _, h := range heights {
		r := RewardRange(h)
		if r.Start != FirstOrdinal(h) || r.End != FirstOrdinal(h+1) {
			t.Fatalf("reward range at %d is not gap-free: [%d,%d)", h, r.Start, r.End)
		}
		if r.Size() != Subsidy(h) {
			t.Fatalf("reward range size at %d is %d, want %d", h, r.Size(), Subsidy(h))
		}
	}
}

func TestHeightOfInvertsFirstOrdinal(t *testing.T) {
	heights := []uint{0, 1, 100, SubsidyHalvingInterval - 1, SubsidyHalvingInterval, 3 * SubsidyHalvingInterval, 6 * SubsidyHalvingInterval}
	for _, h := range heights {
		first := FirstOrdinal(h)
		got, ok := HeightOf(first)
		if !ok || got != h {
			t.Fatalf("HeightOf(FirstOrdinal(%d)) = %d, %v", h, got, ok)
		}
		if Subsidy(h) > 1 {
			got, ok = HeightOf(first + 1)
			if !ok || got != h {
				t.Fatalf("HeightOf(%d) = %d, %v, want %d", first+1, got, ok, h)
			}
		}
	}
	if _, ok := HeightOf(Sat(SupplyLimit)); ok {
		t.Fatal("sat beyond the supply limit should not have a height")
	}
}
