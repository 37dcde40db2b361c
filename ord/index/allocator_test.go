package index

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ordbase/ordinal-indexer/ord"
)

// mapView is a RangeReader over a plain map.
type mapView map[ord.OutPoint][]ord.SatRange

func (m mapView) GetOutput(op ord.OutPoint) ([]ord.SatRange, bool, error) {
	ranges, found := m[op]
	return ranges, found, nil
}

func testTxID(n int) ord.TXID {
	return ord.TXID(fmt.Sprintf("%064x", n))
}

func testOutPoint(n int, offset uint32) ord.OutPoint {
	return ord.OutPoint{TxID: testTxID(n), Offset: offset}
}

func TestPartitionSplitsAtBoundary(t *testing.T) {
	// One input holding [0,5) and [10,13), two outputs of value 3 and 5.
	input := []ord.SatRange{{Start: 0, End: 5}, {Start: 10, End: 13}}
	assigned, leftover, err := partition(input, []uint64{3, 5})
	assert.Nil(t, err)
	assert.Equal(t, []ord.SatRange{{Start: 0, End: 3}}, assigned[0])
	assert.Equal(t, []ord.SatRange{{Start: 3, End: 5}, {Start: 10, End: 13}}, assigned[1])
	assert.Empty(t, leftover)
}

func TestPartitionLeftoverBecomesFee(t *testing.T) {
	input := []ord.SatRange{{Start: 0, End: 10}}
	assigned, leftover, err := partition(input, []uint64{4})
	assert.Nil(t, err)
	assert.Equal(t, []ord.SatRange{{Start: 0, End: 4}}, assigned[0])
	assert.Equal(t, []ord.SatRange{{Start: 4, End: 10}}, leftover)
}

func TestPartitionRewardWithFees(t *testing.T) {
	// Reward range of 50 sats plus fee ranges of 2, 1 and 5 sats,
	// partitioned over coinbase outputs of value 40 and 18: output 0
	// takes the first 40 reward sats, output 1 the remaining 10 reward
	// sats followed by all 8 fee sats in collection order.
	const r = 1000
	input := []ord.SatRange{
		{Start: r, End: r + 50},
		{Start: 100, End: 102},
		{Start: 205, End: 206},
		{Start: 900, End: 905},
	}
	assigned, leftover, err := partition(input, []uint64{40, 18})
	assert.Nil(t, err)
	assert.Equal(t, []ord.SatRange{{Start: r, End: r + 40}}, assigned[0])
	assert.Equal(t, []ord.SatRange{
		{Start: r + 40, End: r + 50},
		{Start: 100, End: 102},
		{Start: 205, End: 206},
		{Start: 900, End: 905},
	}, assigned[1])
	assert.Empty(t, leftover)
}

func TestPartitionInsufficientInput(t *testing.T) {
	input := []ord.SatRange{{Start: 0, End: 5}}
	_, _, err := partition(input, []uint64{6})
	assert.True(t, errors.Is(err, ErrValueOverflow))
}

func TestAllocateBlockRewardAndFees(t *testing.T) {
	// One funded output of 10 sats feeds a transaction paying 7, the
	// 3 sat fee flows into the coinbase together with the subsidy.
	height := uint(123)
	reward := ord.RewardRange(height)
	funded := testOutPoint(1, 0)
	view := mapView{funded: {{Start: 40, End: 50}}}

	block := &ord.Block{
		Height: height,
		Hash:   "h123",
		Transactions: []ord.Transaction{
			{
				TxID:    testTxID(9),
				Outputs: []ord.TxOut{{Value: ord.Subsidy(height) + 3}},
			},
			{
				TxID:    testTxID(2),
				Inputs:  []ord.TxIn{{Previous: funded}},
				Outputs: []ord.TxOut{{Value: 7}},
			},
		},
	}

	alloc, err := AllocateBlock(block, view)
	assert.Nil(t, err)
	assert.Equal(t, []ord.OutPoint{funded}, alloc.Spent)
	assert.Empty(t, alloc.Unclaimed)

	created := make(map[ord.OutPoint][]ord.SatRange)
	for _, a := range alloc.Created {
		created[a.OutPoint] = a.Ranges
	}
	assert.Equal(t, []ord.SatRange{{Start: 40, End: 47}}, created[testOutPoint(2, 0)])
	assert.Equal(t, []ord.SatRange{reward, {Start: 47, End: 50}}, created[testOutPoint(9, 0)])
}

func TestAllocateBlockUnclaimedReward(t *testing.T) {
	// A coinbase with no outputs drops the reward range: the sats exist
	// and keep their rarity, but no output holds them.
	height := uint(7)
	block := &ord.Block{
		Height: height,
		Hash:   "h7",
		Transactions: []ord.Transaction{
			{TxID: testTxID(1)},
		},
	}
	alloc, err := AllocateBlock(block, mapView{})
	assert.Nil(t, err)
	assert.Empty(t, alloc.Created)
	assert.Equal(t, []ord.SatRange{ord.RewardRange(height)}, alloc.Unclaimed)
}

func TestAllocateBlockMissingInput(t *testing.T) {
	block := &ord.Block{
		Height: 5,
		Transactions: []ord.Transaction{
			{TxID: testTxID(1), Outputs: []ord.TxOut{{Value: ord.Subsidy(5)}}},
			{
				TxID:    testTxID(2),
				Inputs:  []ord.TxIn{{Previous: testOutPoint(99, 0)}},
				Outputs: []ord.TxOut{{Value: 1}},
			},
		},
	}
	_, err := AllocateBlock(block, mapView{})
	assert.True(t, errors.Is(err, ErrMissingInput))
}

func TestAllocateBlockRejectsSecondCoinbase(t *testing.T) {
	block := &ord.Block{
		Height: 5,
		Transactions: []ord.Transaction{
			{TxID: testTxID(1), Outputs: []ord.TxOut{{Value: ord.Subsidy(5)}}},
			{TxID: testTxID(2), Outputs: []ord.TxOut{{Value: 1}}},
		},
	}
	_, err := AllocateBlock(block, mapView{})
	assert.True(t, errors.Is(err, ErrIllegalCoinbase))
}

func TestAllocateBlockIntraBlockSpend(t *testing.T) {
	// tx3 spends tx2's output within the same block; the intermediate
	// output must not appear as created or spent.
	funded := testOutPoint(1, 0)
	view := mapView{funded: {{Start: 0, End: 8}}}

	block := &ord.Block{
		Height: 50,
		Transactions: []ord.Transaction{
			{TxID: testTxID(9), Outputs: []ord.TxOut{{Value: ord.Subsidy(50)}}},
			{
				TxID:    testTxID(2),
				Inputs:  []ord.TxIn{{Previous: funded}},
				Outputs: []ord.TxOut{{Value: 8}},
			},
			{
				TxID:    testTxID(3),
				Inputs:  []ord.TxIn{{Previous: testOutPoint(2, 0)}},
				Outputs: []ord.TxOut{{Value: 8}},
			},
		},
	}

	alloc, err := AllocateBlock(block, view)
	assert.Nil(t, err)
	assert.Equal(t, []ord.OutPoint{funded}, alloc.Spent)

	created := make(map[ord.OutPoint][]ord.SatRange)
	for _, a := range alloc.Created {
		created[a.OutPoint] = a.Ranges
	}
	assert.NotContains(t, created, testOutPoint(2, 0))
	assert.Equal(t, []ord.SatRange{{Start: 0, End: 8}}, created[testOutPoint(3, 0)])
}

func TestAllocateBlockZeroValueOutput(t *testing.T) {
	funded := testOutPoint(1, 0)
	view := mapView{funded: {{Start: 0, End: 4}}}

	block := &ord.Block{
		Height: 50,
		Transactions: []ord.Transaction{
			{TxID: testTxID(9), Outputs: []ord.TxOut{{Value: ord.Subsidy(50)}}},
			{
				TxID:    testTxID(2),
				Inputs:  []ord.TxIn{{Previous: funded}},
				Outputs: []ord.TxOut{{Value: 0}, {Value: 4}},
			},
		},
	}

	alloc, err := AllocateBlock(block, view)
	assert.Nil(t, err)

	created := make(map[ord.OutPoint][]ord.SatRange)
	for _, a := range alloc.Created {
		created[a.OutPoint] = a.Ranges
	}
	assert.Contains(t, created, testOutPoint(2, 0))
	assert.Empty(t, created[testOutPoint(2, 0)])
	assert.Equal(t, []ord.SatRange{{Start: 0, End: 4}}, created[testOutPoint(2, 1)])

	// Sum of range lengths equals the output value for every output.
	for _, a := range alloc.Created {
		var total uint64
		for _, r := range a.Ranges {
			total += r.Size()
		}
		if a.OutPoint == testOutPoint(9, 0) {
			assert.Equal(t, ord.Subsidy(50), total)
		}
	}
}
