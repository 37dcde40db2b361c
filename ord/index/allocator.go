package index

import (
	"errors"
	"fmt"

	"github.com/ordbase/ordinal-indexer/ord"
)

var (
	// ErrMissingInput reports a transaction spending an output the index
	// has never seen. Every spent output must have been created by an
	// earlier committed block or by an earlier transaction in the same
	// block, so this is an invariant violation and indexing must halt.
	ErrMissingInput = errors.New("missing input output")

	// ErrIllegalCoinbase reports a non-first transaction with no inputs.
	ErrIllegalCoinbase = errors.New("only the first transaction may mint the reward")

	// ErrValueOverflow reports a transaction whose outputs exceed its
	// inputs. The upstream node would never accept such a block.
	ErrValueOverflow = errors.New("transaction outputs exceed inputs")
)

// RangeReader is the read surface the allocator needs from the store.
type RangeReader interface {
	GetOutput(op ord.OutPoint) ([]ord.SatRange, bool, error)
}

// BlockAllocation is the full effect of one block on the index: the
// range lists of every output the block creates, the outputs it
// consumes, and any reward sats left unclaimed by the coinbase.
type BlockAllocation struct {
	Created   []ord.OutputRanges
	Spent     []ord.OutPoint
	Unclaimed []ord.SatRange
}

// AllocateBlock computes how sat ranges flow from the block's consumed
// outputs (and the freshly minted reward range) into the outputs it
// creates. Transactions are applied in block order against a working
// view layered over the store, so a transaction may spend an output
// created earlier in the same block. The result is committed atomically
// by the caller.
func AllocateBlock(block *ord.Block, view RangeReader) (*BlockAllocation, error) {
	reward := ord.RewardRange(block.Height)

	work := newWorkingView(view)
	var feePool []ord.SatRange

	var coinbase *ord.Transaction
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if tx.IsCoinbase() {
			if i != 0 {
				return nil, fmt.Errorf("%w: tx %s at height %d", ErrIllegalCoinbase, tx.TxID, block.Height)
			}
			coinbase = tx
			continue
		}

		// Concatenate the consumed range lists in input order.
		var input []ord.SatRange
		for _, in := range tx.Inputs {
			ranges, err := work.take(in.Previous)
			if err != nil {
				return nil, fmt.Errorf("%w: %s spent by %s at height %d", err, in.Previous.Encode(), tx.TxID, block.Height)
			}
			input = append(input, ranges...)
		}

		assigned, leftover, err := partition(input, outputValues(tx))
		if err != nil {
			return nil, fmt.Errorf("%w: tx %s at height %d", err, tx.TxID, block.Height)
		}
		for i, ranges := range assigned {
			work.create(ord.OutPoint{TxID: tx.TxID, Offset: uint32(i)}, ranges)
		}
		feePool = append(feePool, leftover...)
	}

	alloc := BlockAllocation{}

	if coinbase != nil && len(coinbase.Outputs) > 0 {
		input := append([]ord.SatRange{reward}, feePool...)
		assigned, leftover, err := partition(input, outputValues(coinbase))
		if err != nil {
			return nil, fmt.Errorf("%w: coinbase at height %d", err, block.Height)
		}
		for i, ranges := range assigned {
			work.create(ord.OutPoint{TxID: coinbase.TxID, Offset: uint32(i)}, ranges)
		}
		alloc.Unclaimed = leftover
	} else {
		// No reward claimed. The minted sats and the fees exist and keep
		// their rarity, but no output holds them.
		alloc.Unclaimed = append([]ord.SatRange{reward}, feePool...)
	}

	alloc.Created, alloc.Spent = work.result()
	return &alloc, nil
}

func outputValues(tx *ord.Transaction) []uint64 {
	values := make([]uint64, len(tx.Outputs))
	for i, out := range tx.Outputs {
		values[i] = out.Value
	}
	return values
}

// partition hands out exactly values[i] consecutive sats to output i
// from the front of the input sequence, splitting a range when a
// boundary falls inside it. Whatever remains is the caller's fee
// contribution.
func partition(input []ord.SatRange, values []uint64) ([][]ord.SatRange, []ord.SatRange, error) {
	assigned := make([][]ord.SatRange, len(values))
	pos := 0
	for i, value := range values {
		ranges := []ord.SatRange{}
		for value > 0 {
			if pos >= len(input) {
				return nil, nil, ErrValueOverflow
			}
			r := input[pos]
			if r.Size() == 0 {
				pos++
				continue
			}
			if r.Size() <= value {
				ranges = append(ranges, r)
				value -= r.Size()
				pos++
			} else {
				split := ord.SatRange{Start: r.Start, End: r.Start + ord.Sat(value)}
				ranges = append(ranges, split)
				input[pos].Start = split.End
				value = 0
			}
		}
		assigned[i] = ranges
	}
	var leftover []ord.SatRange
	for ; pos < len(input); pos++ {
		if input[pos].Size() > 0 {
			leftover = append(leftover, input[pos])
		}
	}
	return assigned, leftover, nil
}

// workingView layers the block's own effects over the committed store
// so later transactions can spend outputs created earlier in the block.
type workingView struct {
	store   RangeReader
	created map[ord.OutPoint][]ord.SatRange
	order   []ord.OutPoint
	spent   []ord.OutPoint
}

func newWorkingView(store RangeReader) *workingView {
	return &workingView{
		store:   store,
		created: make(map[ord.OutPoint][]ord.SatRange),
	}
}

func (w *workingView) create(op ord.OutPoint, ranges []ord.SatRange) {
	w.created[op] = ranges
	w.order = append(w.order, op)
}

// take consumes an output: from the block's own creations if present,
// otherwise from the committed store.
func (w *workingView) take(op ord.OutPoint) ([]ord.SatRange, error) {
	if ranges, found := w.created[op]; found {
		delete(w.created, op)
		return ranges, nil
	}
	ranges, found, err := w.store.GetOutput(op)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrMissingInput
	}
	w.spent = append(w.spent, op)
	return ranges, nil
}

// result returns the block's net effect: outputs created and still
// unspent at block end, and committed outputs the block consumed. An
// output created and spent within the block cancels out.
func (w *workingView) result() ([]ord.OutputRanges, []ord.OutPoint) {
	created := make([]ord.OutputRanges, 0, len(w.created))
	for _, op := range w.order {
		if ranges, found := w.created[op]; found {
			created = append(created, ord.OutputRanges{OutPoint: op, Ranges: ranges})
		}
	}
	return created, w.spent
}
