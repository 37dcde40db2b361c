package index

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ordbase/ordinal-indexer/ord"
	"github.com/ordbase/ordinal-indexer/ord/getter"
	"github.com/ordbase/ordinal-indexer/storage"
)

var (
	// ErrReorgDetected reports that a fetched block does not extend the
	// indexed tip. The caller runs Recovery and resumes.
	ErrReorgDetected = errors.New("chain reorganization detected")

	// ErrReorgTooDeep reports a reorganization past the retention depth.
	// Fatal: deeper rollbacks need operator intervention or a larger
	// retention depth.
	ErrReorgTooDeep = errors.New("reorganization deeper than the retention depth")
)

// Indexer advances the store block by block. Single writer: the
// commit/revert protocol assumes no interleaving, so all mutating calls
// hold the indexer lock. Readers query store snapshots and are never
// blocked.
type Indexer struct {
	store       *storage.Store
	startHeight uint

	sync.Mutex
}

func New(store *storage.Store, startHeight uint) *Indexer {
	return &Indexer{
		store:       store,
		startHeight: startHeight,
	}
}

func (idx *Indexer) Store() *storage.Store {
	return idx.store
}

// LatestHeight returns the indexed tip, or startHeight-1 semantics via
// ok=false when nothing is committed yet.
func (idx *Indexer) LatestHeight() (uint, bool, error) {
	return idx.store.Height()
}

// Update fetches, validates and commits blocks until latestHeight. It
// returns nil when the node has no further block yet. ErrReorgDetected
// means the node's chain diverged from the indexed tip; ErrMissingInput
// means the index is corrupt and must not advance.
func (idx *Indexer) Update(g getter.BlockGetter, latestHeight uint) error {
	idx.Lock()
	defer idx.Unlock()

	for {
		tip, exists, err := idx.store.Height()
		if err != nil {
			return err
		}
		next := idx.startHeight
		if exists {
			next = tip + 1
		}
		if next > latestHeight {
			return nil
		}

		block, err := g.GetBlock(next)
		if errors.Is(err, getter.ErrBlockNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if exists {
			tipHash, err := idx.store.BlockHash(tip)
			if err != nil {
				return err
			}
			if block.PrevHash != tipHash {
				return fmt.Errorf("%w: block %d has prev %s, indexed tip hash %s", ErrReorgDetected, next, block.PrevHash, tipHash)
			}
		}

		alloc, err := AllocateBlock(block, idx.store)
		if err != nil {
			return err
		}
		if len(alloc.Unclaimed) > 0 {
			log.Printf("Height %d left %d sat ranges unclaimed by the reward transaction", next, len(alloc.Unclaimed))
		}
		if err := idx.store.Commit(block.Height, block.Hash, block.PrevHash, alloc.Created, alloc.Spent); err != nil {
			return err
		}
	}
}

// CheckForReorg compares the recently committed block hashes against
// the node's view and returns the lowest disagreeing height.
func (idx *Indexer) CheckForReorg(g getter.BlockGetter) (uint, bool, error) {
	idx.Lock()
	defer idx.Unlock()

	tip, exists, err := idx.store.Height()
	if err != nil || !exists {
		return 0, false, err
	}
	from := idx.startHeight
	if tip >= ord.Confirmations && tip-ord.Confirmations+1 > from {
		from = tip - ord.Confirmations + 1
	}
	for h := from; h <= tip; h++ {
		local, err := idx.store.BlockHash(h)
		if err != nil {
			return 0, false, err
		}
		remote, err := g.GetBlockHash(h)
		if err != nil {
			return 0, false, err
		}
		if local != remote {
			return h, true, nil
		}
	}
	return 0, false, nil
}

// Recovery reverts tip blocks one at a time while the locally recorded
// hash disagrees with the node's, re-querying the node at every step
// since its own view may still be settling. At most the retention depth
// is rolled back; past that the condition is fatal.
func (idx *Indexer) Recovery(g getter.BlockGetter) error {
	idx.Lock()
	defer idx.Unlock()

	for depth := uint(0); depth <= ord.Confirmations; depth++ {
		tip, exists, err := idx.store.Height()
		if err != nil {
			return err
		}
		if !exists || tip < idx.startHeight {
			return nil
		}
		local, err := idx.store.BlockHash(tip)
		if err != nil {
			return err
		}
		remote, err := g.GetBlockHash(tip)
		if err != nil {
			return err
		}
		if local == remote {
			return nil
		}
		if depth == ord.Confirmations {
			break
		}
		log.Printf("Reverting height %d: indexed hash %s, node hash %s", tip, local, remote)
		if err := idx.store.Revert(tip); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: no agreement within %d blocks", ErrReorgTooDeep, ord.Confirmations)
}
