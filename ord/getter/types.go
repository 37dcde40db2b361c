package getter

import (
	"errors"

	"github.com/ordbase/ordinal-indexer/ord"
)

// ErrBlockNotFound means the node has no block at the requested height
// yet. Not an error condition: the synchronizer stays idle and retries.
var ErrBlockNotFound = errors.New("block not available yet")

// BlockGetter is the upstream chain node interface. The node's reported
// chain is authoritative; a hash mismatch is always a reorg signal,
// never second-guessed.
type BlockGetter interface {
	GetLatestBlockHeight() (uint, error)
	GetBlockHash(blockHeight uint) (string, error)
	GetBlock(blockHeight uint) (*ord.Block, error)
}
