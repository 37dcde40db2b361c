package getter

import (
	"github.com/ordbase/ordinal-indexer/ord"
)

// BlockGetterTest serves blocks from memory. Tests mutate Blocks and
// Hashes directly to simulate chain growth and reorganizations.
type BlockGetterTest struct {
	LatestBlockHeight uint
	Blocks            map[uint]*ord.Block
	Hashes            map[uint]string
}

func NewBlockGetterTest() *BlockGetterTest {
	return &BlockGetterTest{
		Blocks: make(map[uint]*ord.Block),
		Hashes: make(map[uint]string),
	}
}

func (g *BlockGetterTest) GetLatestBlockHeight() (uint, error) {
	return g.LatestBlockHeight, nil
}

func (g *BlockGetterTest) GetBlockHash(blockHeight uint) (string, error) {
	if hash, found := g.Hashes[blockHeight]; found {
		return hash, nil
	}
	return "", nil
}

func (g *BlockGetterTest) GetBlock(blockHeight uint) (*ord.Block, error) {
	if block, found := g.Blocks[blockHeight]; found {
		return block, nil
	}
	return nil, ErrBlockNotFound
}

// AddBlock appends the block as the new tip.
func (g *BlockGetterTest) AddBlock(block *ord.Block) {
	g.Blocks[block.Height] = block
	g.Hashes[block.Height] = block.Hash
	if block.Height > g.LatestBlockHeight {
		g.LatestBlockHeight = block.Height
	}
}

// ReplaceFrom replaces the chain from the given height with the new
// blocks, discarding everything above them.
func (g *BlockGetterTest) ReplaceFrom(height uint, blocks ...*ord.Block) {
	for h := height; h <= g.LatestBlockHeight; h++ {
		delete(g.Blocks, h)
		delete(g.Hashes, h)
	}
	g.LatestBlockHeight = height - 1
	for _, block := range blocks {
		g.AddBlock(block)
	}
}
