package getter

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"

	"github.com/ordbase/ordinal-indexer/internal/metrics"
	"github.com/ordbase/ordinal-indexer/ord"
)

type BitcoinGetter struct {
	client *rpcclient.Client
}

func NewBitcoinGetter(host, user, pass string) (*BitcoinGetter, error) {
	connCfg := &rpcclient.ConnConfig{
		Host:         host,
		User:         user,
		Pass:         pass,
		HTTPPostMode: true, // Bitcoin core only supports HTTP POST mode
		DisableTLS:   true, // Bitcoin core does not provide TLS by default
	}
	// Notice the notification parameter is nil since notifications are
	// not supported in HTTP POST mode.
	client, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, err
	}

	return &BitcoinGetter{
		client: client,
	}, nil
}

func (r *BitcoinGetter) GetLatestBlockHeight() (uint, error) {
	defer metrics.ObserveDBQuery("getLatestBlockHeight", time.Now())
	count, err := r.client.GetBlockCount()
	if err != nil {
		return 0, err
	}
	return uint(count), nil
}

func (r *BitcoinGetter) GetBlockHash(blockHeight uint) (string, error) {
	defer metrics.ObserveDBQuery("getBlockHash", time.Now())
	hash, err := r.client.GetBlockHash(int64(blockHeight))
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (r *BitcoinGetter) GetBlock(blockHeight uint) (*ord.Block, error) {
	defer metrics.ObserveDBQuery("getBlock", time.Now())
	count, err := r.client.GetBlockCount()
	if err != nil {
		return nil, err
	}
	if uint(count) < blockHeight {
		return nil, ErrBlockNotFound
	}
	hash, err := r.client.GetBlockHash(int64(blockHeight))
	if err != nil {
		return nil, err
	}
	msgBlock, err := r.client.GetBlock(hash)
	if err != nil {
		return nil, err
	}
	return convertBlock(blockHeight, hash.String(), msgBlock), nil
}

func convertBlock(height uint, hash string, msgBlock *wire.MsgBlock) *ord.Block {
	block := ord.Block{
		Height:       height,
		Hash:         hash,
		PrevHash:     msgBlock.Header.PrevBlock.String(),
		Transactions: make([]ord.Transaction, 0, len(msgBlock.Transactions)),
	}
	for _, msgTx := range msgBlock.Transactions {
		tx := ord.Transaction{
			TxID: ord.TXID(msgTx.TxHash().String()),
		}
		for _, txIn := range msgTx.TxIn {
			if txIn.PreviousOutPoint.Hash == (chainhash.Hash{}) {
				// The coinbase input mints, it consumes nothing.
				continue
			}
			tx.Inputs = append(tx.Inputs, ord.TxIn{
				Previous: ord.OutPoint{
					TxID:   ord.TXID(txIn.PreviousOutPoint.Hash.String()),
					Offset: txIn.PreviousOutPoint.Index,
				},
			})
		}
		for _, txOut := range msgTx.TxOut {
			tx.Outputs = append(tx.Outputs, ord.TxOut{Value: uint64(txOut.Value)})
		}
		block.Transactions = append(block.Transactions, tx)
	}
	return &block
}
