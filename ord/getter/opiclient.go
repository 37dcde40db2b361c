package getter

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ordbase/ordinal-indexer/internal/metrics"
	"github.com/ordbase/ordinal-indexer/ord"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	DBname   string
	Port     string
}

// OPIBlockGetter reads blocks from an OPI-style indexer database instead
// of a Bitcoin node. Useful for bulk catchup against a prepared dataset.
type OPIBlockGetter struct {
	db *gorm.DB
}

func ConnectOPIDatabase(config *DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s",
		config.Host, config.User, config.Password, config.DBname, config.Port)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func NewOPIBlockGetter(config *DatabaseConfig) (*OPIBlockGetter, error) {
	db, err := ConnectOPIDatabase(config)
	if err != nil {
		return nil, err
	}
	return &OPIBlockGetter{db: db}, nil
}

func (opi *OPIBlockGetter) GetLatestBlockHeight() (uint, error) {
	defer metrics.ObserveDBQuery("getLatestBlockHeight", time.Now())
	var blockHeight int
	sql := `
		SELECT block_height
		FROM block_hashes ORDER BY block_height DESC LIMIT 1
	`
	err := opi.db.Raw(sql).Scan(&blockHeight).Error
	if err != nil {
		return 0, err
	}
	return uint(blockHeight), nil
}

func (opi *OPIBlockGetter) GetBlockHash(blockHeight uint) (string, error) {
	defer metrics.ObserveDBQuery("getBlockHash", time.Now())
	var blockHash string
	sql := `
		SELECT block_hash
		FROM block_hashes
		WHERE block_height = $1
	`
	err := opi.db.Raw(sql, blockHeight).Scan(&blockHash).Error
	if err != nil {
		return "", err
	}
	return blockHash, nil
}

type rawTransaction struct {
	TxID    string
	TxIndex uint
}

type rawInput struct {
	TxID            string
	PrevTxID        string
	PrevOutputIndex uint32
}

type rawOutput struct {
	TxID        string
	OutputIndex uint32
	Value       uint64
}

func (opi *OPIBlockGetter) GetBlock(blockHeight uint) (*ord.Block, error) {
	defer metrics.ObserveDBQuery("getBlock", time.Now())

	var hashes []struct {
		BlockHash string
		PrevHash  string
	}
	err := opi.db.Raw(`
		SELECT block_hash, prev_hash
		FROM block_hashes
		WHERE block_height = $1
	`, blockHeight).Scan(&hashes).Error
	if err != nil {
		return nil, err
	}
	if len(hashes) == 0 {
		return nil, ErrBlockNotFound
	}

	var txes []rawTransaction
	err = opi.db.Raw(`
		SELECT tx_id, tx_index
		FROM transactions
		WHERE block_height = $1
		ORDER BY tx_index ASC
	`, blockHeight).Scan(&txes).Error
	if err != nil {
		return nil, err
	}

	var inputs []rawInput
	err = opi.db.Raw(`
		SELECT ti.tx_id, ti.prev_tx_id, ti.prev_output_index
		FROM transaction_ins ti
		JOIN transactions t ON ti.tx_id = t.tx_id
		WHERE t.block_height = $1
		ORDER BY ti.tx_id, ti.input_index ASC
	`, blockHeight).Scan(&inputs).Error
	if err != nil {
		return nil, err
	}

	var outputs []rawOutput
	err = opi.db.Raw(`
		SELECT to_.tx_id, to_.output_index, to_.value
		FROM transaction_outs to_
		JOIN transactions t ON to_.tx_id = t.tx_id
		WHERE t.block_height = $1
		ORDER BY to_.tx_id, to_.output_index ASC
	`, blockHeight).Scan(&outputs).Error
	if err != nil {
		return nil, err
	}

	inputsByTx := make(map[string][]ord.TxIn)
	for _, in := range inputs {
		inputsByTx[in.TxID] = append(inputsByTx[in.TxID], ord.TxIn{
			Previous: ord.OutPoint{
				TxID:   ord.TXID(in.PrevTxID),
				Offset: in.PrevOutputIndex,
			},
		})
	}
	outputsByTx := make(map[string][]ord.TxOut)
	for _, out := range outputs {
		outputsByTx[out.TxID] = append(outputsByTx[out.TxID], ord.TxOut{Value: out.Value})
	}

	block := ord.Block{
		Height:   blockHeight,
		Hash:     hashes[0].BlockHash,
		PrevHash: hashes[0].PrevHash,
	}
	for _, tx := range txes {
		block.Transactions = append(block.Transactions, ord.Transaction{
			TxID:    ord.TXID(tx.TxID),
			Inputs:  inputsByTx[tx.TxID],
			Outputs: outputsByTx[tx.TxID],
		})
	}
	return &block, nil
}
