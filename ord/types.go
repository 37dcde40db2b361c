package ord

// Sat is the sequence number of one indivisible currency unit. Sats are
// assigned at mint time, in emission order, and are never reused.
type Sat uint64

// SatRange is the half-open interval [Start, End) of sats that move
// together through the ledger.
type SatRange struct {
	Start Sat
	End   Sat
}

func (r SatRange) Size() uint64 {
	return uint64(r.End - r.Start)
}

func (r SatRange) Contains(sat Sat) bool {
	return r.Start <= sat && sat < r.End
}

type TXID string

type OutPoint struct {
	TxID   TXID
	Offset uint32
}

// SatPoint locates a single sat inside an unspent output: the output
// plus the sat's offset within the output's ordered range list.
type SatPoint struct {
	OutPoint OutPoint
	Offset   uint64
}

// OutputRanges is one output together with the ordered sat ranges it
// holds. The order reflects the order the sats entered the output.
type OutputRanges struct {
	OutPoint OutPoint
	Ranges   []SatRange
}

type TxIn struct {
	Previous OutPoint
}

type TxOut struct {
	Value uint64
}

// Transaction carries only what range allocation needs: the inputs it
// consumes and the values it creates. Scripts are the node's business.
type Transaction struct {
	TxID    TXID
	Inputs  []TxIn
	Outputs []TxOut
}

// IsCoinbase reports whether the transaction mints the block reward.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 0
}

type Block struct {
	Height       uint
	Hash         string
	PrevHash     string
	Transactions []Transaction
}
