package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"golang.org/x/crypto/sha3"

	"github.com/ordbase/ordinal-indexer/ord"
)

var (
	// ErrSpentOutputMissing reports a commit that tries to consume an
	// output the store has never seen. The index is corrupt or blocks
	// arrived out of order; indexing must halt.
	ErrSpentOutputMissing = errors.New("spent output missing from store")

	// ErrBeyondRetention reports a revert past the retained undo depth.
	ErrBeyondRetention = errors.New("undo record pruned, revert beyond retention depth")

	ErrNotTip = errors.New("revert is only valid at the tip height")

	// ErrUnknownHeight reports a header lookup for a height the store
	// has never committed.
	ErrUnknownHeight = errors.New("no committed block at height")
)

// Store owns the on-disk index. One writer at a time; readers take
// snapshots and are never blocked by commits.
type Store struct {
	db        *leveldb.DB
	retention uint

	mu sync.Mutex
}

func Open(path string, retention uint) (*Store, error) {
	if retention == 0 {
		retention = ord.Confirmations
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:        db,
		retention: retention,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Height returns the tip height and whether any block is committed.
func (s *Store) Height() (uint, bool, error) {
	return readHeight(s.db)
}

func (s *Store) BlockHash(height uint) (string, error) {
	hash, _, found, err := readHeader(s.db, height)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %d", ErrUnknownHeight, height)
	}
	return hash, nil
}

func (s *Store) GetOutput(op ord.OutPoint) ([]ord.SatRange, bool, error) {
	return readOutput(s.db, op)
}

// Digest returns the rolling state digest at the tip.
func (s *Store) Digest() ([32]byte, error) {
	return readDigest(s.db)
}

// Commit atomically applies one block: removes the consumed outputs,
// inserts the created ones, records the block header and an undo record,
// and maintains the reverse range index. The whole block is a single
// batch write.
func (s *Store) Commit(height uint, hash, prevHash string, created []ord.OutputRanges, spent []ord.OutPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tip, exists, err := readHeight(s.db)
	if err != nil {
		return err
	}
	if exists {
		if height != tip+1 {
			return fmt.Errorf("commit at height %d, tip is %d", height, tip)
		}
		tipHash, _, found, err := readHeader(s.db, tip)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %d recorded as tip", ErrUnknownHeight, tip)
		}
		if prevHash != tipHash {
			return fmt.Errorf("commit at height %d does not extend the tip: prev %s, tip hash %s", height, prevHash, tipHash)
		}
	}

	undo := undoRecord{Created: created}
	undo.PrevDigest, err = readDigest(s.db)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)

	for _, op := range spent {
		ranges, found, err := readOutput(s.db, op)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s at height %d", ErrSpentOutputMissing, op.Encode(), height)
		}
		undo.Spent = append(undo.Spent, ord.OutputRanges{OutPoint: op, Ranges: ranges})
		batch.Delete(outputKey(op))
		for _, r := range ranges {
			if r.Size() == 0 {
				continue
			}
			batch.Delete(rangeKey(r.Start))
		}
	}

	for _, a := range created {
		batch.Put(outputKey(a.OutPoint), encodeRanges(a.Ranges))
		for _, r := range a.Ranges {
			if r.Size() == 0 {
				continue
			}
			batch.Put(rangeKey(r.Start), encodeRangeValue(r.End, a.OutPoint))
		}
	}

	undoBytes := encodeUndo(&undo)
	batch.Put(headerKey(height), encodeHeader(hash, prevHash))
	batch.Put(undoKey(height), undoBytes)
	batch.Put(keyTip, encodeHeight(height))
	batch.Put(keyDigest, chainDigest(undo.PrevDigest, height, hash, undoBytes))
	if height >= s.retention {
		batch.Delete(undoKey(height - s.retention))
	}

	return s.db.Write(batch, nil)
}

// Revert atomically undoes the most recently committed block, restoring
// the outputs it consumed and discarding the ones it created. Only the
// tip may be reverted, and only within the retention depth.
func (s *Store) Revert(height uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tip, exists, err := readHeight(s.db)
	if err != nil {
		return err
	}
	if !exists || height != tip {
		return fmt.Errorf("%w: got %d, tip %d", ErrNotTip, height, tip)
	}

	undoBytes, err := s.db.Get(undoKey(height), nil)
	if err == leveldb.ErrNotFound {
		return fmt.Errorf("%w: height %d", ErrBeyondRetention, height)
	}
	if err != nil {
		return err
	}
	undo, err := decodeUndo(undoBytes)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)

	for _, a := range undo.Created {
		batch.Delete(outputKey(a.OutPoint))
		for _, r := range a.Ranges {
			if r.Size() == 0 {
				continue
			}
			batch.Delete(rangeKey(r.Start))
		}
	}
	for _, a := range undo.Spent {
		batch.Put(outputKey(a.OutPoint), encodeRanges(a.Ranges))
		for _, r := range a.Ranges {
			if r.Size() == 0 {
				continue
			}
			batch.Put(rangeKey(r.Start), encodeRangeValue(r.End, a.OutPoint))
		}
	}

	batch.Delete(headerKey(height))
	batch.Delete(undoKey(height))

	// Reverting the lowest committed block empties the store again. The
	// first block may sit at any configured start height, so the base is
	// recognized by its absent predecessor header, not by height zero.
	newTip := false
	if height > 0 {
		_, _, newTip, err = readHeader(s.db, height-1)
		if err != nil {
			return err
		}
	}
	if newTip {
		batch.Put(keyTip, encodeHeight(height-1))
	} else {
		batch.Delete(keyTip)
	}
	batch.Put(keyDigest, undo.PrevDigest[:])

	return s.db.Write(batch, nil)
}

func encodeHeight(height uint) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(height))
	return buf
}

func chainDigest(prev [32]byte, height uint, hash string, undoBytes []byte) []byte {
	h := sha3.New256()
	h.Write(prev[:])
	h.Write(encodeHeight(height))
	h.Write([]byte(hash))
	h.Write(undoBytes)
	return h.Sum(nil)
}
