package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ordbase/ordinal-indexer/ord"
)

// reader is satisfied by both *leveldb.DB and *leveldb.Snapshot, so the
// writer path and snapshot readers share the same lookup code.
type reader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// Snapshot is a point-in-time read view over the committed index. A
// snapshot never observes a partially committed block. Release it when
// done.
type Snapshot struct {
	snap *leveldb.Snapshot
}

func (s *Store) Snapshot() (*Snapshot, error) {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return nil, err
	}
	return &Snapshot{snap: snap}, nil
}

func (sn *Snapshot) Release() {
	sn.snap.Release()
}

func (sn *Snapshot) Height() (uint, bool, error) {
	return readHeight(sn.snap)
}

func (sn *Snapshot) BlockHash(height uint) (string, error) {
	hash, _, found, err := readHeader(sn.snap, height)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %d", ErrUnknownHeight, height)
	}
	return hash, nil
}

func (sn *Snapshot) GetOutput(op ord.OutPoint) ([]ord.SatRange, bool, error) {
	return readOutput(sn.snap, op)
}

func (sn *Snapshot) Digest() ([32]byte, error) {
	return readDigest(sn.snap)
}

// FindHolder locates the unspent output currently holding the sat, plus
// the sat's offset within that output's ordered ranges. The reverse
// index is keyed by range start, so this is a predecessor lookup, not a
// scan.
func (sn *Snapshot) FindHolder(sat ord.Sat) (*ord.SatPoint, bool, error) {
	iter := sn.snap.NewIterator(util.BytesPrefix([]byte{prefixRange}), nil)
	defer iter.Release()

	target := rangeKey(sat)
	var positioned bool
	if iter.Seek(target) {
		positioned = bytes.Equal(iter.Key(), target) || iter.Prev()
	} else {
		positioned = iter.Last()
	}
	if !positioned {
		return nil, false, nil
	}

	start := ord.Sat(binary.BigEndian.Uint64(iter.Key()[1:]))
	end, op, err := decodeRangeValue(iter.Value())
	if err != nil {
		return nil, false, err
	}
	if sat < start || sat >= end {
		return nil, false, nil
	}

	// Offset within the output's ordered ranges, not within the raw
	// numeric interval.
	ranges, found, err := readOutput(sn.snap, *op)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	var offset uint64
	for _, r := range ranges {
		if r.Contains(sat) {
			offset += uint64(sat - r.Start)
			return &ord.SatPoint{OutPoint: *op, Offset: offset}, true, nil
		}
		offset += r.Size()
	}
	return nil, false, nil
}

func readHeight(r reader) (uint, bool, error) {
	buf, err := r.Get(keyTip, nil)
	if err == leveldb.ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint(binary.BigEndian.Uint64(buf)), true, nil
}

func readHeader(r reader, height uint) (string, string, bool, error) {
	buf, err := r.Get(headerKey(height), nil)
	if err == leveldb.ErrNotFound {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	hash, prevHash, err := decodeHeader(buf)
	return hash, prevHash, err == nil, err
}

func readOutput(r reader, op ord.OutPoint) ([]ord.SatRange, bool, error) {
	buf, err := r.Get(outputKey(op), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	ranges, err := decodeRanges(buf)
	if err != nil {
		return nil, false, err
	}
	return ranges, true, nil
}

func readDigest(r reader) ([32]byte, error) {
	var digest [32]byte
	buf, err := r.Get(keyDigest, nil)
	if err == leveldb.ErrNotFound {
		return digest, nil
	}
	if err != nil {
		return digest, err
	}
	copy(digest[:], buf)
	return digest, nil
}
