package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/ordbase/ordinal-indexer/ord"
)

const (
	prefixOutput = 'O'
	prefixRange  = 'R'
	prefixHeader = 'H'
	prefixUndo   = 'U'
)

var (
	keyTip    = []byte("T")
	keyDigest = []byte("D")
)

func outputKey(op ord.OutPoint) []byte {
	encoded := op.Encode()
	key := make([]byte, 1+len(encoded))
	key[0] = prefixOutput
	copy(key[1:], encoded)
	return key
}

func rangeKey(start ord.Sat) []byte {
	key := make([]byte, 9)
	key[0] = prefixRange
	binary.BigEndian.PutUint64(key[1:], uint64(start))
	return key
}

func headerKey(height uint) []byte {
	key := make([]byte, 9)
	key[0] = prefixHeader
	binary.BigEndian.PutUint64(key[1:], uint64(height))
	return key
}

func undoKey(height uint) []byte {
	key := make([]byte, 9)
	key[0] = prefixUndo
	binary.BigEndian.PutUint64(key[1:], uint64(height))
	return key
}

func encodeRanges(ranges []ord.SatRange) []byte {
	buf := make([]byte, 16*len(ranges))
	for i, r := range ranges {
		binary.BigEndian.PutUint64(buf[16*i:], uint64(r.Start))
		binary.BigEndian.PutUint64(buf[16*i+8:], uint64(r.End))
	}
	return buf
}

func decodeRanges(buf []byte) ([]ord.SatRange, error) {
	if len(buf)%16 != 0 {
		return nil, fmt.Errorf("corrupt range list of %d bytes", len(buf))
	}
	ranges := make([]ord.SatRange, len(buf)/16)
	for i := range ranges {
		ranges[i] = ord.SatRange{
			Start: ord.Sat(binary.BigEndian.Uint64(buf[16*i:])),
			End:   ord.Sat(binary.BigEndian.Uint64(buf[16*i+8:])),
		}
	}
	return ranges, nil
}

// The reverse index value is the range end followed by the holding
// outpoint.
func encodeRangeValue(end ord.Sat, op ord.OutPoint) []byte {
	encoded := op.Encode()
	buf := make([]byte, 8+len(encoded))
	binary.BigEndian.PutUint64(buf, uint64(end))
	copy(buf[8:], encoded)
	return buf
}

func decodeRangeValue(buf []byte) (ord.Sat, *ord.OutPoint, error) {
	if len(buf) < 9 {
		return 0, nil, fmt.Errorf("corrupt range index value of %d bytes", len(buf))
	}
	end := ord.Sat(binary.BigEndian.Uint64(buf))
	op, err := ord.DecodeOutPoint(string(buf[8:]))
	if err != nil {
		return 0, nil, err
	}
	return end, op, nil
}

func encodeHeader(hash, prevHash string) []byte {
	buf := make([]byte, 2+len(hash)+2+len(prevHash))
	binary.BigEndian.PutUint16(buf, uint16(len(hash)))
	copy(buf[2:], hash)
	binary.BigEndian.PutUint16(buf[2+len(hash):], uint16(len(prevHash)))
	copy(buf[4+len(hash):], prevHash)
	return buf
}

func decodeHeader(buf []byte) (hash, prevHash string, err error) {
	if len(buf) < 2 {
		return "", "", fmt.Errorf("corrupt block header of %d bytes", len(buf))
	}
	n := int(binary.BigEndian.Uint16(buf))
	if len(buf) < 2+n+2 {
		return "", "", fmt.Errorf("corrupt block header of %d bytes", len(buf))
	}
	hash = string(buf[2 : 2+n])
	m := int(binary.BigEndian.Uint16(buf[2+n:]))
	if len(buf) != 4+n+m {
		return "", "", fmt.Errorf("corrupt block header of %d bytes", len(buf))
	}
	prevHash = string(buf[4+n : 4+n+m])
	return hash, prevHash, nil
}

// undoRecord captures everything Revert needs to restore the state that
// preceded one commit.
type undoRecord struct {
	PrevDigest [32]byte
	Created    []ord.OutputRanges
	Spent      []ord.OutputRanges
}

func encodeAssignments(buf []byte, assignments []ord.OutputRanges) []byte {
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], uint32(len(assignments)))
	buf = append(buf, scratch[:]...)
	for _, a := range assignments {
		encoded := a.OutPoint.Encode()
		binary.BigEndian.PutUint16(scratch[:2], uint16(len(encoded)))
		buf = append(buf, scratch[:2]...)
		buf = append(buf, encoded...)
		binary.BigEndian.PutUint32(scratch[:], uint32(len(a.Ranges)))
		buf = append(buf, scratch[:]...)
		buf = append(buf, encodeRanges(a.Ranges)...)
	}
	return buf
}

func decodeAssignments(buf []byte) ([]ord.OutputRanges, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("corrupt undo record")
	}
	count := binary.BigEndian.Uint32(buf)
	buf = buf[4:]
	assignments := make([]ord.OutputRanges, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(buf) < 2 {
			return nil, nil, fmt.Errorf("corrupt undo record")
		}
		n := int(binary.BigEndian.Uint16(buf))
		buf = buf[2:]
		if len(buf) < n+4 {
			return nil, nil, fmt.Errorf("corrupt undo record")
		}
		op, err := ord.DecodeOutPoint(string(buf[:n]))
		if err != nil {
			return nil, nil, err
		}
		buf = buf[n:]
		m := int(binary.BigEndian.Uint32(buf)) * 16
		buf = buf[4:]
		if len(buf) < m {
			return nil, nil, fmt.Errorf("corrupt undo record")
		}
		ranges, err := decodeRanges(buf[:m])
		if err != nil {
			return nil, nil, err
		}
		buf = buf[m:]
		assignments = append(assignments, ord.OutputRanges{OutPoint: *op, Ranges: ranges})
	}
	return assignments, buf, nil
}

func encodeUndo(undo *undoRecord) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, undo.PrevDigest[:]...)
	buf = encodeAssignments(buf, undo.Created)
	buf = encodeAssignments(buf, undo.Spent)
	return buf
}

func decodeUndo(buf []byte) (*undoRecord, error) {
	if len(buf) < 32 {
		return nil, fmt.Errorf("corrupt undo record of %d bytes", len(buf))
	}
	var undo undoRecord
	copy(undo.PrevDigest[:], buf[:32])
	var err error
	undo.Created, buf, err = decodeAssignments(buf[32:])
	if err != nil {
		return nil, err
	}
	undo.Spent, buf, err = decodeAssignments(buf)
	if err != nil {
		return nil, err
	}
	if len(buf) != 0 {
		return nil, fmt.Errorf("trailing bytes in undo record")
	}
	return &undo, nil
}
