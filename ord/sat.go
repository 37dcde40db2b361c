package ord

import (
	"fmt"
	"strconv"
	"strings"
)

func (op OutPoint) Encode() string {
	return fmt.Sprintf("%s:%d", op.TxID, op.Offset)
}

func DecodeOutPoint(s string) (*OutPoint, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		err := fmt.Errorf("invalid outPoint: %s", s)
		return nil, err
	}
	txID := parts[0]
	if len(txID) != 64 {
		err := fmt.Errorf("invalid txID in outPoint: %s", txID)
		return nil, err
	}
	offset, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, err
	}
	p := OutPoint{
		TxID:   TXID(txID),
		Offset: uint32(offset),
	}
	return &p, nil
}

func (sp SatPoint) Encode() string {
	return fmt.Sprintf("%s:%d", sp.OutPoint.Encode(), sp.Offset)
}

func DecodeSatPoint(s string) (*SatPoint, error) {
	lastColonIndex := strings.LastIndex(s, ":")
	if lastColonIndex == -1 {
		err := fmt.Errorf("invalid satPoint: %s", s)
		return nil, err
	}
	part1 := s[:lastColonIndex]
	op, err := DecodeOutPoint(part1)
	if err != nil {
		return nil, err
	}
	part2 := s[lastColonIndex+1:]
	offset, err := strconv.ParseUint(part2, 10, 64)
	if err != nil {
		return nil, err
	}
	p := SatPoint{
		OutPoint: *op,
		Offset:   offset,
	}
	return &p, nil
}
