// Package storage persists the output → sat-range index in a LevelDB
// database.
//
// Key layout (one byte prefix each):
//
//	O ++ outpoint        - sat ranges held by an unspent output
//	R ++ range start     - reverse index entry: range end ++ outpoint
//	H ++ height          - block hash ++ previous block hash
//	U ++ height          - undo record for one committed block
//	T                    - tip height
//	D                    - rolling state digest at the tip
//
// Every block is applied with a single leveldb.Batch write, so a crash
// mid-commit leaves no partial state. Undo records are retained for the
// configured depth and pruned afterwards.
package storage
