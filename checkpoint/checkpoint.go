package checkpoint

import (
	"encoding/base64"
	"fmt"
)

type IndexerIdentification struct {
	URL     string
	Name    string
	Version string
}

// Checkpoint is one indexer's claim about the index state at a block:
// the indexed height, the block hash, and the rolling state digest.
type Checkpoint struct {
	// Base64 of the rolling state digest at the checkpoint height
	Digest string `json:"digest"`
	// Hex of the block hash of the checkpoint
	Hash string `json:"hash"`
	// Block height of the checkpoint
	Height string `json:"height"`
	// Name of the indexer
	Name string `json:"name"`
	// URL of the indexer service
	URL string `json:"url"`
	// Version number of the indexer
	Version string `json:"version"`
}

type UploadRecord struct {
	Success bool
}

type UploadHistory = map[string]UploadRecord

func NewCheckpoint(indexID *IndexerIdentification, height uint, hash string, digest [32]byte) Checkpoint {
	return Checkpoint{
		URL:     indexID.URL,
		Name:    indexID.Name,
		Version: indexID.Version,
		Height:  fmt.Sprintf("%d", height),
		Hash:    hash,
		Digest:  base64.StdEncoding.EncodeToString(digest[:]),
	}
}
