package apis

type RangeJSON struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
	Size  uint64 `json:"size"`
}

type OutputResponse struct {
	OutPoint string      `json:"outpoint"`
	Value    uint64      `json:"value"`
	Ranges   []RangeJSON `json:"ranges"`
}

type SatResponse struct {
	Sat      uint64  `json:"sat"`
	Height   uint    `json:"height"`
	Rarity   string  `json:"rarity"`
	SatPoint *string `json:"satpoint"`
}

type RangeResponse struct {
	Start       uint64 `json:"start"`
	End         uint64 `json:"end"`
	Size        uint64 `json:"size"`
	StartRarity string `json:"startRarity"`
}

type RareSatResponse struct {
	Sat      uint64  `json:"sat"`
	Height   uint    `json:"height"`
	Rarity   string  `json:"rarity"`
	SatPoint *string `json:"satpoint"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
