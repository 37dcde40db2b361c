package apis

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/ordbase/ordinal-indexer/internal/metrics"
	"github.com/ordbase/ordinal-indexer/ord"
	"github.com/ordbase/ordinal-indexer/storage"
)

// Every handler reads from one store snapshot, so a request never
// observes a partially committed block.

func GetOutput(c *gin.Context, store *storage.Store) {
	op, err := ord.DecodeOutPoint(c.Param("outpoint"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	snap, err := store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	defer snap.Release()

	ranges, found, err := snap.GetOutput(*op)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "output unknown or spent"})
		return
	}

	resp := OutputResponse{OutPoint: op.Encode(), Ranges: make([]RangeJSON, 0, len(ranges))}
	for _, r := range ranges {
		resp.Value += r.Size()
		resp.Ranges = append(resp.Ranges, RangeJSON{
			Start: uint64(r.Start),
			End:   uint64(r.End),
			Size:  r.Size(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func GetSat(c *gin.Context, store *storage.Store) {
	satNumber, err := strconv.ParseUint(c.Param("sat"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sat := ord.Sat(satNumber)
	height, ok := ord.HeightOf(sat)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("sat %d exceeds the supply limit", satNumber)})
		return
	}

	snap, err := store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	defer snap.Release()

	resp := SatResponse{
		Sat:    satNumber,
		Height: height,
		Rarity: ord.RarityOf(sat, ord.FirstOrdinal(height), height).String(),
	}
	sp, found, err := snap.FindHolder(sat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if found {
		encoded := sp.Encode()
		resp.SatPoint = &encoded
	}
	c.JSON(http.StatusOK, resp)
}

func GetRange(c *gin.Context) {
	start, err := strconv.ParseUint(c.Param("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	end, err := strconv.ParseUint(c.Param("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if start >= end || end > ord.SupplyLimit {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid sat range [%d,%d)", start, end)})
		return
	}
	c.JSON(http.StatusOK, RangeResponse{
		Start:       start,
		End:         end,
		Size:        end - start,
		StartRarity: ord.RarityOfSat(ord.Sat(start)).String(),
	})
}

// GetRareSats lists the uncommon-or-better sats minted up to the
// indexed tip together with their current holders. The default tier is
// rare: sats rarer than uncommon only occur at difficulty period or
// halving era starts, so that walk is cheap. Asking for tier=uncommon
// walks every committed height.
func GetRareSats(c *gin.Context, store *storage.Store) {
	tier := c.DefaultQuery("tier", "rare")
	if tier != "rare" && tier != "uncommon" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown tier %q", tier)})
		return
	}

	snap, err := store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	defer snap.Release()

	tip, exists, err := snap.Height()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	rare := make([]RareSatResponse, 0)
	if !exists {
		c.JSON(http.StatusOK, rare)
		return
	}
	heights := rareHeights(tip)
	if tier == "uncommon" {
		heights = make([]uint, 0, tip+1)
		for h := uint(0); h <= tip; h++ {
			heights = append(heights, h)
		}
	}
	for _, height := range heights {
		sat := ord.FirstOrdinal(height)
		entry := RareSatResponse{
			Sat:    uint64(sat),
			Height: height,
			Rarity: ord.RarityOf(sat, sat, height).String(),
		}
		sp, found, err := snap.FindHolder(sat)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		if found {
			encoded := sp.Encode()
			entry.SatPoint = &encoded
		}
		rare = append(rare, entry)
	}
	c.JSON(http.StatusOK, rare)
}

// rareHeights returns, in ascending order, every height up to tip whose
// first sat is rarer than uncommon: difficulty period starts and
// halving era starts.
func rareHeights(tip uint) []uint {
	var heights []uint
	period, era := uint(0), uint(0)
	for period <= tip || era <= tip {
		switch {
		case period < era:
			heights = append(heights, period)
			period += ord.DifficultyAdjustmentInterval
		case era < period:
			heights = append(heights, era)
			era += ord.SubsidyHalvingInterval
		default:
			heights = append(heights, period)
			period += ord.DifficultyAdjustmentInterval
			era += ord.SubsidyHalvingInterval
		}
	}
	for len(heights) > 0 && heights[len(heights)-1] > tip {
		heights = heights[:len(heights)-1]
	}
	return heights
}

func GetBlockHeight(c *gin.Context, store *storage.Store) {
	snap, err := store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	defer snap.Release()

	tip, exists, err := snap.Height()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if !exists {
		c.Data(http.StatusOK, "text/plain", []byte("-1"))
		return
	}
	c.Data(http.StatusOK, "text/plain", []byte(fmt.Sprintf("%d", tip)))
}

func NewRouter(store *storage.Store, enablePprof bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), metrics.HTTP, cors.Default())
	if enablePprof {
		pprof.Register(r)
	}

	r.GET("/v1/ordinals/output/:outpoint", func(c *gin.Context) {
		GetOutput(c, store)
	})

	r.GET("/v1/ordinals/sat/:sat", func(c *gin.Context) {
		GetSat(c, store)
	})

	r.GET("/v1/ordinals/range/:start/:end", func(c *gin.Context) {
		GetRange(c)
	})

	r.GET("/v1/ordinals/rare", func(c *gin.Context) {
		GetRareSats(c, store)
	})

	r.GET("/v1/ordinals/block_height", func(c *gin.Context) {
		GetBlockHeight(c, store)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
		})
	})

	return r
}

func StartService(store *storage.Store, addr string, enableDebug, enablePprof bool) {
	if !enableDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := NewRouter(store, enablePprof)
	_ = r.Run(addr)
}
