package apis

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ordbase/ordinal-indexer/ord"
	"github.com/ordbase/ordinal-indexer/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.Open(t.TempDir(), ord.Confirmations)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	server := httptest.NewServer(NewRouter(store, false).Handler())
	t.Cleanup(server.Close)
	return server, store
}

func get(t *testing.T, server *httptest.Server, path string) (int, []byte) {
	t.Helper()
	rsp, err := server.Client().Get(server.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rsp.Body.Close() }()
	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return rsp.StatusCode, body
}

func TestBlockHeightEmptyIndex(t *testing.T) {
	server, _ := newTestServer(t)
	status, body := get(t, server, "/v1/ordinals/block_height")
	if status != http.StatusOK || string(body) != "-1" {
		t.Fatalf("status %d, body %q", status, body)
	}
}

func TestOutputAndSat(t *testing.T) {
	server, store := newTestServer(t)

	op := ord.OutPoint{TxID: ord.TXID(strings.Repeat("00", 31) + "01"), Offset: 0}
	err := store.Commit(0, "hash-0", "", []ord.OutputRanges{
		{OutPoint: op, Ranges: []ord.SatRange{{Start: 0, End: 100}}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	status, body := get(t, server, "/v1/ordinals/output/"+op.Encode())
	if status != http.StatusOK {
		t.Fatalf("status %d, body %q", status, body)
	}
	var output OutputResponse
	if err := json.Unmarshal(body, &output); err != nil {
		t.Fatal(err)
	}
	if output.Value != 100 || len(output.Ranges) != 1 {
		t.Fatalf("unexpected output response: %+v", output)
	}

	status, body = get(t, server, "/v1/ordinals/sat/0")
	if status != http.StatusOK {
		t.Fatalf("status %d, body %q", status, body)
	}
	var sat SatResponse
	if err := json.Unmarshal(body, &sat); err != nil {
		t.Fatal(err)
	}
	if sat.Rarity != "mythic" {
		t.Fatalf("sat 0 rarity: %s", sat.Rarity)
	}
	want := ord.SatPoint{OutPoint: op, Offset: 0}.Encode()
	if sat.SatPoint == nil || *sat.SatPoint != want {
		t.Fatalf("sat 0 holder: %v", sat.SatPoint)
	}

	status, _ = get(t, server, "/v1/ordinals/output/"+strings.Repeat("ff", 32)+":0")
	if status != http.StatusNotFound {
		t.Fatalf("unknown output status %d", status)
	}
}

func TestRareSatTiers(t *testing.T) {
	server, store := newTestServer(t)

	for h := uint(0); h <= 1; h++ {
		op := ord.OutPoint{TxID: ord.TXID(strings.Repeat("00", 31) + fmt.Sprintf("%02d", h+1)), Offset: 0}
		reward := ord.RewardRange(h)
		prev := ""
		if h > 0 {
			prev = fmt.Sprintf("hash-%d", h-1)
		}
		err := store.Commit(h, fmt.Sprintf("hash-%d", h), prev, []ord.OutputRanges{
			{OutPoint: op, Ranges: []ord.SatRange{reward}},
		}, nil)
		if err != nil {
			t.Fatal(err)
		}
	}

	// Only height 0 starts a difficulty period, so the default walk
	// yields one entry, the mythic sat 0.
	status, body := get(t, server, "/v1/ordinals/rare")
	if status != http.StatusOK {
		t.Fatalf("status %d, body %q", status, body)
	}
	var entries []RareSatResponse
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Rarity != "mythic" || entries[0].SatPoint == nil {
		t.Fatalf("unexpected rare entries: %+v", entries)
	}

	// The uncommon tier walks every committed height.
	status, body = get(t, server, "/v1/ordinals/rare?tier=uncommon")
	if status != http.StatusOK {
		t.Fatalf("status %d, body %q", status, body)
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[1].Rarity != "uncommon" {
		t.Fatalf("unexpected uncommon entries: %+v", entries)
	}

	status, _ = get(t, server, "/v1/ordinals/rare?tier=epic")
	if status != http.StatusBadRequest {
		t.Fatalf("unknown tier status %d", status)
	}
}

func TestRangeValidation(t *testing.T) {
	server, _ := newTestServer(t)

	status, body := get(t, server, "/v1/ordinals/range/10/50")
	if status != http.StatusOK {
		t.Fatalf("status %d, body %q", status, body)
	}
	var r RangeResponse
	if err := json.Unmarshal(body, &r); err != nil {
		t.Fatal(err)
	}
	if r.Size != 40 {
		t.Fatalf("size %d", r.Size)
	}

	status, _ = get(t, server, "/v1/ordinals/range/50/10")
	if status != http.StatusBadRequest {
		t.Fatalf("inverted range status %d", status)
	}
	status, _ = get(t, server, fmt.Sprintf("/v1/ordinals/range/0/%d", ord.SupplyLimit+1))
	if status != http.StatusBadRequest {
		t.Fatalf("over-supply range status %d", status)
	}
}
