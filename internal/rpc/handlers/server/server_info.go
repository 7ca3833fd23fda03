package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/ledger"
	"github.com/LeJamon/goclio/internal/rpc"
)

// BuildVersion is stamped by the build; "dev" otherwise.
var BuildVersion = "dev"

// InfoHandler serves server_info.
type InfoHandler struct {
	backend data.Backend
	started time.Time
}

func NewInfoHandler(backend data.Backend) *InfoHandler {
	return &InfoHandler{backend: backend, started: time.Now()}
}

type validatedLedgerInfo struct {
	Age  int64  `json:"age"`
	Hash string `json:"hash"`
	Seq  uint32 `json:"seq"`
}

type serverInfo struct {
	BuildVersion    string               `json:"build_version"`
	CompleteLedgers string               `json:"complete_ledgers"`
	Time            string               `json:"time"`
	Uptime          int64                `json:"uptime"`
	ValidatedLedger *validatedLedgerInfo `json:"validated_ledger,omitempty"`
}

type infoResult struct {
	Info serverInfo `json:"info"`
}

func (h *InfoHandler) Handle(ctx *rpc.Context, params json.RawMessage) (interface{}, *rpc.Error) {
	info := serverInfo{
		BuildVersion:    BuildVersion,
		CompleteLedgers: "empty",
		Time:            time.Now().UTC().Format("2006-Jan-02 15:04:05.000000 UTC"),
		Uptime:          int64(time.Since(h.started).Seconds()),
	}

	rng, err := h.backend.FetchLedgerRange(ctx.Context)
	if err != nil {
		return nil, rpc.ErrorInternal(err.Error())
	}
	if rng != nil {
		info.CompleteLedgers = fmt.Sprintf("%d-%d", rng.MinSequence, rng.MaxSequence)

		header, err := h.backend.FetchLedgerBySequence(ctx.Context, rng.MaxSequence)
		if err == nil {
			age := time.Since(ledger.RippleTime(header.CloseTime))
			if age < 0 {
				age = 0
			}
			info.ValidatedLedger = &validatedLedgerInfo{
				Age:  int64(age.Seconds()),
				Hash: fmt.Sprintf("%X", header.Hash[:]),
				Seq:  header.Sequence,
			}
		}
	}

	return infoResult{Info: info}, nil
}
