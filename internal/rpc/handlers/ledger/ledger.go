// Package ledger implements the ledger RPC method over the validated
// ledger store.
package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/rpc"
)

// Handler serves the ledger method. Only header data is returned; the
// store does not keep transaction sets.
type Handler struct {
	backend data.Backend
}

func NewHandler(backend data.Backend) *Handler {
	return &Handler{backend: backend}
}

type params struct {
	rpc.LedgerSpecifier
}

type headerResult struct {
	AccountHash         string `json:"account_hash"`
	CloseFlags          uint8  `json:"close_flags"`
	CloseTime           uint32 `json:"close_time"`
	CloseTimeResolution uint8  `json:"close_time_resolution"`
	Closed              bool   `json:"closed"`
	LedgerHash          string `json:"ledger_hash"`
	LedgerIndex         string `json:"ledger_index"`
	ParentCloseTime     uint32 `json:"parent_close_time"`
	ParentHash          string `json:"parent_hash"`
	TotalCoins          string `json:"total_coins"`
	TransactionHash     string `json:"transaction_hash"`
}

type result struct {
	Ledger      headerResult `json:"ledger"`
	LedgerHash  string       `json:"ledger_hash"`
	LedgerIndex uint32       `json:"ledger_index"`
	Validated   bool         `json:"validated"`
}

func (h *Handler) Handle(ctx *rpc.Context, p json.RawMessage) (interface{}, *rpc.Error) {
	var in params
	if len(p) > 0 {
		if err := json.Unmarshal(p, &in); err != nil {
			return nil, rpc.ErrorInvalidParams(err.Error())
		}
	}

	header, rpcErr := rpc.ResolveSnapshot(ctx.Context, h.backend, in.LedgerSpecifier)
	if rpcErr != nil {
		return nil, rpcErr
	}

	hash := fmt.Sprintf("%X", header.Hash[:])
	return result{
		Ledger: headerResult{
			AccountHash:         fmt.Sprintf("%X", header.AccountHash[:]),
			CloseFlags:          header.CloseFlags,
			CloseTime:           header.CloseTime,
			CloseTimeResolution: header.CloseTimeResolution,
			Closed:              true,
			LedgerHash:          hash,
			LedgerIndex:         strconv.FormatUint(uint64(header.Sequence), 10),
			ParentCloseTime:     header.ParentCloseTime,
			ParentHash:          fmt.Sprintf("%X", header.ParentHash[:]),
			TotalCoins:          strconv.FormatUint(header.TotalCoins, 10),
			TransactionHash:     fmt.Sprintf("%X", header.TxHash[:]),
		},
		LedgerHash:  hash,
		LedgerIndex: header.Sequence,
		Validated:   true,
	}, nil
}
