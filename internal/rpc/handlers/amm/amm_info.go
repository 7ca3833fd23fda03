// Package amm implements the amm_info RPC method: resolving an AMM
// instance from validated ledger state and projecting it into the XRPL
// API response shape.
package amm

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/ledger"
	"github.com/LeJamon/goclio/internal/ledger/entry"
	"github.com/LeJamon/goclio/internal/ledger/keylet"
	"github.com/LeJamon/goclio/internal/rpc"
)

// InfoHandler serves the amm_info method.
type InfoHandler struct {
	backend data.Backend
	log     *zap.Logger
}

func NewInfoHandler(backend data.Backend, logger *zap.Logger) *InfoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InfoHandler{backend: backend, log: logger}
}

// assetParam is the JSON shape of an asset specifier: a currency code
// plus, for issued currencies, the issuing account.
type assetParam struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
}

type infoParams struct {
	Asset      *assetParam `json:"asset,omitempty"`
	Asset2     *assetParam `json:"asset2,omitempty"`
	AMMAccount string      `json:"amm_account,omitempty"`
	Account    string      `json:"account,omitempty"`

	rpc.LedgerSpecifier
}

type voteSlotResult struct {
	Account    string `json:"account"`
	TradingFee uint16 `json:"trading_fee"`
	VoteWeight uint32 `json:"vote_weight"`
}

type authAccountResult struct {
	Account string `json:"account"`
}

type auctionSlotResult struct {
	Account       string              `json:"account"`
	AuthAccounts  []authAccountResult `json:"auth_accounts,omitempty"`
	DiscountedFee uint16              `json:"discounted_fee"`
	Expiration    string              `json:"expiration"`
	Price         ledger.Amount       `json:"price"`
	TimeInterval  uint32              `json:"time_interval"`
}

type ammResult struct {
	Account      string             `json:"account"`
	Amount       ledger.Amount      `json:"amount"`
	Amount2      ledger.Amount      `json:"amount2"`
	AssetFrozen  *bool              `json:"asset_frozen,omitempty"`
	Asset2Frozen *bool              `json:"asset2_frozen,omitempty"`
	AuctionSlot  *auctionSlotResult `json:"auction_slot,omitempty"`
	LPToken      ledger.Amount      `json:"lp_token"`
	TradingFee   uint16             `json:"trading_fee"`
	VoteSlots    []voteSlotResult   `json:"vote_slots,omitempty"`
}

type infoResult struct {
	AMM         ammResult `json:"amm"`
	LedgerIndex uint32    `json:"ledger_index"`
	Validated   bool      `json:"validated"`
}

// parseAsset converts an asset specifier into an Issue. "XRP" must not
// carry an issuer; every other currency must.
func parseAsset(field string, p *assetParam) (ledger.Issue, *rpc.Error) {
	if p == nil {
		return ledger.Issue{}, rpc.ErrorMissingField(field)
	}

	currency, err := ledger.ParseCurrency(p.Currency)
	if err != nil {
		return ledger.Issue{}, rpc.ErrorInvalidField(field)
	}

	if currency == (ledger.Currency{}) {
		if p.Issuer != "" {
			return ledger.Issue{}, rpc.ErrorInvalidParams("Unneeded field '" + field + ".issuer'.")
		}
		return ledger.XRPIssue(), nil
	}

	if p.Issuer == "" {
		return ledger.Issue{}, rpc.ErrorMissingField(field + ".issuer")
	}
	issuer, err := ledger.DecodeAccountID(p.Issuer)
	if err != nil {
		return ledger.Issue{}, rpc.ErrorInvalidField(field + ".issuer")
	}
	return ledger.Issue{Currency: currency, Issuer: issuer}, nil
}

func (h *InfoHandler) Handle(ctx *rpc.Context, params json.RawMessage) (interface{}, *rpc.Error) {
	var in infoParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, rpc.ErrorInvalidParams(err.Error())
		}
	}

	byAccount := in.AMMAccount != ""
	byAssets := in.Asset != nil || in.Asset2 != nil
	if byAccount == byAssets {
		return nil, rpc.ErrorInvalidParams("Must provide either 'amm_account' or 'asset' and 'asset2'.")
	}

	// All input validation happens before the first backend read, so a
	// malformed request is reported as such even when the store is empty
	// or the requested ledger is missing.
	var issue1, issue2 ledger.Issue
	var ammAccountID ledger.AccountID
	if byAccount {
		id, err := ledger.DecodeAccountID(in.AMMAccount)
		if err != nil {
			return nil, rpc.ErrorActMalformed("Account malformed.")
		}
		ammAccountID = id
	} else {
		var rpcErr *rpc.Error
		if issue1, rpcErr = parseAsset("asset", in.Asset); rpcErr != nil {
			return nil, rpcErr
		}
		if issue2, rpcErr = parseAsset("asset2", in.Asset2); rpcErr != nil {
			return nil, rpcErr
		}
	}

	var holder *ledger.AccountID
	if in.Account != "" {
		id, err := ledger.DecodeAccountID(in.Account)
		if err != nil {
			return nil, rpc.ErrorActMalformed("Account malformed.")
		}
		holder = &id
	}

	header, rpcErr := rpc.ResolveSnapshot(ctx.Context, h.backend, in.LedgerSpecifier)
	if rpcErr != nil {
		return nil, rpcErr
	}
	rd := reader{backend: h.backend, seq: header.Sequence}

	// Optional holder account: must exist in this ledger.
	if holder != nil {
		if _, err := rd.accountRoot(ctx.Context, *holder); err != nil {
			return nil, mapReadError(err, "Account not found.")
		}
	}

	var ammKey [32]byte
	if byAccount {
		root, err := rd.accountRoot(ctx.Context, ammAccountID)
		if err != nil {
			return nil, mapReadError(err, "Account not found.")
		}
		if root.AMMID == nil {
			return nil, rpc.ErrorActNotFound("Account is not an AMM account.")
		}
		ammKey = *root.AMMID
	} else {
		ammKey = keylet.AMM(issue1, issue2).Key
	}

	h.log.Debug("resolving amm",
		zap.String("key", fmt.Sprintf("%X", ammKey[:])),
		zap.Uint32("ledger_index", header.Sequence))

	blob, err := h.backend.FetchLedgerObject(ctx.Context, ammKey, header.Sequence)
	if err != nil {
		return nil, mapReadError(err, "AMM not found.")
	}
	amm, err := entry.ParseAMM(blob)
	if err != nil {
		h.log.Warn("failed to decode amm entry",
			zap.Uint32("ledger_index", header.Sequence),
			zap.Error(err))
		return nil, mapReadError(err, "AMM not found.")
	}

	// The AMM's pseudo-account holds the pool.
	if _, err := rd.accountRoot(ctx.Context, amm.Account); err != nil {
		return nil, mapReadError(err, "AMM account not found.")
	}

	// amount and asset_frozen follow the request's asset order; only an
	// amm_account lookup falls back to the stored pool order.
	if byAccount {
		issue1, issue2 = amm.Asset, amm.Asset2
	}

	holds1, holds2, err := rd.poolHolds(ctx.Context, amm.Account, issue1, issue2)
	if err != nil {
		return nil, mapReadError(err, "AMM not found.")
	}

	lptCurrency := LPTCurrency(amm.Asset.Currency, amm.Asset2.Currency)
	lpToken := amm.LPTokenBalance
	if holder != nil {
		lpToken, err = rd.lpHolds(ctx.Context, amm.Account, *holder, lptCurrency)
		if err != nil {
			return nil, mapReadError(err, "AMM not found.")
		}
	}

	result := ammResult{
		Account:    amm.Account.String(),
		Amount:     holds1,
		Amount2:    holds2,
		LPToken:    lpToken,
		TradingFee: amm.TradingFee,
	}

	for _, slot := range amm.VoteSlots {
		result.VoteSlots = append(result.VoteSlots, voteSlotResult{
			Account:    slot.Account.String(),
			TradingFee: slot.TradingFee,
			VoteWeight: slot.VoteWeight,
		})
	}

	if slot := amm.AuctionSlot; slot != nil {
		auction := &auctionSlotResult{
			Account:       slot.Account.String(),
			DiscountedFee: slot.DiscountedFee,
			Expiration:    iso8601(slot.Expiration),
			Price:         slot.Price,
			TimeInterval:  AuctionTimeSlot(header.ParentCloseTime, slot.Expiration),
		}
		for _, acct := range slot.AuthAccounts {
			auction.AuthAccounts = append(auction.AuthAccounts, authAccountResult{Account: acct.String()})
		}
		result.AuctionSlot = auction
	}

	if !issue1.IsXRP() {
		frozen, err := rd.isFrozen(ctx.Context, amm.Account, issue1)
		if err != nil {
			return nil, mapReadError(err, "AMM not found.")
		}
		result.AssetFrozen = &frozen
	}
	if !issue2.IsXRP() {
		frozen, err := rd.isFrozen(ctx.Context, amm.Account, issue2)
		if err != nil {
			return nil, mapReadError(err, "AMM not found.")
		}
		result.Asset2Frozen = &frozen
	}

	return infoResult{
		AMM:         result,
		LedgerIndex: header.Sequence,
		Validated:   true,
	}, nil
}

// mapReadError converts a storage or decode error into its RPC form.
func mapReadError(err error, notFoundMsg string) *rpc.Error {
	switch {
	case errors.Is(err, data.ErrNotFound):
		return rpc.ErrorActNotFound(notFoundMsg)
	case errors.Is(err, entry.ErrCorrupt):
		return rpc.ErrorDBDeserialization(err.Error())
	default:
		return rpc.ErrorInternal(err.Error())
	}
}
