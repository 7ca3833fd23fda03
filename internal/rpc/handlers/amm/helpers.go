package amm

import (
	"bytes"
	"context"
	"errors"

	crypto "github.com/LeJamon/goclio/internal/crypto/common"
	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/ledger"
	"github.com/LeJamon/goclio/internal/ledger/entry"
	"github.com/LeJamon/goclio/internal/ledger/keylet"
)

// Auction slot timing, matching rippled's AMMCore constants. The slot
// lasts 24 hours split into 20 equal intervals.
const (
	auctionSlotTotalSecs    = 24 * 60 * 60
	auctionSlotIntervals    = 20
	auctionSlotIntervalSecs = auctionSlotTotalSecs / auctionSlotIntervals
)

// LPTCurrency derives the currency code of an AMM's LP tokens from the
// pool's two currencies. The currencies are sorted first, so the result
// does not depend on argument order. Matches rippled's ammLPTCurrency.
func LPTCurrency(c1, c2 ledger.Currency) ledger.Currency {
	minC, maxC := c1, c2
	if bytes.Compare(maxC[:], minC[:]) < 0 {
		minC, maxC = maxC, minC
	}

	hash := crypto.Sha512Half(minC[:], maxC[:])

	var out ledger.Currency
	copy(out[:], hash[:20])
	out[0] = 0x03
	return out
}

// AuctionTimeSlot computes the zero-based interval the auction slot is
// in at the given close time. It returns auctionSlotIntervals when the
// slot has expired or has not started, which callers surface as the
// "expired" interval.
func AuctionTimeSlot(parentCloseTime, expiration uint32) uint32 {
	start := int64(expiration) - auctionSlotTotalSecs
	diff := int64(parentCloseTime) - start
	if diff < 0 || diff >= auctionSlotTotalSecs {
		return auctionSlotIntervals
	}
	return uint32(diff / auctionSlotIntervalSecs)
}

// iso8601 formats a ledger-epoch timestamp the way rippled's to_iso8601
// does. The offset is always numeric, so UTC renders as +0000 rather
// than Z.
func iso8601(secs uint32) string {
	return ledger.RippleTime(secs).Format("2006-01-02T15:04:05-0700")
}

// reader bundles the backend with the sequence every lookup is pinned
// to.
type reader struct {
	backend data.Backend
	seq     uint32
}

// accountRoot fetches and decodes an account root. A missing entry
// returns data.ErrNotFound.
func (r reader) accountRoot(ctx context.Context, account ledger.AccountID) (*entry.AccountRoot, error) {
	blob, err := r.backend.FetchLedgerObject(ctx, keylet.Account(account).Key, r.seq)
	if err != nil {
		return nil, err
	}
	return entry.ParseAccountRoot(blob)
}

// line fetches and decodes the trust line between two accounts. A
// missing line returns data.ErrNotFound.
func (r reader) line(ctx context.Context, a, b ledger.AccountID, currency ledger.Currency) (*entry.RippleState, error) {
	blob, err := r.backend.FetchLedgerObject(ctx, keylet.Line(a, b, currency).Key, r.seq)
	if err != nil {
		return nil, err
	}
	return entry.ParseRippleState(blob)
}

// isFrozen reports whether the given account's holding of the asset is
// frozen, either globally by the issuer or on the individual trust
// line. The native asset is never frozen. Matches rippled's isFrozen.
func (r reader) isFrozen(ctx context.Context, account ledger.AccountID, issue ledger.Issue) (bool, error) {
	if issue.IsXRP() {
		return false, nil
	}

	issuerRoot, err := r.accountRoot(ctx, issue.Issuer)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if issuerRoot.Flags&entry.LsfGlobalFreeze != 0 {
		return true, nil
	}

	if issue.Issuer == account {
		return false, nil
	}

	rs, err := r.line(ctx, account, issue.Issuer, issue.Currency)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	// The freeze flag on the issuer's side of the line is the one that
	// matters.
	flag := entry.LsfLowFreeze
	if bytes.Compare(issue.Issuer[:], account[:]) > 0 {
		flag = entry.LsfHighFreeze
	}
	return rs.Flags&flag != 0, nil
}

// accountHolds returns the account's balance of the asset. For the
// native asset this is the account's XRP balance. For issued assets it
// is the trust line balance seen from the account's side; a missing
// line reads as zero. With zeroIfFrozen a frozen holding also reads as
// zero.
func (r reader) accountHolds(ctx context.Context, account ledger.AccountID, issue ledger.Issue, zeroIfFrozen bool) (ledger.Amount, error) {
	if issue.IsXRP() {
		root, err := r.accountRoot(ctx, account)
		if err != nil {
			return ledger.Amount{}, err
		}
		return ledger.NewXRPAmount(root.Balance), nil
	}

	zero := ledger.ZeroIssuedAmount(issue.Currency, issue.Issuer)

	rs, err := r.line(ctx, account, issue.Issuer, issue.Currency)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return zero, nil
		}
		return ledger.Amount{}, err
	}

	if zeroIfFrozen {
		frozen, err := r.isFrozen(ctx, account, issue)
		if err != nil {
			return ledger.Amount{}, err
		}
		if frozen {
			return zero, nil
		}
	}

	amount := rs.Balance
	if bytes.Compare(account[:], issue.Issuer[:]) > 0 {
		// Line balances are stored from the low account's perspective.
		amount = amount.Negate()
	}
	return amount.WithIssuer(issue.Issuer), nil
}

// poolHolds returns the AMM account's balances of both pool assets,
// frozen holdings reading as zero.
func (r reader) poolHolds(ctx context.Context, ammAccount ledger.AccountID, asset, asset2 ledger.Issue) (ledger.Amount, ledger.Amount, error) {
	holds1, err := r.accountHolds(ctx, ammAccount, asset, true)
	if err != nil {
		return ledger.Amount{}, ledger.Amount{}, err
	}
	holds2, err := r.accountHolds(ctx, ammAccount, asset2, true)
	if err != nil {
		return ledger.Amount{}, ledger.Amount{}, err
	}
	return holds1, holds2, nil
}

// lpHolds returns the account's LP token balance for the AMM.
func (r reader) lpHolds(ctx context.Context, ammAccount, holder ledger.AccountID, lptCurrency ledger.Currency) (ledger.Amount, error) {
	return r.accountHolds(ctx, holder, ledger.Issue{Currency: lptCurrency, Issuer: ammAccount}, true)
}
