package amm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/LeJamon/goclio/internal/data"
	"github.com/LeJamon/goclio/internal/data/mocks"
	"github.com/LeJamon/goclio/internal/ledger"
	"github.com/LeJamon/goclio/internal/ledger/entry"
	"github.com/LeJamon/goclio/internal/ledger/keylet"
	"github.com/LeJamon/goclio/internal/rpc"
)

// Well-known rippled test accounts.
const (
	gatewayAddr = "rGWrZyQqhTp9Xu7G5Pkayo7bXjH4k4QYpf"
	ammAddr     = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	aliceAddr   = "rN7n3473SaZBCG4dFL83w7a1RXtXtbk2D9"
	bobAddr     = "rPMh7Pi9ct699iZUTWaytJUoHcJ7cgyziK"
)

// fixture backs the mock with in-memory ledger state.
type fixture struct {
	t       *testing.T
	backend *mocks.MockBackend
	objects map[[32]byte][]byte
	headers map[uint32]*ledger.Header
	rng     *data.LedgerRange
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:       t,
		objects: make(map[[32]byte][]byte),
		headers: make(map[uint32]*ledger.Header),
	}

	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().FetchLedgerRange(gomock.Any()).
		DoAndReturn(func(context.Context) (*data.LedgerRange, error) {
			return f.rng, nil
		}).AnyTimes()
	backend.EXPECT().FetchLedgerBySequence(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, seq uint32) (*ledger.Header, error) {
			if header, ok := f.headers[seq]; ok {
				return header, nil
			}
			return nil, data.ErrNotFound
		}).AnyTimes()
	backend.EXPECT().FetchLedgerByHash(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, hash [32]byte) (*ledger.Header, error) {
			for _, header := range f.headers {
				if header.Hash == hash {
					return header, nil
				}
			}
			return nil, data.ErrNotFound
		}).AnyTimes()
	backend.EXPECT().FetchLedgerObject(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key [32]byte, _ uint32) ([]byte, error) {
			if blob, ok := f.objects[key]; ok {
				return blob, nil
			}
			return nil, data.ErrNotFound
		}).AnyTimes()

	f.backend = backend
	return f
}

func (f *fixture) handler() *InfoHandler {
	return NewInfoHandler(f.backend, zaptest.NewLogger(f.t))
}

func (f *fixture) addHeader(seq, parentCloseTime uint32) {
	header := &ledger.Header{
		Sequence:        seq,
		CloseTime:       parentCloseTime + 4,
		ParentCloseTime: parentCloseTime,
	}
	header.Hash[0] = byte(seq)
	f.headers[seq] = header
	if f.rng == nil {
		f.rng = &data.LedgerRange{MinSequence: seq, MaxSequence: seq}
		return
	}
	f.rng.MinSequence = min(f.rng.MinSequence, seq)
	f.rng.MaxSequence = max(f.rng.MaxSequence, seq)
}

func (f *fixture) addAccount(root *entry.AccountRoot) {
	f.objects[keylet.Account(root.Account).Key] = root.Serialize()
}

// addLine stores a trust line, with balance given from account a's
// perspective.
func (f *fixture) addLine(a, b ledger.AccountID, currency ledger.Currency, balance ledger.Amount, flags uint32) {
	low, high := a, b
	if bytes.Compare(high[:], low[:]) < 0 {
		low, high = high, low
		balance = balance.Negate()
	}

	rs := &entry.RippleState{
		Balance:   balance.WithIssuer(ledger.AccountID{}),
		LowLimit:  ledger.ZeroIssuedAmount(currency, low),
		HighLimit: ledger.ZeroIssuedAmount(currency, high),
		Flags:     flags,
	}
	f.objects[keylet.Line(a, b, currency).Key] = rs.Serialize()
}

func (f *fixture) addAMM(amm *entry.AMM) {
	f.objects[keylet.AMM(amm.Asset, amm.Asset2).Key] = amm.Serialize()
}

func mustID(t *testing.T, addr string) ledger.AccountID {
	t.Helper()
	id, err := ledger.DecodeAccountID(addr)
	require.NoError(t, err)
	return id
}

func mustCur(t *testing.T, code string) ledger.Currency {
	t.Helper()
	c, err := ledger.ParseCurrency(code)
	require.NoError(t, err)
	return c
}

// setupXRPUSD builds the standard scenario: an XRP/USD pool holding
// 300 XRP and 250 USD with total LP tokens of 1000, one vote slot and
// an auction slot halfway through its 24h window.
func (f *fixture) setupXRPUSD() *entry.AMM {
	t := f.t
	gateway := mustID(t, gatewayAddr)
	ammAccount := mustID(t, ammAddr)
	usd := mustCur(t, "USD")
	lpt := LPTCurrency(ledger.Currency{}, usd)

	const expiration = 800_000_000
	f.addHeader(30, expiration-auctionSlotTotalSecs/2)

	ammKey := keylet.AMM(ledger.XRPIssue(), ledger.Issue{Currency: usd, Issuer: gateway}).Key
	f.addAccount(&entry.AccountRoot{
		Account: ammAccount,
		Balance: 300_000_000,
		AMMID:   &ammKey,
	})
	f.addAccount(&entry.AccountRoot{Account: gateway, Balance: 50_000_000})
	f.addLine(ammAccount, gateway, usd, ledger.NewIssuedAmount(250, 0, usd, gateway), 0)

	amm := &entry.AMM{
		Account:        ammAccount,
		Asset:          ledger.XRPIssue(),
		Asset2:         ledger.Issue{Currency: usd, Issuer: gateway},
		TradingFee:     600,
		LPTokenBalance: ledger.NewIssuedAmount(1000, 0, lpt, ammAccount),
		VoteSlots: []entry.VoteSlot{
			{Account: gateway, TradingFee: 600, VoteWeight: 100000},
		},
		AuctionSlot: &entry.AuctionSlot{
			Account:       gateway,
			Price:         ledger.NewIssuedAmount(10, 0, lpt, ammAccount),
			DiscountedFee: 60,
			Expiration:    expiration,
			AuthAccounts:  []ledger.AccountID{mustID(t, aliceAddr)},
		},
	}
	f.addAMM(amm)
	return amm
}

func handle(t *testing.T, h *InfoHandler, params string) (infoResult, *rpc.Error) {
	t.Helper()
	ctx := &rpc.Context{Context: context.Background(), ApiVersion: rpc.DefaultApiVersion}
	result, rpcErr := h.Handle(ctx, json.RawMessage(params))
	if rpcErr != nil {
		return infoResult{}, rpcErr
	}
	out, ok := result.(infoResult)
	require.True(t, ok)
	return out, nil
}

func xrpUSDParams(extra string) string {
	base := fmt.Sprintf(`"asset":{"currency":"XRP"},"asset2":{"currency":"USD","issuer":"%s"}`, gatewayAddr)
	if extra != "" {
		base += "," + extra
	}
	return "{" + base + "}"
}

func TestAMMInfoXRPUSDPool(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	result, rpcErr := handle(t, f.handler(), xrpUSDParams(""))
	require.Nil(t, rpcErr)

	require.Equal(t, uint32(30), result.LedgerIndex)
	require.True(t, result.Validated)

	amm := result.AMM
	require.Equal(t, ammAddr, amm.Account)
	require.Equal(t, uint16(600), amm.TradingFee)

	// XRP side serializes as drops, issued side as an object.
	require.True(t, amm.Amount.IsNative())
	require.Equal(t, "300000000", amm.Amount.Value())
	require.False(t, amm.Amount2.IsNative())
	require.Equal(t, "250", amm.Amount2.Value())
	require.Equal(t, "USD", amm.Amount2.Currency.String())
	require.Equal(t, gatewayAddr, amm.Amount2.Issuer.String())

	// LP token identity: derived currency, issued by the AMM account.
	require.Equal(t, "1000", amm.LPToken.Value())
	require.Equal(t, ammAddr, amm.LPToken.Issuer.String())
	require.Equal(t, byte(0x03), amm.LPToken.Currency[0])

	// XRP cannot be frozen so the member is absent entirely.
	require.Nil(t, amm.AssetFrozen)
	require.NotNil(t, amm.Asset2Frozen)
	require.False(t, *amm.Asset2Frozen)

	require.Len(t, amm.VoteSlots, 1)
	require.Equal(t, gatewayAddr, amm.VoteSlots[0].Account)
	require.Equal(t, uint32(100000), amm.VoteSlots[0].VoteWeight)
}

func TestAMMInfoAuctionSlotMidWindow(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	result, rpcErr := handle(t, f.handler(), xrpUSDParams(""))
	require.Nil(t, rpcErr)

	slot := result.AMM.AuctionSlot
	require.NotNil(t, slot)
	require.Equal(t, gatewayAddr, slot.Account)
	require.Equal(t, uint16(60), slot.DiscountedFee)
	require.Equal(t, uint32(10), slot.TimeInterval)
	require.Equal(t, "10", slot.Price.Value())
	require.Len(t, slot.AuthAccounts, 1)
	require.Equal(t, aliceAddr, slot.AuthAccounts[0].Account)
	require.NotEmpty(t, slot.Expiration)
}

func TestAMMInfoAuctionSlotExpired(t *testing.T) {
	f := newFixture(t)
	amm := f.setupXRPUSD()

	// Move the ledger clock past the slot's expiration.
	f.addHeader(31, amm.AuctionSlot.Expiration+100)

	result, rpcErr := handle(t, f.handler(), xrpUSDParams(""))
	require.Nil(t, rpcErr)
	require.Equal(t, uint32(20), result.AMM.AuctionSlot.TimeInterval)
}

func TestAMMInfoFollowsRequestAssetOrder(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()
	h := f.handler()

	// The pool is stored as (XRP, USD); request it the other way round.
	// amount and asset_frozen must track the request's asset, not the
	// stored order.
	swapped := fmt.Sprintf(`{"asset":{"currency":"USD","issuer":"%s"},"asset2":{"currency":"XRP"}}`, gatewayAddr)
	result, rpcErr := handle(t, h, swapped)
	require.Nil(t, rpcErr)

	amm := result.AMM
	require.False(t, amm.Amount.IsNative())
	require.Equal(t, "250", amm.Amount.Value())
	require.Equal(t, "USD", amm.Amount.Currency.String())
	require.True(t, amm.Amount2.IsNative())
	require.Equal(t, "300000000", amm.Amount2.Value())

	// The frozen member sits on the issued side of the request.
	require.NotNil(t, amm.AssetFrozen)
	require.False(t, *amm.AssetFrozen)
	require.Nil(t, amm.Asset2Frozen)

	// Both orders resolve the same instrument.
	forward, rpcErr := handle(t, h, xrpUSDParams(""))
	require.Nil(t, rpcErr)
	require.Equal(t, forward.AMM.Account, amm.Account)
	require.Equal(t, forward.AMM.LPToken, amm.LPToken)
}

func TestAMMInfoLPBalanceFilter(t *testing.T) {
	f := newFixture(t)
	amm := f.setupXRPUSD()

	alice := mustID(t, aliceAddr)
	lpt := amm.LPTokenBalance.Currency
	f.addAccount(&entry.AccountRoot{Account: alice, Balance: 10_000_000})
	f.addLine(alice, amm.Account, lpt, ledger.NewIssuedAmount(25, 0, lpt, amm.Account), 0)

	result, rpcErr := handle(t, f.handler(), xrpUSDParams(fmt.Sprintf(`"account":"%s"`, aliceAddr)))
	require.Nil(t, rpcErr)
	require.Equal(t, "25", result.AMM.LPToken.Value())

	// Without the filter the total supply is reported.
	result, rpcErr = handle(t, f.handler(), xrpUSDParams(""))
	require.Nil(t, rpcErr)
	require.Equal(t, "1000", result.AMM.LPToken.Value())
}

func TestAMMInfoLPBalanceZeroWithoutLine(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	bob := mustID(t, bobAddr)
	f.addAccount(&entry.AccountRoot{Account: bob, Balance: 10_000_000})

	result, rpcErr := handle(t, f.handler(), xrpUSDParams(fmt.Sprintf(`"account":"%s"`, bobAddr)))
	require.Nil(t, rpcErr)
	require.Equal(t, "0", result.AMM.LPToken.Value())
}

func TestAMMInfoHolderAccountMissing(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	_, rpcErr := handle(t, f.handler(), xrpUSDParams(fmt.Sprintf(`"account":"%s"`, bobAddr)))
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeActNotFound, rpcErr.Code)
}

func TestAMMInfoGlobalFreeze(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	gateway := mustID(t, gatewayAddr)
	f.addAccount(&entry.AccountRoot{
		Account: gateway,
		Balance: 50_000_000,
		Flags:   entry.LsfGlobalFreeze,
	})

	result, rpcErr := handle(t, f.handler(), xrpUSDParams(""))
	require.Nil(t, rpcErr)

	require.NotNil(t, result.AMM.Asset2Frozen)
	require.True(t, *result.AMM.Asset2Frozen)

	// Frozen pool holdings read as zero.
	require.Equal(t, "0", result.AMM.Amount2.Value())
	require.Equal(t, "300000000", result.AMM.Amount.Value())
}

func TestAMMInfoLineFreeze(t *testing.T) {
	f := newFixture(t)
	amm := f.setupXRPUSD()

	gateway := mustID(t, gatewayAddr)
	usd := mustCur(t, "USD")

	// Freeze flag set on the issuer's side of the AMM's trust line.
	flag := entry.LsfLowFreeze
	if bytes.Compare(gateway[:], amm.Account[:]) > 0 {
		flag = entry.LsfHighFreeze
	}
	f.addLine(amm.Account, gateway, usd, ledger.NewIssuedAmount(250, 0, usd, gateway), flag)

	result, rpcErr := handle(t, f.handler(), xrpUSDParams(""))
	require.Nil(t, rpcErr)
	require.NotNil(t, result.AMM.Asset2Frozen)
	require.True(t, *result.AMM.Asset2Frozen)
}

func TestAMMInfoByAMMAccount(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	result, rpcErr := handle(t, f.handler(), fmt.Sprintf(`{"amm_account":"%s"}`, ammAddr))
	require.Nil(t, rpcErr)
	require.Equal(t, ammAddr, result.AMM.Account)
	require.Equal(t, "300000000", result.AMM.Amount.Value())
}

func TestAMMInfoByNonAMMAccount(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	// The gateway exists but is not an AMM pseudo-account.
	_, rpcErr := handle(t, f.handler(), fmt.Sprintf(`{"amm_account":"%s"}`, gatewayAddr))
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeActNotFound, rpcErr.Code)
}

func TestAMMInfoUnknownPair(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	params := fmt.Sprintf(`{"asset":{"currency":"XRP"},"asset2":{"currency":"EUR","issuer":"%s"}}`, gatewayAddr)
	_, rpcErr := handle(t, f.handler(), params)
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeActNotFound, rpcErr.Code)
}

func TestAMMInfoParamValidation(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()
	h := f.handler()

	testcases := []struct {
		name   string
		params string
	}{
		{name: "no selector", params: `{}`},
		{name: "both selectors", params: fmt.Sprintf(`{"amm_account":"%s","asset":{"currency":"XRP"},"asset2":{"currency":"USD","issuer":"%s"}}`, ammAddr, gatewayAddr)},
		{name: "missing asset2", params: `{"asset":{"currency":"XRP"}}`},
		{name: "xrp with issuer", params: fmt.Sprintf(`{"asset":{"currency":"XRP","issuer":"%s"},"asset2":{"currency":"USD","issuer":"%s"}}`, gatewayAddr, gatewayAddr)},
		{name: "issued without issuer", params: `{"asset":{"currency":"XRP"},"asset2":{"currency":"USD"}}`},
		{name: "bad currency", params: `{"asset":{"currency":"TOOLONG"},"asset2":{"currency":"XRP"}}`},
		{name: "bad issuer", params: `{"asset":{"currency":"XRP"},"asset2":{"currency":"USD","issuer":"nonsense"}}`},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, rpcErr := handle(t, h, tc.params)
			require.NotNil(t, rpcErr)
			require.Equal(t, rpc.CodeInvalidParams, rpcErr.Code)
		})
	}
}

func TestAMMInfoMalformedHolder(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	_, rpcErr := handle(t, f.handler(), xrpUSDParams(`"account":"nonsense"`))
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeActMalformed, rpcErr.Code)
}

func TestAMMInfoLedgerSelection(t *testing.T) {
	f := newFixture(t)
	f.setupXRPUSD()

	// Pinned to an explicit sequence inside the range.
	result, rpcErr := handle(t, f.handler(), xrpUSDParams(`"ledger_index":30`))
	require.Nil(t, rpcErr)
	require.Equal(t, uint32(30), result.LedgerIndex)

	// Outside the stored range.
	_, rpcErr = handle(t, f.handler(), xrpUSDParams(`"ledger_index":999`))
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeLgrNotFound, rpcErr.Code)

	// By hash.
	hash := fmt.Sprintf("%X", f.headers[30].Hash[:])
	result, rpcErr = handle(t, f.handler(), xrpUSDParams(`"ledger_hash":"`+hash+`"`))
	require.Nil(t, rpcErr)
	require.Equal(t, uint32(30), result.LedgerIndex)
}

func TestAMMInfoEmptyStore(t *testing.T) {
	f := newFixture(t)

	_, rpcErr := handle(t, f.handler(), xrpUSDParams(""))
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeNotReady, rpcErr.Code)
}

func TestAMMInfoValidatesBeforeBackendReads(t *testing.T) {
	// Malformed input must be reported as such even when the store is
	// empty and snapshot resolution would fail first.
	f := newFixture(t)
	h := f.handler()

	_, rpcErr := handle(t, h, `{"asset":{"currency":"TOOLONG"},"asset2":{"currency":"XRP"}}`)
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeInvalidParams, rpcErr.Code)

	_, rpcErr = handle(t, h, xrpUSDParams(`"account":"nonsense"`))
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeActMalformed, rpcErr.Code)

	_, rpcErr = handle(t, h, `{"amm_account":"nonsense"}`)
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeActMalformed, rpcErr.Code)
}

func TestAMMInfoAuctionSlotOmitsEmptyAuthAccounts(t *testing.T) {
	f := newFixture(t)
	amm := f.setupXRPUSD()

	amm.AuctionSlot.AuthAccounts = nil
	f.addAMM(amm)

	result, rpcErr := handle(t, f.handler(), xrpUSDParams(""))
	require.Nil(t, rpcErr)
	require.NotNil(t, result.AMM.AuctionSlot)
	require.Nil(t, result.AMM.AuctionSlot.AuthAccounts)

	raw, err := json.Marshal(result.AMM.AuctionSlot)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "auth_accounts")
}

func TestAMMInfoCorruptEntry(t *testing.T) {
	f := newFixture(t)
	amm := f.setupXRPUSD()

	key := keylet.AMM(amm.Asset, amm.Asset2).Key
	f.objects[key] = []byte{0xDE, 0xAD}

	_, rpcErr := handle(t, f.handler(), xrpUSDParams(""))
	require.NotNil(t, rpcErr)
	require.Equal(t, rpc.CodeDBDeserialization, rpcErr.Code)
}
