package entry

import (
	"encoding/binary"

	"github.com/LeJamon/goclio/internal/ledger"
)

// VoteSlot is a single fee vote on an AMM. Stored order is preserved.
type VoteSlot struct {
	Account    ledger.AccountID
	TradingFee uint16 // basis points, 1 = 0.001%
	VoteWeight uint32
}

// AuctionSlot holds the state of an AMM's discounted-fee auction.
type AuctionSlot struct {
	Account       ledger.AccountID
	Price         ledger.Amount
	DiscountedFee uint16
	Expiration    uint32 // ledger-epoch seconds
	AuthAccounts  []ledger.AccountID
}

// AMM represents an Automated Market Maker ledger entry.
type AMM struct {
	Account        ledger.AccountID // the AMM's pseudo-account
	Asset          ledger.Issue
	Asset2         ledger.Issue
	TradingFee     uint16
	LPTokenBalance ledger.Amount
	OwnerNode      uint64

	// Optional fields
	VoteSlots   []VoteSlot
	AuctionSlot *AuctionSlot
}

const voteSlotSize = 20 + 2 + 4

// Serialize encodes the AMM entry into its binary layout.
func (a *AMM) Serialize() []byte {
	size := 2 + 20 + 40 + 40 + 2 + amountSize(a.LPTokenBalance) + 8 + 1 +
		len(a.VoteSlots)*voteSlotSize + 1
	if a.AuctionSlot != nil {
		size += 20 + amountSize(a.AuctionSlot.Price) + 2 + 4 + 1 +
			len(a.AuctionSlot.AuthAccounts)*20
	}

	data := make([]byte, size)
	putType(data, TypeAMM)
	offset := 2

	copy(data[offset:], a.Account[:])
	offset += 20
	offset += putIssue(data[offset:], a.Asset)
	offset += putIssue(data[offset:], a.Asset2)
	binary.BigEndian.PutUint16(data[offset:], a.TradingFee)
	offset += 2
	offset += putAmount(data[offset:], a.LPTokenBalance)
	binary.BigEndian.PutUint64(data[offset:], a.OwnerNode)
	offset += 8

	data[offset] = byte(len(a.VoteSlots))
	offset++
	for _, slot := range a.VoteSlots {
		copy(data[offset:], slot.Account[:])
		offset += 20
		binary.BigEndian.PutUint16(data[offset:], slot.TradingFee)
		offset += 2
		binary.BigEndian.PutUint32(data[offset:], slot.VoteWeight)
		offset += 4
	}

	if a.AuctionSlot == nil {
		data[offset] = 0
		return data
	}

	data[offset] = 1
	offset++
	copy(data[offset:], a.AuctionSlot.Account[:])
	offset += 20
	offset += putAmount(data[offset:], a.AuctionSlot.Price)
	binary.BigEndian.PutUint16(data[offset:], a.AuctionSlot.DiscountedFee)
	offset += 2
	binary.BigEndian.PutUint32(data[offset:], a.AuctionSlot.Expiration)
	offset += 4
	data[offset] = byte(len(a.AuctionSlot.AuthAccounts))
	offset++
	for _, acct := range a.AuctionSlot.AuthAccounts {
		copy(data[offset:], acct[:])
		offset += 20
	}

	return data
}

// ParseAMM decodes an AMM entry.
func ParseAMM(data []byte) (*AMM, error) {
	rest, err := readType(data, TypeAMM)
	if err != nil {
		return nil, err
	}
	if len(rest) < 20 {
		return nil, corruptf("amm entry has %d bytes", len(data))
	}

	a := &AMM{}
	copy(a.Account[:], rest)
	rest = rest[20:]

	if a.Asset, rest, err = parseIssue(rest); err != nil {
		return nil, err
	}
	if a.Asset2, rest, err = parseIssue(rest); err != nil {
		return nil, err
	}
	if len(rest) < 2 {
		return nil, corruptf("amm entry truncated trading fee")
	}
	a.TradingFee = binary.BigEndian.Uint16(rest)
	rest = rest[2:]

	if a.LPTokenBalance, rest, err = parseAmount(rest); err != nil {
		return nil, err
	}
	if len(rest) < 9 {
		return nil, corruptf("amm entry truncated owner node")
	}
	a.OwnerNode = binary.BigEndian.Uint64(rest)
	rest = rest[8:]

	voteCount := int(rest[0])
	rest = rest[1:]
	if len(rest) < voteCount*voteSlotSize {
		return nil, corruptf("amm entry truncated vote slots")
	}
	for i := 0; i < voteCount; i++ {
		var slot VoteSlot
		copy(slot.Account[:], rest)
		slot.TradingFee = binary.BigEndian.Uint16(rest[20:])
		slot.VoteWeight = binary.BigEndian.Uint32(rest[22:])
		a.VoteSlots = append(a.VoteSlots, slot)
		rest = rest[voteSlotSize:]
	}

	if len(rest) < 1 {
		return nil, corruptf("amm entry truncated auction slot tag")
	}
	switch rest[0] {
	case 0:
		return a, nil
	case 1:
		rest = rest[1:]
	default:
		return nil, corruptf("amm entry bad auction slot tag 0x%02X", rest[0])
	}

	slot := &AuctionSlot{}
	if len(rest) < 20 {
		return nil, corruptf("amm entry truncated auction account")
	}
	copy(slot.Account[:], rest)
	rest = rest[20:]

	if slot.Price, rest, err = parseAmount(rest); err != nil {
		return nil, err
	}
	if len(rest) < 7 {
		return nil, corruptf("amm entry truncated auction slot")
	}
	slot.DiscountedFee = binary.BigEndian.Uint16(rest)
	slot.Expiration = binary.BigEndian.Uint32(rest[2:])
	authCount := int(rest[6])
	rest = rest[7:]

	if len(rest) < authCount*20 {
		return nil, corruptf("amm entry truncated auth accounts")
	}
	for i := 0; i < authCount; i++ {
		var acct ledger.AccountID
		copy(acct[:], rest)
		slot.AuthAccounts = append(slot.AuthAccounts, acct)
		rest = rest[20:]
	}

	a.AuctionSlot = slot
	return a, nil
}
