package entry

import (
	"encoding/binary"

	"github.com/LeJamon/goclio/internal/ledger"
)

// RippleState represents a trust line between two accounts.
//
// Balance is held from the low account's perspective: positive means the
// high account owes the low account. Limit issuers identify the two
// sides (LowLimit.Issuer is the low account).
type RippleState struct {
	Balance   ledger.Amount
	LowLimit  ledger.Amount
	HighLimit ledger.Amount
	Flags     uint32
	LowNode   uint64
	HighNode  uint64
}

// LowAccount returns the low side of the line.
func (rs *RippleState) LowAccount() ledger.AccountID {
	return rs.LowLimit.Issuer
}

// HighAccount returns the high side of the line.
func (rs *RippleState) HighAccount() ledger.AccountID {
	return rs.HighLimit.Issuer
}

// Serialize encodes the trust line into its binary layout.
func (rs *RippleState) Serialize() []byte {
	size := 2 + 4 + amountSize(rs.Balance) + amountSize(rs.LowLimit) +
		amountSize(rs.HighLimit) + 8 + 8

	data := make([]byte, size)
	putType(data, TypeRippleState)
	offset := 2

	binary.BigEndian.PutUint32(data[offset:], rs.Flags)
	offset += 4
	offset += putAmount(data[offset:], rs.Balance)
	offset += putAmount(data[offset:], rs.LowLimit)
	offset += putAmount(data[offset:], rs.HighLimit)
	binary.BigEndian.PutUint64(data[offset:], rs.LowNode)
	offset += 8
	binary.BigEndian.PutUint64(data[offset:], rs.HighNode)

	return data
}

// ParseRippleState decodes a trust line entry.
func ParseRippleState(data []byte) (*RippleState, error) {
	rest, err := readType(data, TypeRippleState)
	if err != nil {
		return nil, err
	}
	if len(rest) < 4 {
		return nil, corruptf("ripple state has %d bytes", len(data))
	}

	rs := &RippleState{}
	rs.Flags = binary.BigEndian.Uint32(rest)
	rest = rest[4:]

	if rs.Balance, rest, err = parseAmount(rest); err != nil {
		return nil, err
	}
	if rs.LowLimit, rest, err = parseAmount(rest); err != nil {
		return nil, err
	}
	if rs.HighLimit, rest, err = parseAmount(rest); err != nil {
		return nil, err
	}
	if len(rest) < 16 {
		return nil, corruptf("ripple state truncated nodes")
	}
	rs.LowNode = binary.BigEndian.Uint64(rest)
	rs.HighNode = binary.BigEndian.Uint64(rest[8:])

	return rs, nil
}
