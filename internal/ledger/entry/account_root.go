package entry

import (
	"encoding/binary"

	"github.com/LeJamon/goclio/internal/ledger"
)

// AccountRoot represents an account in the ledger state.
type AccountRoot struct {
	Account           ledger.AccountID
	Sequence          uint32
	Balance           int64 // drops
	OwnerCount        uint32
	Flags             uint32
	PreviousTxnID     [32]byte
	PreviousTxnLgrSeq uint32

	// AMMID links an AMM pseudo-account to its AMM entry.
	AMMID *[32]byte
}

// accountRootFixedSize is the layout size before the optional AMMID.
const accountRootFixedSize = 2 + 20 + 4 + 8 + 4 + 4 + 32 + 4 + 1

// Serialize encodes the account root into its binary layout.
func (a *AccountRoot) Serialize() []byte {
	size := accountRootFixedSize
	if a.AMMID != nil {
		size += 32
	}

	data := make([]byte, size)
	putType(data, TypeAccountRoot)
	offset := 2

	copy(data[offset:], a.Account[:])
	offset += 20
	binary.BigEndian.PutUint32(data[offset:], a.Sequence)
	offset += 4
	binary.BigEndian.PutUint64(data[offset:], uint64(a.Balance))
	offset += 8
	binary.BigEndian.PutUint32(data[offset:], a.OwnerCount)
	offset += 4
	binary.BigEndian.PutUint32(data[offset:], a.Flags)
	offset += 4
	copy(data[offset:], a.PreviousTxnID[:])
	offset += 32
	binary.BigEndian.PutUint32(data[offset:], a.PreviousTxnLgrSeq)
	offset += 4

	if a.AMMID != nil {
		data[offset] = 1
		offset++
		copy(data[offset:], a.AMMID[:])
	} else {
		data[offset] = 0
	}

	return data
}

// ParseAccountRoot decodes an account root entry.
func ParseAccountRoot(data []byte) (*AccountRoot, error) {
	rest, err := readType(data, TypeAccountRoot)
	if err != nil {
		return nil, err
	}
	if len(rest) < accountRootFixedSize-2 {
		return nil, corruptf("account root has %d bytes", len(data))
	}

	a := &AccountRoot{}
	offset := 0

	copy(a.Account[:], rest[offset:])
	offset += 20
	a.Sequence = binary.BigEndian.Uint32(rest[offset:])
	offset += 4
	a.Balance = int64(binary.BigEndian.Uint64(rest[offset:]))
	offset += 8
	a.OwnerCount = binary.BigEndian.Uint32(rest[offset:])
	offset += 4
	a.Flags = binary.BigEndian.Uint32(rest[offset:])
	offset += 4
	copy(a.PreviousTxnID[:], rest[offset:])
	offset += 32
	a.PreviousTxnLgrSeq = binary.BigEndian.Uint32(rest[offset:])
	offset += 4

	switch rest[offset] {
	case 0:
	case 1:
		offset++
		if len(rest) < offset+32 {
			return nil, corruptf("account root truncated AMMID")
		}
		var ammID [32]byte
		copy(ammID[:], rest[offset:])
		a.AMMID = &ammID
	default:
		return nil, corruptf("account root bad AMMID tag 0x%02X", rest[offset])
	}

	return a, nil
}
