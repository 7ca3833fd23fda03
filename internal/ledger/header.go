package ledger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// rippleEpochOffset is the unix time of the ledger epoch (2000-01-01).
const rippleEpochOffset int64 = 946684800

// RippleTime converts ledger-epoch seconds to wall-clock time.
func RippleTime(secs uint32) time.Time {
	return time.Unix(rippleEpochOffset+int64(secs), 0).UTC()
}

// headerSize is the fixed serialized size of a Header.
const headerSize = 4 + 32 + 32 + 32 + 32 + 8 + 4 + 4 + 1 + 1

// Header is an immutable snapshot identifier: one validated version of
// global ledger state. Its Sequence pins every read of a request.
type Header struct {
	Sequence            uint32
	Hash                [32]byte
	ParentHash          [32]byte
	TxHash              [32]byte
	AccountHash         [32]byte
	TotalCoins          uint64
	CloseTime           uint32 // ledger-epoch seconds
	ParentCloseTime     uint32 // ledger-epoch seconds
	CloseTimeResolution uint8
	CloseFlags          uint8
}

// Serialize encodes the header into its fixed binary layout.
func (h *Header) Serialize() []byte {
	data := make([]byte, headerSize)
	offset := 0

	binary.BigEndian.PutUint32(data[offset:], h.Sequence)
	offset += 4
	copy(data[offset:], h.Hash[:])
	offset += 32
	copy(data[offset:], h.ParentHash[:])
	offset += 32
	copy(data[offset:], h.TxHash[:])
	offset += 32
	copy(data[offset:], h.AccountHash[:])
	offset += 32
	binary.BigEndian.PutUint64(data[offset:], h.TotalCoins)
	offset += 8
	binary.BigEndian.PutUint32(data[offset:], h.CloseTime)
	offset += 4
	binary.BigEndian.PutUint32(data[offset:], h.ParentCloseTime)
	offset += 4
	data[offset] = h.CloseTimeResolution
	offset++
	data[offset] = h.CloseFlags

	return data
}

// DeserializeHeader decodes a header from its fixed binary layout.
func DeserializeHeader(data []byte) (*Header, error) {
	if len(data) != headerSize {
		return nil, fmt.Errorf("ledger header has %d bytes, want %d", len(data), headerSize)
	}

	h := &Header{}
	offset := 0

	h.Sequence = binary.BigEndian.Uint32(data[offset:])
	offset += 4
	copy(h.Hash[:], data[offset:])
	offset += 32
	copy(h.ParentHash[:], data[offset:])
	offset += 32
	copy(h.TxHash[:], data[offset:])
	offset += 32
	copy(h.AccountHash[:], data[offset:])
	offset += 32
	h.TotalCoins = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	h.CloseTime = binary.BigEndian.Uint32(data[offset:])
	offset += 4
	h.ParentCloseTime = binary.BigEndian.Uint32(data[offset:])
	offset += 4
	h.CloseTimeResolution = data[offset]
	offset++
	h.CloseFlags = data[offset]

	return h, nil
}
