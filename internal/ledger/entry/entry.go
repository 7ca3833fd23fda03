// Package entry decodes the opaque blobs held by the ledger store into
// typed state entries, and encodes them for the ingestion side. Layouts
// are fixed and deterministic; decoding performs no backend access.
package entry

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goclio/internal/ledger"
)

// Type identifies a ledger state entry kind. Codes match rippled's
// LedgerEntryType values.
type Type uint16

const (
	TypeAccountRoot Type = 0x0061
	TypeRippleState Type = 0x0072
	TypeAMM         Type = 0x0079
)

// ErrCorrupt reports a blob whose structure is invalid for the expected
// entry type.
var ErrCorrupt = errors.New("corrupt ledger entry")

func corruptf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// readType consumes and verifies the 2-byte entry type prefix.
func readType(data []byte, want Type) ([]byte, error) {
	if len(data) < 2 {
		return nil, corruptf("missing entry type prefix")
	}
	got := Type(binary.BigEndian.Uint16(data))
	if got != want {
		return nil, corruptf("entry type 0x%04X, want 0x%04X", uint16(got), uint16(want))
	}
	return data[2:], nil
}

func putType(data []byte, t Type) {
	binary.BigEndian.PutUint16(data, uint16(t))
}

// Amount wire form: a 1-byte native flag, then either 8 bytes of drops
// or mantissa(8) exponent(1) currency(20) issuer(20).
const (
	amountNative = 0x00
	amountIssued = 0x01

	nativeAmountSize = 1 + 8
	issuedAmountSize = 1 + 8 + 1 + 20 + 20
)

func amountSize(a ledger.Amount) int {
	if a.IsNative() {
		return nativeAmountSize
	}
	return issuedAmountSize
}

func putAmount(data []byte, a ledger.Amount) int {
	if a.IsNative() {
		data[0] = amountNative
		binary.BigEndian.PutUint64(data[1:], uint64(a.Drops()))
		return nativeAmountSize
	}

	data[0] = amountIssued
	binary.BigEndian.PutUint64(data[1:], uint64(a.IOU().Mantissa()))
	data[9] = byte(int8(a.IOU().Exponent()))
	copy(data[10:30], a.Currency[:])
	copy(data[30:50], a.Issuer[:])
	return issuedAmountSize
}

func parseAmount(data []byte) (ledger.Amount, []byte, error) {
	if len(data) < 1 {
		return ledger.Amount{}, nil, corruptf("truncated amount")
	}

	switch data[0] {
	case amountNative:
		if len(data) < nativeAmountSize {
			return ledger.Amount{}, nil, corruptf("truncated native amount")
		}
		drops := int64(binary.BigEndian.Uint64(data[1:9]))
		return ledger.NewXRPAmount(drops), data[nativeAmountSize:], nil

	case amountIssued:
		if len(data) < issuedAmountSize {
			return ledger.Amount{}, nil, corruptf("truncated issued amount")
		}
		mantissa := int64(binary.BigEndian.Uint64(data[1:9]))
		exponent := int(int8(data[9]))
		var currency ledger.Currency
		var issuer ledger.AccountID
		copy(currency[:], data[10:30])
		copy(issuer[:], data[30:50])
		return ledger.NewIssuedAmount(mantissa, exponent, currency, issuer), data[issuedAmountSize:], nil

	default:
		return ledger.Amount{}, nil, corruptf("unknown amount tag 0x%02X", data[0])
	}
}

func putIssue(data []byte, issue ledger.Issue) int {
	copy(data[0:20], issue.Currency[:])
	copy(data[20:40], issue.Issuer[:])
	return 40
}

func parseIssue(data []byte) (ledger.Issue, []byte, error) {
	if len(data) < 40 {
		return ledger.Issue{}, nil, corruptf("truncated issue")
	}
	var issue ledger.Issue
	copy(issue.Currency[:], data[0:20])
	copy(issue.Issuer[:], data[20:40])
	return issue, data[40:], nil
}
