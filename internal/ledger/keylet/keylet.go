// Package keylet derives the deterministic storage keys of ledger state
// entries from their defining attributes.
package keylet

import (
	"bytes"
	"encoding/binary"

	crypto "github.com/LeJamon/goclio/internal/crypto/common"
	"github.com/LeJamon/goclio/internal/ledger"
	"github.com/LeJamon/goclio/internal/ledger/entry"
)

// Space identifiers for keylet generation.
// These correspond to the LedgerNameSpace enum in rippled.
const (
	spaceAccount   uint16 = 'a' // Account root
	spaceRippleDir uint16 = 'r' // Trust line
	spaceAMM       uint16 = 'A' // AMM
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

// Account returns the keylet for an account root entry.
func Account(accountID ledger.AccountID) Keylet {
	return Keylet{
		Type: entry.TypeAccountRoot,
		Key:  indexHash(spaceAccount, accountID[:]),
	}
}

// Line returns the keylet for a trust line between two accounts.
// Accounts are sorted, so the key is symmetric in its arguments.
func Line(account1, account2 ledger.AccountID, currency ledger.Currency) Keylet {
	low, high := account1, account2
	if bytes.Compare(high[:], low[:]) < 0 {
		low, high = high, low
	}

	return Keylet{
		Type: entry.TypeRippleState,
		Key:  indexHash(spaceRippleDir, low[:], high[:], currency[:]),
	}
}

// AMM returns the keylet for the AMM instrument trading the given asset
// pair. The issues are sorted first, so swapping the arguments yields
// the identical key.
func AMM(issue1, issue2 ledger.Issue) Keylet {
	minIssue, maxIssue := issue1, issue2
	if maxIssue.Less(minIssue) {
		minIssue, maxIssue = maxIssue, minIssue
	}

	return Keylet{
		Type: entry.TypeAMM,
		Key: indexHash(spaceAMM,
			minIssue.Issuer[:], minIssue.Currency[:],
			maxIssue.Issuer[:], maxIssue.Currency[:]),
	}
}
