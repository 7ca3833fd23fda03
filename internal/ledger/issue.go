// Package ledger holds the value types shared by the read path: asset
// identities, amounts and ledger headers. Everything here is immutable
// after construction and free of backend access.
package ledger

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
)

// Currency is the 160-bit currency code used by the ledger. Standard
// 3-character codes occupy bytes 12-14; the all-zero value is XRP.
type Currency [20]byte

// AccountID is a 160-bit account identifier.
type AccountID [20]byte

var zeroAccount AccountID

// Issue identifies an asset: a currency code plus its issuing account.
// The zero value is the native asset (XRP).
type Issue struct {
	Currency Currency
	Issuer   AccountID
}

// XRPIssue returns the native asset sentinel.
func XRPIssue() Issue {
	return Issue{}
}

// IsXRP reports whether the issue is the native asset.
func (i Issue) IsXRP() bool {
	return i.Currency == Currency{} && i.Issuer == zeroAccount
}

// Less orders issues by currency, then issuer. This is the ordering the
// AMM keylet and the LP token currency derivation rely on.
func (i Issue) Less(other Issue) bool {
	if c := bytes.Compare(i.Currency[:], other.Currency[:]); c != 0 {
		return c < 0
	}
	return bytes.Compare(i.Issuer[:], other.Issuer[:]) < 0
}

// ParseCurrency converts a currency specifier to its 20-byte form.
// Accepts "XRP", a 3-character code, or a 40-character hex string.
func ParseCurrency(code string) (Currency, error) {
	var c Currency

	switch len(code) {
	case 3:
		if code == "XRP" {
			return c, nil
		}
		for i := 0; i < 3; i++ {
			ch := code[i]
			if !isCurrencyChar(ch) {
				return c, fmt.Errorf("invalid currency code %q", code)
			}
		}
		c[12] = code[0]
		c[13] = code[1]
		c[14] = code[2]
		return c, nil
	case 40:
		decoded, err := hex.DecodeString(code)
		if err != nil {
			return c, fmt.Errorf("invalid currency hex %q: %w", code, err)
		}
		copy(c[:], decoded)
		return c, nil
	default:
		return c, fmt.Errorf("invalid currency code %q", code)
	}
}

func isCurrencyChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '?' || ch == '!' || ch == '@' || ch == '#' || ch == '$' ||
		ch == '%' || ch == '^' || ch == '&' || ch == '*' || ch == '<' ||
		ch == '>' || ch == '(' || ch == ')' || ch == '{' || ch == '}' ||
		ch == '[' || ch == ']' || ch == '|':
		return true
	}
	return false
}

// String renders the currency as its 3-character code when standard,
// otherwise as 40 hex characters. The zero currency renders as "XRP".
func (c Currency) String() string {
	if c == (Currency{}) {
		return "XRP"
	}
	standard := true
	for i, b := range c {
		if i >= 12 && i <= 14 {
			continue
		}
		if b != 0 {
			standard = false
			break
		}
	}
	if standard && c[12] != 0 {
		return string([]byte{c[12], c[13], c[14]})
	}
	return fmt.Sprintf("%X", c[:])
}

// DecodeAccountID decodes a classic base58 address into an AccountID.
func DecodeAccountID(address string) (AccountID, error) {
	var id AccountID
	_, raw, err := addresscodec.DecodeClassicAddressToAccountID(address)
	if err != nil {
		return id, fmt.Errorf("invalid account address %q: %w", address, err)
	}
	if len(raw) != len(id) {
		return id, errors.New("decoded account id has wrong length")
	}
	copy(id[:], raw)
	return id, nil
}

// String encodes the account id as a classic base58 address.
func (a AccountID) String() string {
	address, err := addresscodec.EncodeAccountIDToClassicAddress(a[:])
	if err != nil {
		// 20-byte inputs always encode; keep the hex form as a fallback
		// so a bad id is still identifiable in logs.
		return fmt.Sprintf("%X", a[:])
	}
	return address
}

// IsZero reports whether the account id is the zero account.
func (a AccountID) IsZero() bool {
	return a == zeroAccount
}
