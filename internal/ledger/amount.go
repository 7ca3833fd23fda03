package ledger

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Constants matching rippled's STAmount.h
const (
	// Exponent range for normalized IOU amounts
	MinExponent = -96
	MaxExponent = 80

	// Mantissa range for normalized IOU amounts [10^15, 10^16 - 1]
	MinMantissa int64 = 1_000_000_000_000_000
	MaxMantissa int64 = 9_999_999_999_999_999

	// Zero exponent value used for IOU zero amounts
	zeroExponent = -100
)

// XRPAmount represents XRP in drops. Signed so debt math works.
type XRPAmount struct {
	drops int64
}

// Drops returns the amount in drops.
func (x XRPAmount) Drops() int64 {
	return x.drops
}

// String returns the drops value as a decimal string, which is how
// native amounts appear on the wire.
func (x XRPAmount) String() string {
	return strconv.FormatInt(x.drops, 10)
}

// IOUValue is a normalized mantissa/exponent pair for issued amounts.
type IOUValue struct {
	mantissa int64
	exponent int
}

// NewIOUValue creates a normalized issued-amount value.
func NewIOUValue(mantissa int64, exponent int) IOUValue {
	v := IOUValue{mantissa: mantissa, exponent: exponent}
	v.normalize()
	return v
}

func (v *IOUValue) normalize() {
	if v.mantissa == 0 {
		v.exponent = zeroExponent
		return
	}

	negative := v.mantissa < 0
	m := v.mantissa
	if negative {
		m = -m
	}

	for m < MinMantissa && v.exponent > MinExponent {
		m *= 10
		v.exponent--
	}
	for m > MaxMantissa {
		m /= 10
		v.exponent++
	}

	if v.exponent < MinExponent || m < MinMantissa {
		// Underflow rounds to zero, as in rippled.
		v.mantissa = 0
		v.exponent = zeroExponent
		return
	}
	if v.exponent > MaxExponent {
		// Overflow clamps; callers never produce values this large from
		// stored ledger state.
		v.exponent = MaxExponent
	}

	if negative {
		m = -m
	}
	v.mantissa = m
}

// Mantissa returns the normalized mantissa.
func (v IOUValue) Mantissa() int64 { return v.mantissa }

// Exponent returns the normalized exponent.
func (v IOUValue) Exponent() int { return v.exponent }

// IsZero reports whether the value is zero.
func (v IOUValue) IsZero() bool { return v.mantissa == 0 }

// Negate returns the negated value.
func (v IOUValue) Negate() IOUValue {
	return IOUValue{mantissa: -v.mantissa, exponent: v.exponent}
}

// String renders the value as a decimal string without exponent
// notation, trailing zeros trimmed.
func (v IOUValue) String() string {
	if v.mantissa == 0 {
		return "0"
	}

	negative := v.mantissa < 0
	mantissa := v.mantissa
	if negative {
		mantissa = -mantissa
	}

	mantissaStr := strconv.FormatInt(mantissa, 10)
	mantissaLen := len(mantissaStr)
	decimalPos := mantissaLen + v.exponent

	var result string
	switch {
	case decimalPos <= 0:
		result = "0." + strings.Repeat("0", -decimalPos) + mantissaStr
	case decimalPos >= mantissaLen:
		if v.exponent >= 0 {
			result = mantissaStr + strings.Repeat("0", v.exponent)
		} else {
			result = mantissaStr
		}
	default:
		result = mantissaStr[:decimalPos] + "." + mantissaStr[decimalPos:]
	}

	if strings.Contains(result, ".") {
		result = strings.TrimRight(result, "0")
		result = strings.TrimRight(result, ".")
	}

	if negative {
		result = "-" + result
	}
	return result
}

// Amount is a value tagged with its asset identity: either XRP in drops
// or an issued amount carrying currency and issuer.
type Amount struct {
	xrp XRPAmount
	iou IOUValue

	Currency Currency
	Issuer   AccountID

	native bool
}

// NewXRPAmount creates a native amount from drops.
func NewXRPAmount(drops int64) Amount {
	return Amount{
		xrp:    XRPAmount{drops: drops},
		native: true,
	}
}

// NewIssuedAmount creates an issued amount from a mantissa/exponent pair.
func NewIssuedAmount(mantissa int64, exponent int, currency Currency, issuer AccountID) Amount {
	return Amount{
		iou:      NewIOUValue(mantissa, exponent),
		Currency: currency,
		Issuer:   issuer,
		native:   false,
	}
}

// ZeroIssuedAmount creates a zero amount tagged with an asset identity.
func ZeroIssuedAmount(currency Currency, issuer AccountID) Amount {
	return NewIssuedAmount(0, 0, currency, issuer)
}

// IsNative reports whether the amount is XRP.
func (a Amount) IsNative() bool { return a.native }

// Drops returns the drop count of a native amount.
func (a Amount) Drops() int64 {
	if !a.native {
		return 0
	}
	return a.xrp.drops
}

// IOU returns the issued value of a non-native amount.
func (a Amount) IOU() IOUValue { return a.iou }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	if a.native {
		return a.xrp.drops == 0
	}
	return a.iou.IsZero()
}

// Negate returns the negated amount with the same asset identity.
func (a Amount) Negate() Amount {
	if a.native {
		return NewXRPAmount(-a.xrp.drops)
	}
	return Amount{
		iou:      a.iou.Negate(),
		Currency: a.Currency,
		Issuer:   a.Issuer,
		native:   false,
	}
}

// WithIssuer returns the amount re-tagged with another issuer. Balance
// fields on trust lines carry a placeholder issuer; the read path
// re-tags them with the real one.
func (a Amount) WithIssuer(issuer AccountID) Amount {
	if a.native {
		return a
	}
	out := a
	out.Issuer = issuer
	return out
}

// Value returns the decimal string representation of the amount.
func (a Amount) Value() string {
	if a.native {
		return a.xrp.String()
	}
	return a.iou.String()
}

// MarshalJSON renders native amounts as a drops string and issued
// amounts as a {currency, issuer, value} object.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.native {
		return json.Marshal(a.xrp.String())
	}
	return json.Marshal(map[string]string{
		"currency": a.Currency.String(),
		"issuer":   a.Issuer.String(),
		"value":    a.iou.String(),
	})
}
