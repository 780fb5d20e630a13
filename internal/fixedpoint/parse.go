package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// ErrParse is the sentinel wrapped by every ParseError.
var ErrParse = errors.New("fixedpoint: parse error")

// ParseError reports an input that cannot be represented as an Amount.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fixedpoint: cannot parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Parse reads a non-negative decimal string at the given scale.
func Parse(input string, scale Scale) (Amount, error) {
	a, err := ParseSigned(input, scale)
	if err != nil {
		return Amount{}, err
	}
	if a.IsNegative() {
		return Amount{}, &ParseError{Input: input, Reason: "negative value"}
	}
	return a, nil
}

// ParseSigned reads a decimal string that may be negative. Inputs with more
// fractional digits than the scale carries are rejected, not truncated.
func ParseSigned(input string, scale Scale) (Amount, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Amount{}, &ParseError{Input: input, Reason: "empty value"}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, &ParseError{Input: input, Reason: "not a number"}
	}
	return FromDecimal(d, scale)
}

// MustParse is Parse for constants and fixtures; it panics on bad input.
func MustParse(input string, scale Scale) Amount {
	a, err := ParseSigned(input, scale)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal converts a decimal, rejecting values that need more digits than
// the scale carries.
func FromDecimal(d decimal.Decimal, scale Scale) (Amount, error) {
	if !d.Truncate(int32(scale)).Equal(d) {
		return Amount{}, &ParseError{
			Input:  d.String(),
			Reason: fmt.Sprintf("more than %d fractional digits", uint8(scale)),
		}
	}
	return Amount{value: d.Shift(int32(scale)).BigInt(), scale: scale}, nil
}

// FromBig wraps a raw on-chain integer, which must be a valid uint256.
func FromBig(raw *big.Int, scale Scale) (Amount, error) {
	if raw == nil {
		return Zero(scale), nil
	}
	if raw.Sign() < 0 {
		return Amount{}, &ParseError{Input: raw.String(), Reason: "negative value"}
	}
	if _, overflow := uint256.FromBig(raw); overflow {
		return Amount{}, &ParseError{Input: raw.String(), Reason: "exceeds uint256"}
	}
	return New(raw, scale), nil
}
