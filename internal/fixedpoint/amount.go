package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Scale is the number of implied fractional digits carried by an Amount.
type Scale uint8

const (
	// Wad is used for token amounts (collateral, debt, balances).
	Wad Scale = 18
	// Ray is used for rates, ratios and prices.
	Ray Scale = 27
	// Rad is the exact product scale of a Wad and a Ray.
	Rad Scale = 45
)

func (s Scale) String() string {
	switch s {
	case Wad:
		return "WAD"
	case Ray:
		return "RAY"
	case Rad:
		return "RAD"
	default:
		return fmt.Sprintf("1e%d", uint8(s))
	}
}

const maxScale = 160

var pow10Table = func() [maxScale + 1]*big.Int {
	var table [maxScale + 1]*big.Int
	ten := big.NewInt(10)
	table[0] = big.NewInt(1)
	for i := 1; i <= maxScale; i++ {
		table[i] = new(big.Int).Mul(table[i-1], ten)
	}
	return table
}()

func pow10(n int) *big.Int {
	if n < 0 || n > maxScale {
		panic(fmt.Sprintf("fixedpoint: exponent %d out of range", n))
	}
	return pow10Table[n]
}

// Amount is a fixed-point decimal: an integer numerator over 10^scale.
// The zero value is zero at scale 0; use Zero to get a typed zero.
// Amount values are immutable.
type Amount struct {
	value *big.Int
	scale Scale
}

// Zero returns zero at the given scale.
func Zero(scale Scale) Amount {
	return Amount{value: new(big.Int), scale: scale}
}

// New wraps a raw scaled integer. The integer is copied.
func New(raw *big.Int, scale Scale) Amount {
	if raw == nil {
		return Zero(scale)
	}
	return Amount{value: new(big.Int).Set(raw), scale: scale}
}

// FromInt returns the whole number n at the given scale.
func FromInt(n int64, scale Scale) Amount {
	v := new(big.Int).Mul(big.NewInt(n), pow10(int(scale)))
	return Amount{value: v, scale: scale}
}

func (a Amount) raw() *big.Int {
	if a.value == nil {
		return new(big.Int)
	}
	return a.value
}

// Raw returns a copy of the scaled integer.
func (a Amount) Raw() *big.Int {
	return new(big.Int).Set(a.raw())
}

func (a Amount) Scale() Scale { return a.scale }

func (a Amount) Sign() int { return a.raw().Sign() }

func (a Amount) IsZero() bool { return a.Sign() == 0 }

func (a Amount) IsNegative() bool { return a.Sign() < 0 }

func mustMatch(op string, a, b Amount) {
	if a.scale != b.scale {
		panic(fmt.Sprintf("fixedpoint: %s with mismatched scales %s and %s", op, a.scale, b.scale))
	}
}

// Add returns a+b. Both operands must share a scale.
func (a Amount) Add(b Amount) Amount {
	mustMatch("add", a, b)
	return Amount{value: new(big.Int).Add(a.raw(), b.raw()), scale: a.scale}
}

// Sub returns a-b. Both operands must share a scale.
func (a Amount) Sub(b Amount) Amount {
	mustMatch("sub", a, b)
	return Amount{value: new(big.Int).Sub(a.raw(), b.raw()), scale: a.scale}
}

func (a Amount) Neg() Amount {
	return Amount{value: new(big.Int).Neg(a.raw()), scale: a.scale}
}

func (a Amount) Abs() Amount {
	return Amount{value: new(big.Int).Abs(a.raw()), scale: a.scale}
}

// Mul returns the exact product at scale a.Scale()+b.Scale().
func (a Amount) Mul(b Amount) Amount {
	scale := int(a.scale) + int(b.scale)
	if scale > maxScale {
		panic(fmt.Sprintf("fixedpoint: product scale %d out of range", scale))
	}
	return Amount{value: new(big.Int).Mul(a.raw(), b.raw()), scale: Scale(scale)}
}

// MulInt multiplies by a plain integer, keeping the scale.
func (a Amount) MulInt(n int64) Amount {
	return Amount{value: new(big.Int).Mul(a.raw(), big.NewInt(n)), scale: a.scale}
}

// DivAt returns a/b expressed at the target scale, truncated toward zero.
// It panics when b is zero.
func (a Amount) DivAt(b Amount, target Scale) Amount {
	num, den := a.divOperands(b, target)
	return Amount{value: num.Quo(num, den), scale: target}
}

// DivAtUp is DivAt rounding away from zero.
func (a Amount) DivAtUp(b Amount, target Scale) Amount {
	num, den := a.divOperands(b, target)
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		if (num.Sign() < 0) == (den.Sign() < 0) {
			q.Add(q, big.NewInt(1))
		} else {
			q.Sub(q, big.NewInt(1))
		}
	}
	return Amount{value: q, scale: target}
}

// Div returns a/b at a's scale, truncated toward zero.
func (a Amount) Div(b Amount) Amount {
	return a.DivAt(b, a.scale)
}

func (a Amount) divOperands(b Amount, target Scale) (*big.Int, *big.Int) {
	if b.IsZero() {
		panic("fixedpoint: division by zero")
	}
	num := new(big.Int).Set(a.raw())
	den := new(big.Int).Set(b.raw())
	shift := int(target) + int(b.scale) - int(a.scale)
	if shift >= 0 {
		num.Mul(num, pow10(shift))
	} else {
		den.Mul(den, pow10(-shift))
	}
	return num, den
}

// Rescale converts to another scale without losing digits. It panics if the
// conversion would drop non-zero digits; use RoundDown or RoundUp for that.
func (a Amount) Rescale(target Scale) Amount {
	if target >= a.scale {
		v := new(big.Int).Mul(a.raw(), pow10(int(target-a.scale)))
		return Amount{value: v, scale: target}
	}
	q, r := new(big.Int).QuoRem(a.raw(), pow10(int(a.scale-target)), new(big.Int))
	if r.Sign() != 0 {
		panic(fmt.Sprintf("fixedpoint: rescale %s to %s drops digits", a, target))
	}
	return Amount{value: q, scale: target}
}

// RoundDown converts to the target scale truncating toward zero.
func (a Amount) RoundDown(target Scale) Amount {
	if target >= a.scale {
		return a.Rescale(target)
	}
	v := new(big.Int).Quo(a.raw(), pow10(int(a.scale-target)))
	return Amount{value: v, scale: target}
}

// RoundUp converts to the target scale rounding away from zero.
func (a Amount) RoundUp(target Scale) Amount {
	if target >= a.scale {
		return a.Rescale(target)
	}
	return a.DivAtUp(FromInt(1, 0), target)
}

// Pow raises a to the n-th power at a's scale, rounding each step half up.
func (a Amount) Pow(n uint64) Amount {
	unit := pow10(int(a.scale))
	half := new(big.Int).Rsh(unit, 1)
	x := new(big.Int).Set(a.raw())
	z := new(big.Int).Set(unit)
	if n%2 == 1 {
		z.Set(x)
	}
	for n /= 2; n > 0; n /= 2 {
		x.Mul(x, x)
		x.Add(x, half)
		x.Quo(x, unit)
		if n%2 == 1 {
			z.Mul(z, x)
			z.Add(z, half)
			z.Quo(z, unit)
		}
	}
	return Amount{value: z, scale: a.scale}
}

// Cmp compares a and b. Both operands must share a scale.
func (a Amount) Cmp(b Amount) int {
	mustMatch("compare", a, b)
	return a.raw().Cmp(b.raw())
}

func (a Amount) Equal(b Amount) bool { return a.Cmp(b) == 0 }

func (a Amount) LessThan(b Amount) bool { return a.Cmp(b) < 0 }

func (a Amount) GreaterThan(b Amount) bool { return a.Cmp(b) > 0 }

// MaxZero clamps negative values to zero.
func (a Amount) MaxZero() Amount {
	if a.IsNegative() {
		return Zero(a.scale)
	}
	return a
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Decimal returns the exact decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.raw(), -int32(a.scale))
}

// String returns the exact value without trailing zeros.
func (a Amount) String() string {
	return a.Decimal().String()
}

// Format renders the value truncated to the given number of fractional digits.
func (a Amount) Format(places int32) string {
	return a.Decimal().Truncate(places).String()
}

// FormatFixed is Format padded to exactly places fractional digits.
func (a Amount) FormatFixed(places int32) string {
	return a.Decimal().Truncate(places).StringFixed(places)
}

// Float64 is for display only; never feed the result back into arithmetic.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// MarshalJSON encodes the exact decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}
