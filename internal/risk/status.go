package risk

import (
	"fmt"

	"vaultRisk/internal/fixedpoint"
)

// Status is a risk band. Higher values are safer.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusUnsafe
	StatusSafe
	StatusUltraSafe
)

var statusNames = [...]string{
	StatusUnknown:   "unknown",
	StatusUnsafe:    "unsafe",
	StatusSafe:      "safe",
	StatusUltraSafe: "ultra-safe",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ultraSafeMultiplier is applied to the safety threshold to get the upper band.
var ultraSafeMultiplier = fixedpoint.MustParse("1.5", fixedpoint.Wad)

// Classify maps a ratio to a band relative to the safety c-ratio (RAY):
//
//	ratio <= 0                     unknown
//	ratio <  safety                unsafe
//	ratio <  safety × 1.5          safe
//	otherwise (and infinity)       ultra-safe
func Classify(r Ratio, safetyCRatio fixedpoint.Amount) Status {
	if r.infinite {
		return StatusUltraSafe
	}
	if r.percent.Sign() <= 0 {
		return StatusUnknown
	}
	safety := ThresholdPercent(safetyCRatio)
	ultra := safety.Mul(ultraSafeMultiplier).RoundDown(fixedpoint.Wad)
	switch {
	case r.percent.LessThan(safety):
		return StatusUnsafe
	case r.percent.LessThan(ultra):
		return StatusSafe
	default:
		return StatusUltraSafe
	}
}
