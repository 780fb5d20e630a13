package summary

import (
	"vaultRisk/internal/fixedpoint"
	"vaultRisk/internal/model"
	"vaultRisk/internal/risk"
)

// Options control display rounding. Zero values fall back to defaults.
type Options struct {
	AmountDecimals int32
	PriceDecimals  int32
	RatioDecimals  int32
}

// DefaultOptions are used for zero-valued Options fields.
var DefaultOptions = Options{AmountDecimals: 4, PriceDecimals: 2, RatioDecimals: 2}

func (o Options) withDefaults() Options {
	if o.AmountDecimals <= 0 {
		o.AmountDecimals = DefaultOptions.AmountDecimals
	}
	if o.PriceDecimals <= 0 {
		o.PriceDecimals = DefaultOptions.PriceDecimals
	}
	if o.RatioDecimals <= 0 {
		o.RatioDecimals = DefaultOptions.RatioDecimals
	}
	return o
}

// Value is a raw amount with its presentation string.
type Value struct {
	Raw      fixedpoint.Amount `json:"raw"`
	Display  string            `json:"display"`
	Infinite bool              `json:"infinite,omitempty"`
}

// Pair is a before/after view of one figure. A nil side is not shown.
type Pair struct {
	Current *Value `json:"current,omitempty"`
	After   *Value `json:"after,omitempty"`
}

// Summary is the overview panel content.
type Summary struct {
	Collateral       Pair `json:"collateral"`
	Debt             Pair `json:"debt"`
	CollateralRatio  Pair `json:"collateral_ratio"`
	LiquidationPrice Pair `json:"liquidation_price"`
	StabilityFee     Pair `json:"stability_fee"`
	// MaxWithdrawable is the collateral that can leave the vault while it
	// stays at the safety c-ratio. It is not the form limit in
	// position.Collateral.AvailableToWithdraw.
	MaxWithdrawable Pair `json:"max_withdrawable"`
}

// Build formats current and projected metrics. Either may be nil: current
// for a position that does not exist yet, after when there is no preview.
// Nothing here feeds back into the risk figures.
func Build(current, after *risk.Metrics, params model.CollateralTypeRiskParams, opts Options) Summary {
	opts = opts.withDefaults()
	f := formatter{opts: opts, params: params}

	var s Summary
	if current != nil {
		f.fill(&s, current, func(p *Pair, v *Value) { p.Current = v })
	}
	if after != nil {
		f.fill(&s, after, func(p *Pair, v *Value) { p.After = v })
	}
	return s
}

type formatter struct {
	opts   Options
	params model.CollateralTypeRiskParams
}

func (f formatter) fill(s *Summary, m *risk.Metrics, set func(*Pair, *Value)) {
	set(&s.Collateral, f.amount(m.Collateral))
	set(&s.Debt, f.amount(m.Debt))
	set(&s.CollateralRatio, f.ratio(m.Ratio))
	if m.LiquidationPrice != nil {
		set(&s.LiquidationPrice, f.price(*m.LiquidationPrice))
	}
	set(&s.StabilityFee, f.fee(f.params.TotalAnnualizedStabilityFee))
	set(&s.MaxWithdrawable, f.amount(risk.MaxWithdrawable(m.Collateral, m.Debt, f.params.CurrentPrice.SafetyPrice)))
}

func (f formatter) amount(a fixedpoint.Amount) *Value {
	return &Value{Raw: a, Display: a.Format(f.opts.AmountDecimals)}
}

func (f formatter) price(a fixedpoint.Amount) *Value {
	return &Value{Raw: a, Display: a.FormatFixed(f.opts.PriceDecimals)}
}

func (f formatter) ratio(r risk.Ratio) *Value {
	pct, ok := r.Percent()
	if !ok {
		return &Value{Display: "∞", Infinite: true}
	}
	return &Value{Raw: pct, Display: pct.Format(f.opts.RatioDecimals) + "%"}
}

// fee renders a yearly multiplier (RAY) as a percentage, 1.05 -> "5%".
func (f formatter) fee(multiplier fixedpoint.Amount) *Value {
	if multiplier.Scale() != fixedpoint.Ray {
		return &Value{Raw: multiplier, Display: "-"}
	}
	pct := multiplier.Sub(fixedpoint.FromInt(1, fixedpoint.Ray)).MulInt(100)
	return &Value{Raw: pct, Display: pct.Format(f.opts.RatioDecimals) + "%"}
}
