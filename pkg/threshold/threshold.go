package threshold

import (
	"fmt"
	"strings"

	"github.com/freelanceos/freelanceos/internal/config"
	"github.com/shopspring/decimal"
)

type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

type AlertKind string

const (
	AlertUpperCapExceeded    AlertKind = "upper_cap_exceeded"
	AlertLowerCapExceeded    AlertKind = "lower_cap_exceeded"
	AlertApproachingUpperCap AlertKind = "approaching_upper_cap"
)

// approachingPercent is where the band just under the upper cap starts.
var approachingPercent = decimal.NewFromInt(90)

var hundred = decimal.NewFromInt(100)

// Caps are the regulatory figures revenue is checked against.
// ContributionRate is a percent.
type Caps struct {
	Lower            decimal.Decimal
	Upper            decimal.Decimal
	ContributionRate decimal.Decimal
}

// CapsFromConfig parses the configured decimal strings. Caps must be positive
// and the lower cap may not exceed the upper one.
func CapsFromConfig(cfg config.Billing) (Caps, error) {
	var caps Caps
	for _, field := range []struct {
		key    string
		value  string
		target *decimal.Decimal
	}{
		{"billing.lowercap", cfg.LowerCap, &caps.Lower},
		{"billing.uppercap", cfg.UpperCap, &caps.Upper},
		{"billing.contributionrate", cfg.ContributionRate, &caps.ContributionRate},
	} {
		parsed, err := decimal.NewFromString(strings.TrimSpace(field.value))
		if err != nil {
			return Caps{}, fmt.Errorf("invalid %s %q: %w", field.key, field.value, err)
		}
		*field.target = parsed
	}
	if !caps.Lower.IsPositive() || !caps.Upper.IsPositive() || caps.Lower.GreaterThan(caps.Upper) {
		return Caps{}, fmt.Errorf("invalid billing caps: lower %s, upper %s", caps.Lower, caps.Upper)
	}
	if caps.ContributionRate.IsNegative() {
		return Caps{}, fmt.Errorf("invalid billing.contributionrate %s", caps.ContributionRate)
	}
	return caps, nil
}

type Snapshot struct {
	AnnualRevenue decimal.Decimal
	Caps
}

type Alert struct {
	Severity Severity
	Kind     AlertKind
}

type Evaluation struct {
	ContributionAmount decimal.Decimal
	PercentOfUpperCap  decimal.Decimal
	// RemainingToLowerCap and RemainingToUpperCap are the headroom left, never negative.
	RemainingToLowerCap decimal.Decimal
	RemainingToUpperCap decimal.Decimal
	ExceedsLowerCap     bool
	ExceedsUpperCap     bool
	ApproachingUpperCap bool
	// Alert is the single most severe alert, nil when nothing applies.
	Alert *Alert
}

// Evaluate reports where the revenue stands against the caps. It only reads the snapshot.
func Evaluate(snapshot Snapshot) Evaluation {
	revenue := snapshot.AnnualRevenue

	percentOfUpper := decimal.Zero
	if snapshot.Upper.IsPositive() {
		percentOfUpper = revenue.Div(snapshot.Upper).Mul(hundred)
	}

	evaluation := Evaluation{
		ContributionAmount:  revenue.Mul(snapshot.ContributionRate).Div(hundred).Round(2),
		PercentOfUpperCap:   percentOfUpper.Round(2),
		RemainingToLowerCap: decimal.Max(decimal.Zero, snapshot.Lower.Sub(revenue)),
		RemainingToUpperCap: decimal.Max(decimal.Zero, snapshot.Upper.Sub(revenue)),
		ExceedsLowerCap:     revenue.GreaterThan(snapshot.Lower),
		ExceedsUpperCap:     revenue.GreaterThan(snapshot.Upper),
	}
	evaluation.ApproachingUpperCap = percentOfUpper.GreaterThanOrEqual(approachingPercent) && !evaluation.ExceedsUpperCap

	switch {
	case evaluation.ExceedsUpperCap:
		evaluation.Alert = &Alert{Severity: SeverityBlocking, Kind: AlertUpperCapExceeded}
	case evaluation.ExceedsLowerCap:
		evaluation.Alert = &Alert{Severity: SeverityWarning, Kind: AlertLowerCapExceeded}
	case evaluation.ApproachingUpperCap:
		evaluation.Alert = &Alert{Severity: SeverityWarning, Kind: AlertApproachingUpperCap}
	}
	return evaluation
}
