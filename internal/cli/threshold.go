package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/freelanceos/freelanceos/pkg/threshold"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	thresholdRevenue string
	thresholdLower   string
	thresholdUpper   string
	thresholdRate    string
	thresholdJSON    bool
)

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Evaluate a yearly revenue against the regulatory caps",
	Long: `Evaluate a yearly revenue against the regulatory caps without touching the database.

Caps and contribution rate come from the configuration unless overridden.

Examples:
  freelanceos threshold --revenue 70000
  freelanceos threshold --revenue 52000 --upper 60000 --json`,
	RunE: runThresholdCmd,
}

func runThresholdCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	revenue, err := decimal.NewFromString(thresholdRevenue)
	if err != nil {
		return fmt.Errorf("invalid --revenue %q: %w", thresholdRevenue, err)
	}

	caps, err := threshold.CapsFromConfig(cfg.Billing)
	if err != nil {
		return err
	}
	for _, override := range []struct {
		flag   string
		value  string
		target *decimal.Decimal
	}{
		{"lower", thresholdLower, &caps.Lower},
		{"upper", thresholdUpper, &caps.Upper},
		{"rate", thresholdRate, &caps.ContributionRate},
	} {
		if override.value == "" {
			continue
		}
		parsed, err := decimal.NewFromString(override.value)
		if err != nil {
			return fmt.Errorf("invalid --%s %q: %w", override.flag, override.value, err)
		}
		*override.target = parsed
	}

	report := threshold.Report{Snapshot: threshold.Snapshot{AnnualRevenue: revenue, Caps: caps}}
	report.Evaluation = threshold.Evaluate(report.Snapshot)

	if thresholdJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(threshold.ReportToDTO(report))
	}
	return printReport(cmd.OutOrStdout(), report)
}

func printReport(out io.Writer, report threshold.Report) error {
	alert := "none"
	if report.Alert != nil {
		alert = fmt.Sprintf("%s (%s)", report.Alert.Severity, report.Alert.Kind)
	}
	_, err := fmt.Fprintf(out,
		"Revenue:           %s\n"+
			"Contribution:      %s\n"+
			"Of upper cap:      %s%%\n"+
			"Left to lower cap: %s\n"+
			"Left to upper cap: %s\n"+
			"Alert:             %s\n",
		report.Snapshot.AnnualRevenue.StringFixed(2),
		report.ContributionAmount.StringFixed(2),
		report.PercentOfUpperCap.StringFixed(2),
		report.RemainingToLowerCap.StringFixed(2),
		report.RemainingToUpperCap.StringFixed(2),
		alert,
	)
	return err
}

func init() {
	thresholdCmd.Flags().StringVar(&thresholdRevenue, "revenue", "", "Yearly revenue to evaluate")
	thresholdCmd.Flags().StringVar(&thresholdLower, "lower", "", "Lower cap, overrides billing.lowercap")
	thresholdCmd.Flags().StringVar(&thresholdUpper, "upper", "", "Upper cap, overrides billing.uppercap")
	thresholdCmd.Flags().StringVar(&thresholdRate, "rate", "", "Contribution rate in percent, overrides billing.contributionrate")
	thresholdCmd.Flags().BoolVar(&thresholdJSON, "json", false, "Output in JSON format")
	_ = thresholdCmd.MarkFlagRequired("revenue")
	RootCmd.AddCommand(thresholdCmd)
}
