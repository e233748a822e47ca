// Package fixdates migrates stored receipt dates to UTC timestamps
package fixdates

import (
	"fmt"

	"fjacquet/receipt-bot/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the fix-dates command
var Cmd = &cobra.Command{
	Use:   "fix-dates",
	Short: "Rewrite stored receipt dates as UTC timestamps",
	Long: `Rewrite every receipts-YYYY-MM-DD.json file so that each receipt date is a
UTC timestamp. Dates written without a timezone are read in the configured
timezone. Receipts filed under the wrong day are moved to the right file.

Run it once after upgrading from data written by older versions.

Example:
  receipt-bot fix-dates --data-dir ./data --timezone America/Chicago`,
	Args: cobra.NoArgs,
	RunE: fixDatesFunc,
}

func fixDatesFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	res, err := c.GetReceiptStore().FixDates()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fixed %d receipt(s) in %d file(s), moved %d\n", res.Receipts, res.Files, res.Moved)
	for _, day := range res.Skipped {
		fmt.Fprintf(out, "Skipped unreadable file for %s\n", day)
	}
	return nil
}
