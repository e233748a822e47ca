// Package recurring manages recurring monthly expenses from the command line
package recurring

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"fjacquet/receipt-bot/cmd/root"
	"fjacquet/receipt-bot/internal/currencyutils"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// Cmd represents the recurring command
var Cmd = &cobra.Command{
	Use:   "recurring",
	Short: "Manage recurring monthly expenses",
	Long: `List, add, delete and apply the fixed expenses that are recorded
automatically on the first day of every month.

Example:
  receipt-bot recurring add --store Landlord --amount 1200 --description Rent --category HOUSING
  receipt-bot recurring apply --month 2024-02`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recurring expenses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		expenses, err := c.GetRecurringService().GetRecurringExpenses()
		if err != nil {
			return err
		}
		WriteExpenseTable(cmd.OutOrStdout(), expenses, c.GetCatalog(), c.GetConfig().Report.CurrencySymbol)
		return nil
	},
}

var (
	addStore       string
	addAmount      string
	addDescription string
	addCategory    string
	applyMonth     string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a recurring expense",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		expense, err := BuildExpense(addStore, addAmount, addDescription, addCategory, c.GetCatalog())
		if err != nil {
			return err
		}
		if err := c.GetRecurringService().AddRecurringExpense(expense); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", expense.Store,
			currencyutils.FormatAmount(expense.Amount, c.GetConfig().Report.CurrencySymbol))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <number>",
	Short: "Delete a recurring expense by its list number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid expense number: %s", args[0])
		}
		deleted, err := c.GetRecurringService().DeleteRecurringExpense(n - 1)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("no recurring expense number %d", n)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted recurring expense %d\n", n)
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Record this month's recurring expenses now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		month, err := ParseMonth(applyMonth, time.Now(), c.GetLocation())
		if err != nil {
			return err
		}
		added, err := c.GetRecurringService().ApplyForMonth(month)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d recurring expense(s) for %s\n", added, month.Format("2006-01"))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addStore, "store", "", "Payee name")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "Monthly amount")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Description recorded as the item name")
	addCmd.Flags().StringVar(&addCategory, "category", models.CategoryMisc, "Category key or name")
	_ = addCmd.MarkFlagRequired("store")
	_ = addCmd.MarkFlagRequired("amount")

	applyCmd.Flags().StringVar(&applyMonth, "month", "", "Month to apply (YYYY-MM, default current month)")

	Cmd.AddCommand(listCmd, addCmd, deleteCmd, applyCmd)
}

// BuildExpense parses command-line input into a recurring expense. The
// category must exist in catalog and is stored by key.
func BuildExpense(store, amount, description, category string, catalog *models.CategoryCatalog) (models.RecurringExpense, error) {
	value, err := currencyutils.ParsePositiveAmount(amount)
	if err != nil {
		return models.RecurringExpense{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	cat, ok := catalog.Resolve(category)
	if !ok {
		return models.RecurringExpense{}, fmt.Errorf("unknown category: %s", category)
	}
	if description == "" {
		description = store
	}
	return models.RecurringExpense{
		Store:       store,
		Amount:      value,
		Description: description,
		Category:    cat.Key,
	}, nil
}

// ParseMonth reads "YYYY-MM" in loc. An empty value means the month of now.
func ParseMonth(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return dateutils.StartOfMonth(now, loc), nil
	}
	t, err := time.ParseInLocation("2006-01", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", value)
	}
	return t, nil
}

// WriteExpenseTable renders the recurring expenses with their list numbers.
func WriteExpenseTable(w io.Writer, expenses []models.RecurringExpense, catalog *models.CategoryCatalog, symbol string) {
	if len(expenses) == 0 {
		fmt.Fprintln(w, "No recurring expenses")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Store", "Description", "Category", "Amount"})
	for i, e := range expenses {
		label, _ := catalog.DisplayLabel(e.Category)
		t.AppendRow(table.Row{i + 1, e.Store, e.Description, label, currencyutils.FormatAmount(e.Amount, symbol)})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 5, Align: text.AlignRight}})
	t.Render()
}
