// Package validation enforces the domain rules for receipts and recurring
// expenses before anything reaches storage.
package validation

import (
	"fmt"
	"strings"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/models"
)

// ValidateItem checks a single receipt line. Category is optional here and
// defaults to MISC at report time.
func ValidateItem(item models.Item, position int) error {
	field := fmt.Sprintf("items[%d]", position)
	if strings.TrimSpace(item.Name) == "" {
		return apperror.NewValidationError(field+".name", "item name is required")
	}
	if item.Price.IsNegative() {
		return apperror.NewValidationError(field+".price", "item price cannot be negative")
	}
	return nil
}

// ValidateReceipt checks what storage requires: a date, a store, at least
// one valid item and an amount equal to the item total.
func ValidateReceipt(r models.Receipt) error {
	if r.Date.IsZero() {
		return apperror.NewValidationError("date", "receipt date is required")
	}
	if strings.TrimSpace(r.Store) == "" {
		return apperror.NewValidationError("store", "store name is required")
	}
	if len(r.Items) == 0 {
		return apperror.NewValidationError("items", "receipt must contain at least one item")
	}
	for i, item := range r.Items {
		if err := ValidateItem(item, i); err != nil {
			return err
		}
	}
	if sum := models.SumPrices(r.Items); !sum.Equal(r.Amount) {
		return apperror.NewValidationError("amount",
			fmt.Sprintf("amount %s does not match item total %s", r.Amount.String(), sum.String()))
	}
	return nil
}

// ValidateSubmission applies ValidateReceipt plus the stricter rule for
// receipts entered through the bot: every item has a known category.
func ValidateSubmission(r models.Receipt, catalog *models.CategoryCatalog) error {
	if err := ValidateReceipt(r); err != nil {
		return err
	}
	for i, item := range r.Items {
		if strings.TrimSpace(item.Category) == "" {
			return apperror.NewValidationError(fmt.Sprintf("items[%d].category", i), "item category is required")
		}
		if catalog != nil {
			if _, ok := catalog.Resolve(item.Category); !ok {
				return apperror.NewValidationError(fmt.Sprintf("items[%d].category", i),
					fmt.Sprintf("unknown category %q", item.Category))
			}
		}
	}
	return nil
}

// ValidateRecurringExpense checks a recurring expense before it is stored.
func ValidateRecurringExpense(e models.RecurringExpense) error {
	if strings.TrimSpace(e.Store) == "" {
		return apperror.NewValidationError("store", "store name is required")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidationError("amount", "amount must be greater than zero")
	}
	if strings.TrimSpace(e.Description) == "" {
		return apperror.NewValidationError("description", "description is required")
	}
	if strings.TrimSpace(e.Category) == "" {
		return apperror.NewValidationError("category", "category is required")
	}
	return nil
}

// IsValidOutputFormat checks format against the formats a command supports.
func IsValidOutputFormat(format string, supported ...string) error {
	for _, s := range supported {
		if strings.EqualFold(format, s) {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are '%s'", format, strings.Join(supported, "', '"))
}
