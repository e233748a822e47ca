package bot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/validation"

	"github.com/shopspring/decimal"
)

type submissionItem struct {
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Category string           `json:"category"`
}

type submission struct {
	Date  string           `json:"date"`
	Store string           `json:"store"`
	Items []submissionItem `json:"items"`
}

// DecodeSubmission turns a pasted or AI-generated JSON document into a
// receipt ready to save. Text that is not JSON at all yields a
// MalformedInputError; JSON that breaks a rule yields a ValidationError.
// Any amount in the input is ignored and recomputed from the items, and
// categories are normalized to their catalog keys.
func DecodeSubmission(input string, catalog *models.CategoryCatalog, loc *time.Location) (models.Receipt, error) {
	var sub submission
	if err := json.Unmarshal([]byte(strings.TrimSpace(input)), &sub); err != nil {
		return models.Receipt{}, &apperror.MalformedInputError{
			Source:  "json",
			Snippet: apperror.Snippet(input, 40),
			Err:     err,
		}
	}

	if strings.TrimSpace(sub.Date) == "" || strings.TrimSpace(sub.Store) == "" || sub.Items == nil {
		return models.Receipt{}, apperror.NewValidationError("receipt", "missing required fields (date, store, items)")
	}
	date, err := dateutils.ParseUserDate(sub.Date, loc)
	if err != nil {
		return models.Receipt{}, apperror.NewValidationError("date", "invalid date format")
	}
	if len(sub.Items) == 0 {
		return models.Receipt{}, apperror.NewValidationError("items", "at least one item is required")
	}

	items := make([]models.Item, 0, len(sub.Items))
	for i, it := range sub.Items {
		if strings.TrimSpace(it.Name) == "" || it.Price == nil || strings.TrimSpace(it.Category) == "" {
			return models.Receipt{}, apperror.NewValidationError(fmt.Sprintf("items[%d]", i), "each item needs name, price and category")
		}
		items = append(items, models.Item{
			Name:     strings.TrimSpace(it.Name),
			Price:    *it.Price,
			Category: strings.TrimSpace(it.Category),
		})
	}

	r := models.Receipt{
		Date:  date.UTC(),
		Store: strings.TrimSpace(sub.Store),
		Items: items,
	}.WithComputedAmount()

	if err := validation.ValidateSubmission(r, catalog); err != nil {
		return models.Receipt{}, err
	}
	if catalog != nil {
		for i := range r.Items {
			if cat, ok := catalog.Resolve(r.Items[i].Category); ok {
				r.Items[i].Category = cat.Key
			}
		}
	}
	return r, nil
}

// SubmissionExample is shown by /json.
const SubmissionExample = `{
  "date": "2024-02-14T12:00:00",
  "store": "Store name",
  "items": [
    {
      "name": "Item name",
      "price": 100,
      "category": "GROCERIES"
    }
  ]
}`
