// Package recurring manages fixed monthly expenses and materializes them as
// receipts on the first day of each month.
package recurring

import (
	"fmt"
	"time"

	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/validation"
)

// ReceiptStore is the part of the receipt store the service needs.
type ReceiptStore interface {
	GetReceiptsByDate(date time.Time) ([]models.Receipt, error)
	SaveReceipt(r models.Receipt) error
}

// ExpenseFile persists the recurring-expense list.
type ExpenseFile interface {
	Load() ([]models.RecurringExpense, error)
	Save(expenses []models.RecurringExpense) error
}

// Service applies and edits recurring expenses.
type Service struct {
	receipts ReceiptStore
	file     ExpenseFile
	loc      *time.Location
	now      func() time.Time
	logger   logging.Logger
}

// NewService wires a Service. now may be nil to use time.Now.
func NewService(receipts ReceiptStore, file ExpenseFile, loc *time.Location, logger logging.Logger, now func() time.Time) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{
		receipts: receipts,
		file:     file,
		loc:      loc,
		now:      now,
		logger:   logger.WithField(logging.FieldComponent, "recurring"),
	}
}

// GetRecurringExpenses returns the stored list in insertion order.
func (s *Service) GetRecurringExpenses() ([]models.RecurringExpense, error) {
	return s.file.Load()
}

// AddRecurringExpense validates e and appends it to the list.
func (s *Service) AddRecurringExpense(e models.RecurringExpense) error {
	if err := validation.ValidateRecurringExpense(e); err != nil {
		return err
	}
	expenses, err := s.file.Load()
	if err != nil {
		return err
	}
	expenses = append(expenses, e)
	if err := s.file.Save(expenses); err != nil {
		return err
	}
	s.logger.Info("Recurring expense added",
		logging.F(logging.FieldStore, e.Store),
		logging.F(logging.FieldAmount, e.Amount.StringFixed(2)))
	return nil
}

// DeleteRecurringExpense removes the entry at index, reporting false when
// the index is out of range.
func (s *Service) DeleteRecurringExpense(index int) (bool, error) {
	expenses, err := s.file.Load()
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(expenses) {
		return false, nil
	}
	removed := expenses[index]
	expenses = append(expenses[:index:index], expenses[index+1:]...)
	if err := s.file.Save(expenses); err != nil {
		return false, err
	}
	s.logger.Info("Recurring expense deleted",
		logging.F(logging.FieldIndex, index),
		logging.F(logging.FieldStore, removed.Store))
	return true, nil
}

// AddMonthlyExpenses applies every recurring expense to the current month.
func (s *Service) AddMonthlyExpenses() (int, error) {
	return s.ApplyForMonth(s.now())
}

// ApplyForMonth saves one receipt per recurring expense, dated local
// midnight on the first of month, skipping expenses already present that
// day. Running it twice for the same month adds nothing the second time.
// It returns how many receipts were created.
func (s *Service) ApplyForMonth(month time.Time) (int, error) {
	firstDay := dateutils.StartOfMonth(month, s.loc)

	existing, err := s.receipts.GetReceiptsByDate(firstDay)
	if err != nil {
		return 0, fmt.Errorf("error reading receipts for %s: %w", dateutils.DayKey(firstDay, s.loc), err)
	}
	expenses, err := s.file.Load()
	if err != nil {
		return 0, err
	}

	added := 0
	for _, e := range expenses {
		if alreadyApplied(existing, e) {
			continue
		}
		receipt := models.Receipt{
			Date:        firstDay,
			Store:       e.Store,
			Amount:      e.Amount,
			IsRecurring: true,
			Items: []models.Item{{
				Name:     e.Description,
				Price:    e.Amount,
				Category: e.Category,
			}},
		}
		if err := s.receipts.SaveReceipt(receipt); err != nil {
			return added, fmt.Errorf("error saving recurring expense %q: %w", e.Store, err)
		}
		added++
	}

	s.logger.Info("Monthly recurring expenses applied",
		logging.F(logging.FieldDate, dateutils.DayKey(firstDay, s.loc)),
		logging.F(logging.FieldCount, added))
	return added, nil
}

func alreadyApplied(existing []models.Receipt, e models.RecurringExpense) bool {
	for _, r := range existing {
		if e.Matches(r) {
			return true
		}
	}
	return false
}
