package recurring

import (
	"errors"
	"testing"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFile struct {
	expenses []models.RecurringExpense
	loadErr  error
	saves    int
}

func (f *memoryFile) Load() ([]models.RecurringExpense, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]models.RecurringExpense(nil), f.expenses...), nil
}

func (f *memoryFile) Save(expenses []models.RecurringExpense) error {
	f.saves++
	f.expenses = append([]models.RecurringExpense(nil), expenses...)
	return nil
}

func expense(store, amount string) models.RecurringExpense {
	return models.RecurringExpense{Store: store, Amount: decimal.RequireFromString(amount), Description: store + " monthly", Category: "UTILITIES"}
}

func setup(t *testing.T, now time.Time, expenses ...models.RecurringExpense) (*Service, *store.ReceiptStore, *memoryFile) {
	t.Helper()
	logger := logging.NewMockLogger()
	receipts := store.NewReceiptStore(t.TempDir(), now.Location(), logger)
	file := &memoryFile{expenses: expenses}
	return NewService(receipts, file, now.Location(), logger, func() time.Time { return now }), receipts, file
}

func TestAddMonthlyExpenses_Idempotent(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	now := time.Date(2024, 3, 1, 0, 0, 5, 0, loc)
	svc, receipts, _ := setup(t, now, expense("Landlord", "1500"), expense("ISP", "59.99"))

	added, err := svc.AddMonthlyExpenses()
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = svc.AddMonthlyExpenses()
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	got, err := receipts.GetReceiptsByDate(now)
	require.NoError(t, err)
	require.Len(t, got, 2)

	r := got[1]
	assert.True(t, r.IsRecurring)
	assert.Equal(t, "ISP", r.Store)
	assert.Equal(t, "2024-03-01 00:00", r.Date.In(loc).Format("2006-01-02 15:04"))
	require.Len(t, r.Items, 1)
	assert.Equal(t, "ISP monthly", r.Items[0].Name)
	assert.Equal(t, "UTILITIES", r.Items[0].Category)
	assert.True(t, r.Amount.Equal(r.Items[0].Price))
}

func TestApplyForMonth_OnlyAddsMissing(t *testing.T) {
	now := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	svc, receipts, file := setup(t, now, expense("Landlord", "1500"))

	_, err := svc.ApplyForMonth(now)
	require.NoError(t, err)

	file.expenses = append(file.expenses, expense("Gym", "40"))
	added, err := svc.ApplyForMonth(now)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	// A non-recurring receipt with the same store and amount does not count.
	manual := models.Receipt{
		Date:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Store: "Gym",
		Items: []models.Item{{Name: "Fee", Price: decimal.NewFromInt(40), Category: "RECREATION"}},
	}.WithComputedAmount()
	require.NoError(t, receipts.SaveReceipt(manual))

	added, err = svc.ApplyForMonth(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, added)
}

func TestApplyForMonth_Errors(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock := store.NewMockReceiptStore(time.UTC)
	mock.ReadErr = &apperror.StorageIOError{Op: "read", Err: errors.New("disk")}
	svc := NewService(mock, &memoryFile{expenses: []models.RecurringExpense{expense("A", "1")}}, time.UTC, nil, func() time.Time { return now })
	_, err := svc.AddMonthlyExpenses()
	assert.True(t, apperror.IsStorage(err))

	mock = store.NewMockReceiptStore(time.UTC)
	mock.SaveErr = errors.New("full")
	svc = NewService(mock, &memoryFile{expenses: []models.RecurringExpense{expense("A", "1")}}, time.UTC, nil, func() time.Time { return now })
	_, err = svc.AddMonthlyExpenses()
	assert.ErrorContains(t, err, "full")
}

func TestAddAndDeleteRecurringExpense(t *testing.T) {
	svc, _, file := setup(t, time.Now())

	require.NoError(t, svc.AddRecurringExpense(expense("Netflix", "15.99")))
	require.NoError(t, svc.AddRecurringExpense(expense("Spotify", "9.99")))

	err := svc.AddRecurringExpense(models.RecurringExpense{Store: "Broken"})
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 2, file.saves)

	ok, err := svc.DeleteRecurringExpense(5)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.DeleteRecurringExpense(0)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := svc.GetRecurringExpenses()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Spotify", list[0].Store)
}
