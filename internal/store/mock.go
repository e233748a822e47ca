package store

import (
	"sync"
	"time"

	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/validation"
)

// MockReceiptStore is an in-memory receipt store with error injection,
// used by tests of the services built on top of ReceiptStore.
type MockReceiptStore struct {
	mu  sync.Mutex
	Loc *time.Location
	// Days holds receipts by YYYY-MM-DD key.
	Days map[string][]models.Receipt
	// Recent is returned verbatim by GetRecentReceipts when set.
	Recent []models.RecentReceipt

	SaveErr   error
	ReadErr   error
	DeleteErr error

	Saved   []models.Receipt
	Deleted []models.ReceiptRef
}

// NewMockReceiptStore returns an empty mock bucketing days in loc.
func NewMockReceiptStore(loc *time.Location) *MockReceiptStore {
	if loc == nil {
		loc = time.UTC
	}
	return &MockReceiptStore{Loc: loc, Days: map[string][]models.Receipt{}}
}

// Add files receipts under their local day without validation.
func (m *MockReceiptStore) Add(receipts ...models.Receipt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range receipts {
		day := dateutils.DayKey(r.Date, m.Loc)
		m.Days[day] = append(m.Days[day], r)
	}
}

func (m *MockReceiptStore) GetReceiptsByDate(date time.Time) ([]models.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	day := m.Days[dateutils.DayKey(date, m.Loc)]
	out := make([]models.Receipt, len(day))
	copy(out, day)
	return out, nil
}

func (m *MockReceiptStore) SaveReceipt(r models.Receipt) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if err := validation.ValidateReceipt(r); err != nil {
		return err
	}
	m.mu.Lock()
	m.Saved = append(m.Saved, r)
	m.mu.Unlock()
	m.Add(r)
	return nil
}

func (m *MockReceiptStore) GetRecentReceipts(n int) ([]models.RecentReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if n <= 0 {
		n = DefaultRecentLimit
	}
	out := m.Recent
	if len(out) > n {
		out = out[:n]
	}
	return append([]models.RecentReceipt(nil), out...), nil
}

// DeleteReceiptRef removes the matching entry from Recent.
func (m *MockReceiptStore) DeleteReceiptRef(ref models.ReceiptRef) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return false, m.DeleteErr
	}
	for i, rr := range m.Recent {
		if rr.Ref == ref {
			m.Recent = append(m.Recent[:i:i], m.Recent[i+1:]...)
			m.Deleted = append(m.Deleted, ref)
			return true, nil
		}
	}
	return false, nil
}
