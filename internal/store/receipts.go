// Package store persists receipts as one JSON file per local calendar day
// plus a flat recurring-expense list.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/fileutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/validation"
)

const (
	// DefaultRecentLimit is how many receipts the delete menu lists.
	DefaultRecentLimit = 5
	// RecentWindowDays bounds how far back GetRecentReceipts looks.
	RecentWindowDays = 7
)

// ReceiptStore reads and writes receipts-YYYY-MM-DD.json files. Writes are
// serialized so concurrent saves from the bot and the scheduler cannot lose
// each other's updates.
type ReceiptStore struct {
	dir         string
	loc         *time.Location
	strictReads bool
	now         func() time.Time
	logger      logging.Logger
	mu          sync.Mutex
}

// Option customizes a ReceiptStore.
type Option func(*ReceiptStore)

// WithStrictReads makes GetReceiptsByDate return corrupt-file errors instead
// of logging them and treating the day as empty.
func WithStrictReads(strict bool) Option {
	return func(s *ReceiptStore) { s.strictReads = strict }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ReceiptStore) { s.now = now }
}

// NewReceiptStore creates a store rooted at dir that buckets days in loc.
func NewReceiptStore(dir string, loc *time.Location, logger logging.Logger, opts ...Option) *ReceiptStore {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	s := &ReceiptStore{
		dir:    dir,
		loc:    loc,
		now:    time.Now,
		logger: logger.WithField(logging.FieldComponent, "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the data directory.
func (s *ReceiptStore) Dir() string { return s.dir }

// Location returns the timezone used to bucket receipts.
func (s *ReceiptStore) Location() *time.Location { return s.loc }

// EnsureDataDir creates the data directory if needed.
func (s *ReceiptStore) EnsureDataDir() error {
	if err := fileutils.EnsureDirectoryExists(s.dir, models.PermissionDirectory); err != nil {
		return &apperror.StorageIOError{Path: s.dir, Op: "mkdir", Err: err}
	}
	return nil
}

// FilePath is the file holding receipts for date's local day.
func (s *ReceiptStore) FilePath(date time.Time) string {
	return s.dayPath(dateutils.DayKey(date, s.loc))
}

func (s *ReceiptStore) dayPath(day string) string {
	return filepath.Join(s.dir, models.ReceiptFilePrefix+day+models.ReceiptFileExt)
}

// ListDays returns the YYYY-MM-DD keys of every day file, oldest first.
func (s *ReceiptStore) ListDays() ([]string, error) {
	names, err := fileutils.ListFiles(s.dir, models.ReceiptFilePrefix, models.ReceiptFileExt)
	if err != nil {
		return nil, &apperror.StorageIOError{Path: s.dir, Op: "list", Err: err}
	}
	days := make([]string, 0, len(names))
	for _, name := range names {
		day := strings.TrimSuffix(strings.TrimPrefix(name, models.ReceiptFilePrefix), models.ReceiptFileExt)
		if _, err := time.Parse(dateutils.DateLayoutISO, day); err != nil {
			s.logger.Debug("Skipping file with unexpected name", logging.F(logging.FieldFile, name))
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

// ReadDay returns the raw contents of a day file, including receipts whose
// date belongs to another day. A missing file is an empty day; a corrupt
// file is a StorageIOError.
func (s *ReceiptStore) ReadDay(day string) ([]models.Receipt, error) {
	path := s.dayPath(day)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Receipt{}, nil
		}
		return nil, &apperror.StorageIOError{Path: path, Op: "read", Err: err}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Receipt{}, nil
	}
	var receipts []models.Receipt
	if err := json.Unmarshal(data, &receipts); err != nil {
		return nil, &apperror.StorageIOError{Path: path, Op: "decode", Err: err}
	}
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	return receipts, nil
}

// WriteDay replaces a day file with receipts.
func (s *ReceiptStore) WriteDay(day string, receipts []models.Receipt) error {
	if err := s.EnsureDataDir(); err != nil {
		return err
	}
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	path := s.dayPath(day)
	data, err := json.MarshalIndent(receipts, "", "  ")
	if err != nil {
		return &apperror.StorageIOError{Path: path, Op: "encode", Err: err}
	}
	if err := fileutils.WriteFileAtomic(path, data, models.PermissionDataFile); err != nil {
		return &apperror.StorageIOError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// GetReceiptsByDate returns the receipts whose own date falls on date's
// local day, in file order.
func (s *ReceiptStore) GetReceiptsByDate(date time.Time) ([]models.Receipt, error) {
	day := dateutils.DayKey(date, s.loc)
	all, err := s.ReadDay(day)
	if err != nil {
		if s.strictReads {
			return nil, err
		}
		s.logger.WithError(err).Error("Failed to read receipts, treating day as empty",
			logging.F(logging.FieldDate, day))
		return []models.Receipt{}, nil
	}
	return s.onDay(all, day), nil
}

func (s *ReceiptStore) onDay(all []models.Receipt, day string) []models.Receipt {
	out := make([]models.Receipt, 0, len(all))
	for _, r := range all {
		if dateutils.DayKey(r.Date, s.loc) == day {
			out = append(out, r)
		}
	}
	if skipped := len(all) - len(out); skipped > 0 {
		s.logger.Debug("Ignoring receipts filed under the wrong day",
			logging.F(logging.FieldDate, day), logging.F(logging.FieldCount, skipped))
	}
	return out
}

// GetReceiptsByDateRange concatenates GetReceiptsByDate for every local day
// from start to end inclusive.
func (s *ReceiptStore) GetReceiptsByDateRange(start, end time.Time) ([]models.Receipt, error) {
	var out []models.Receipt
	for _, day := range dateutils.Days(start, end, s.loc) {
		receipts, err := s.GetReceiptsByDate(day)
		if err != nil {
			return nil, err
		}
		out = append(out, receipts...)
	}
	return out, nil
}

// SaveReceipt validates r and appends it to its day file. A corrupt day
// file is never overwritten.
func (s *ReceiptStore) SaveReceipt(r models.Receipt) error {
	if err := validation.ValidateReceipt(r); err != nil {
		return err
	}
	r.Date = r.Date.UTC()
	day := dateutils.DayKey(r.Date, s.loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	receipts, err := s.ReadDay(day)
	if err != nil {
		return err
	}
	receipts = append(receipts, r)
	if err := s.WriteDay(day, receipts); err != nil {
		return err
	}

	s.logger.Info("Receipt saved",
		logging.F(logging.FieldDate, day),
		logging.F(logging.FieldStore, r.Store),
		logging.F(logging.FieldAmount, r.Amount.StringFixed(2)))
	return nil
}

// DeleteReceipt removes the receipt at index among those GetReceiptsByDate
// returns for date. It reports false, without touching the file, when the
// index is out of range.
func (s *ReceiptStore) DeleteReceipt(date time.Time, index int) (bool, error) {
	return s.DeleteReceiptRef(models.ReceiptRef{Day: dateutils.DayKey(date, s.loc), Index: index})
}

// DeleteReceiptRef is DeleteReceipt addressed by a reference from
// GetRecentReceipts.
func (s *ReceiptStore) DeleteReceiptRef(ref models.ReceiptRef) (bool, error) {
	if _, err := time.Parse(dateutils.DateLayoutISO, ref.Day); err != nil {
		return false, apperror.NewValidationError("day", fmt.Sprintf("invalid day %q", ref.Day))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.ReadDay(ref.Day)
	if err != nil {
		return false, err
	}

	// Map the visible index back to a position in the raw file.
	raw := -1
	visible := 0
	for i, r := range all {
		if dateutils.DayKey(r.Date, s.loc) != ref.Day {
			continue
		}
		if visible == ref.Index {
			raw = i
			break
		}
		visible++
	}
	if ref.Index < 0 || raw < 0 {
		return false, nil
	}

	removed := all[raw]
	remaining := append(all[:raw:raw], all[raw+1:]...)
	if err := s.WriteDay(ref.Day, remaining); err != nil {
		return false, err
	}

	s.logger.Info("Receipt deleted",
		logging.F(logging.FieldDate, ref.Day),
		logging.F(logging.FieldIndex, ref.Index),
		logging.F(logging.FieldStore, removed.Store))
	return true, nil
}

// GetRecentReceipts lists up to n receipts from the last RecentWindowDays
// local days, newest day first and file order within a day. Each entry
// carries the reference DeleteReceiptRef needs.
func (s *ReceiptStore) GetRecentReceipts(n int) ([]models.RecentReceipt, error) {
	if n <= 0 {
		n = DefaultRecentLimit
	}
	today := dateutils.StartOfDay(s.now(), s.loc)

	var out []models.RecentReceipt
	for i := 0; i < RecentWindowDays && len(out) < n; i++ {
		day := today.AddDate(0, 0, -i)
		receipts, err := s.GetReceiptsByDate(day)
		if err != nil {
			return nil, err
		}
		key := dateutils.DayKey(day, s.loc)
		for idx, r := range receipts {
			out = append(out, models.RecentReceipt{Receipt: r, Ref: models.ReceiptRef{Day: key, Index: idx}})
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
