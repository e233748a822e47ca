package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
)

// FixResult summarizes a FixDates run.
type FixResult struct {
	Files    int
	Receipts int
	Moved    int
	Skipped  []string
}

// FixDates rewrites every day file so each receipt date is a UTC timestamp.
// Dates without a zone are read in the store's timezone. Receipts whose
// corrected date falls on another local day are moved to that day's file.
// Files that cannot be decoded are left untouched and listed in Skipped.
func (s *ReceiptStore) FixDates() (FixResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res FixResult
	days, err := s.ListDays()
	if err != nil {
		return res, err
	}

	buckets := make(map[string][]models.Receipt, len(days))
	source := make(map[string]bool, len(days))
	corrupt := make(map[string]bool)
	fixed := make(map[string][]models.Receipt, len(days))

	for _, day := range days {
		receipts, err := s.readDayFixingDates(day)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping day file", logging.F(logging.FieldDate, day))
			corrupt[day] = true
			res.Skipped = append(res.Skipped, day)
			continue
		}
		source[day] = true
		fixed[day] = receipts
		if _, ok := buckets[day]; !ok {
			buckets[day] = []models.Receipt{}
		}
	}

	for _, day := range days {
		for _, r := range fixed[day] {
			target := dateutils.DayKey(r.Date, s.loc)
			if corrupt[target] {
				target = day
			}
			if target != day {
				res.Moved++
			}
			buckets[target] = append(buckets[target], r)
			res.Receipts++
		}
	}

	keys := make([]string, 0, len(buckets))
	for day := range buckets {
		keys = append(keys, day)
	}
	sort.Strings(keys)
	for _, day := range keys {
		if err := s.WriteDay(day, buckets[day]); err != nil {
			return res, err
		}
		res.Files++
		s.logger.Debug("Day file rewritten",
			logging.F(logging.FieldDate, day),
			logging.F(logging.FieldCount, len(buckets[day])),
			logging.F("existing", source[day]))
	}

	s.logger.Info("Receipt dates fixed",
		logging.F(logging.FieldCount, res.Receipts),
		logging.F("files", res.Files),
		logging.F("moved", res.Moved))
	return res, nil
}

func (s *ReceiptStore) readDayFixingDates(day string) ([]models.Receipt, error) {
	path := s.dayPath(day)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperror.StorageIOError{Path: path, Op: "read", Err: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return []models.Receipt{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &apperror.StorageIOError{Path: path, Op: "decode", Err: err}
	}

	out := make([]models.Receipt, 0, len(entries))
	for i, entry := range entries {
		var head struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(entry, &head); err != nil {
			return nil, &apperror.StorageIOError{Path: path, Op: "decode", Err: err}
		}
		date, err := fixDate(head.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("receipt %d in %s: %w", i, path, err)
		}
		var r models.Receipt
		if err := json.Unmarshal(entry, &r); err != nil {
			return nil, &apperror.StorageIOError{Path: path, Op: "decode", Err: err}
		}
		r.Date = date
		out = append(out, r)
	}
	return out, nil
}

// fixDate converts a stored date to UTC, reading zone-less values in loc.
func fixDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.000", value, loc); err == nil {
		return t.UTC(), nil
	}
	t, err := dateutils.ParseUserDate(value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
