package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/fileutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
)

// RecurringFile stores the recurring-expense list as a single JSON array.
type RecurringFile struct {
	path   string
	logger logging.Logger
	mu     sync.Mutex
}

// NewRecurringFile returns a store for path. A relative file name is placed
// inside dataDir.
func NewRecurringFile(dataDir, name string, logger logging.Logger) *RecurringFile {
	if name == "" {
		name = models.RecurringFileName
	}
	path := name
	if !filepath.IsAbs(name) {
		path = filepath.Join(dataDir, name)
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &RecurringFile{path: path, logger: logger.WithField(logging.FieldComponent, "recurring-file")}
}

// Path returns the backing file.
func (f *RecurringFile) Path() string { return f.path }

// Load reads the list, creating an empty file on first use.
func (f *RecurringFile) Load() ([]models.RecurringExpense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.Info("Recurring expense file not found, creating it", logging.F(logging.FieldFile, f.path))
			if err := f.write([]models.RecurringExpense{}); err != nil {
				return nil, err
			}
			return []models.RecurringExpense{}, nil
		}
		return nil, &apperror.StorageIOError{Path: f.path, Op: "read", Err: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return []models.RecurringExpense{}, nil
	}

	var expenses []models.RecurringExpense
	if err := json.Unmarshal(data, &expenses); err != nil {
		return nil, &apperror.StorageIOError{Path: f.path, Op: "decode", Err: err}
	}
	if expenses == nil {
		expenses = []models.RecurringExpense{}
	}
	return expenses, nil
}

// Save replaces the stored list.
func (f *RecurringFile) Save(expenses []models.RecurringExpense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(expenses)
}

func (f *RecurringFile) write(expenses []models.RecurringExpense) error {
	if expenses == nil {
		expenses = []models.RecurringExpense{}
	}
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(f.path), models.PermissionDirectory); err != nil {
		return &apperror.StorageIOError{Path: f.path, Op: "mkdir", Err: err}
	}
	data, err := json.MarshalIndent(expenses, "", "  ")
	if err != nil {
		return &apperror.StorageIOError{Path: f.path, Op: "encode", Err: err}
	}
	if err := fileutils.WriteFileAtomic(f.path, data, models.PermissionDataFile); err != nil {
		return &apperror.StorageIOError{Path: f.path, Op: "write", Err: err}
	}
	return nil
}
