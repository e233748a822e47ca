package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"fjacquet/receipt-bot/internal/fileutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"

	"gopkg.in/yaml.v3"
)

// categoriesDocument is the on-disk shape of a categories file.
type categoriesDocument struct {
	Categories []models.Category `yaml:"categories"`
}

// CategoryStore loads an optional YAML category list that replaces the
// configured one, and can write the active list back out for editing.
type CategoryStore struct {
	path   string
	logger logging.Logger
}

// NewCategoryStore returns a store for path. An empty path disables it.
func NewCategoryStore(path string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &CategoryStore{path: path, logger: logger}
}

// LoadCategories returns the categories in the file, or nil when no file is
// configured or it does not exist.
func (s *CategoryStore) LoadCategories() ([]models.Category, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Categories file not found, using configured categories", logging.F(logging.FieldFile, s.path))
			return nil, nil
		}
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var doc categoriesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", s.path, err)
	}
	for _, c := range doc.Categories {
		if len(strings.TrimSpace(c.Key)) > models.MaxCategoryKeyLength {
			return nil, fmt.Errorf("category key %q in %s is longer than %d bytes", c.Key, s.path, models.MaxCategoryKeyLength)
		}
	}
	s.logger.Debug("Loaded categories", logging.F(logging.FieldFile, s.path), logging.F(logging.FieldCount, len(doc.Categories)))
	return doc.Categories, nil
}

// SaveCategories writes categories to the file in the same format
// LoadCategories reads.
func (s *CategoryStore) SaveCategories(categories []models.Category) error {
	if s.path == "" {
		return fmt.Errorf("no categories file configured")
	}
	data, err := yaml.Marshal(categoriesDocument{Categories: categories})
	if err != nil {
		return fmt.Errorf("error encoding categories: %w", err)
	}
	if err := fileutils.WriteFileAtomic(s.path, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing categories file: %w", err)
	}
	return nil
}
