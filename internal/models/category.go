package models

import "strings"

// Category is one entry of the configured category enumeration.
type Category struct {
	Key         string `mapstructure:"key" yaml:"key"`
	Name        string `mapstructure:"name" yaml:"name"`
	DisplayName string `mapstructure:"display_name" yaml:"display_name,omitempty"`
}

// Label is the text shown to users and used as the report bucket.
func (c Category) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	if c.Name != "" {
		return c.Name
	}
	return c.Key
}

// DefaultCategories is the built-in enumeration used when none is configured.
func DefaultCategories() []Category {
	return []Category{
		{Key: "GROCERIES", Name: "Groceries"},
		{Key: "KIDS", Name: "Kids"},
		{Key: "DINING", Name: "Dining"},
		{Key: "TRANSPORT", Name: "Transport"},
		{Key: "HEALTHCARE", Name: "Healthcare"},
		{Key: "UTILITIES", Name: "Utilities"},
		{Key: "HOUSING", Name: "Housing"},
		{Key: "CLOTHING", Name: "Clothing"},
		{Key: "RECREATION", Name: "Recreation"},
		{Key: "EDUCATION", Name: "Education"},
		{Key: "SEASONAL", Name: "Seasonal"},
		{Key: CategoryMisc, Name: "Miscellaneous"},
	}
}

// CategoryCatalog is an ordered, immutable set of categories.
type CategoryCatalog struct {
	categories []Category
}

// NewCategoryCatalog normalizes keys to upper case, drops blank keys and
// duplicates, and always makes sure MISC exists.
func NewCategoryCatalog(categories []Category) *CategoryCatalog {
	seen := make(map[string]bool, len(categories))
	out := make([]Category, 0, len(categories)+1)
	for _, c := range categories {
		c.Key = strings.ToUpper(strings.TrimSpace(c.Key))
		if c.Key == "" || seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		out = append(out, c)
	}
	if !seen[CategoryMisc] {
		out = append(out, Category{Key: CategoryMisc, Name: "Miscellaneous"})
	}
	return &CategoryCatalog{categories: out}
}

// All returns the categories in configured order.
func (c *CategoryCatalog) All() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// ByKey finds a category by its exact key, ignoring case.
func (c *CategoryCatalog) ByKey(key string) (Category, bool) {
	key = strings.TrimSpace(key)
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Key, key) {
			return cat, true
		}
	}
	return Category{}, false
}

// Resolve matches raw against key, name or display name.
func (c *CategoryCatalog) Resolve(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Category{}, false
	}
	if cat, ok := c.ByKey(raw); ok {
		return cat, true
	}
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Name, raw) || (cat.DisplayName != "" && strings.EqualFold(cat.DisplayName, raw)) {
			return cat, true
		}
	}
	return Category{}, false
}

// DisplayLabel maps a stored category value to its report label. A blank
// value counts as MISC. The boolean is false for unknown values, which are
// bucketed as "Other".
func (c *CategoryCatalog) DisplayLabel(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		raw = CategoryMisc
	}
	if cat, ok := c.Resolve(raw); ok {
		return cat.Label(), true
	}
	return CategoryOtherLabel, false
}
