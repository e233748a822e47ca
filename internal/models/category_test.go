package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategoryCatalog(t *testing.T) {
	catalog := NewCategoryCatalog([]Category{
		{Key: "groceries", Name: "Groceries"},
		{Key: "GROCERIES", Name: "Duplicate"},
		{Key: " ", Name: "Blank"},
		{Key: "PETS", Name: "Pets", DisplayName: "Pet care"},
	})

	all := catalog.All()
	require.Len(t, all, 3)
	assert.Equal(t, "GROCERIES", all[0].Key)
	assert.Equal(t, "Groceries", all[0].Name)
	assert.Equal(t, CategoryMisc, all[2].Key)
}

func TestCategoryCatalogDisplayLabel(t *testing.T) {
	catalog := NewCategoryCatalog(append(DefaultCategories(), Category{Key: "PETS", Name: "Pets", DisplayName: "Pet care"}))

	tests := []struct {
		raw       string
		wantLabel string
		wantKnown bool
	}{
		{raw: "GROCERIES", wantLabel: "Groceries", wantKnown: true},
		{raw: "groceries", wantLabel: "Groceries", wantKnown: true},
		{raw: "Dining", wantLabel: "Dining", wantKnown: true},
		{raw: "pet care", wantLabel: "Pet care", wantKnown: true},
		{raw: "PETS", wantLabel: "Pet care", wantKnown: true},
		{raw: "", wantLabel: "Miscellaneous", wantKnown: true},
		{raw: "Spaceships", wantLabel: CategoryOtherLabel, wantKnown: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			label, known := catalog.DisplayLabel(tt.raw)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestCategoryByKeyIgnoresNames(t *testing.T) {
	catalog := NewCategoryCatalog(DefaultCategories())

	_, ok := catalog.ByKey("Groceries")
	assert.False(t, ok, "names are not keys")

	cat, ok := catalog.ByKey("kids")
	require.True(t, ok)
	assert.Equal(t, "Kids", cat.Label())
}
