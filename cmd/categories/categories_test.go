package categories_test

import (
	"bytes"
	"testing"

	"fjacquet/receipt-bot/cmd/categories"
	"fjacquet/receipt-bot/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCategoriesCommand_Metadata(t *testing.T) {
	assert.Equal(t, "categories", categories.Cmd.Use)
	assert.NotNil(t, categories.Cmd.Flags().Lookup("init"))
	assert.NotNil(t, categories.Cmd.RunE)
}

func TestWriteCategoryTable(t *testing.T) {
	var buf bytes.Buffer
	categories.WriteCategoryTable(&buf, models.NewCategoryCatalog(models.DefaultCategories()))
	out := buf.String()
	assert.Contains(t, out, "GROCERIES")
	assert.Contains(t, out, "Miscellaneous")
	assert.Contains(t, out, "12 categories")
}
