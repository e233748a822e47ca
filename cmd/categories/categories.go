// Package categories shows and exports the category list
package categories

import (
	"fmt"
	"io"
	"path/filepath"

	"fjacquet/receipt-bot/cmd/root"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the expense categories",
	Long: `Show the expense categories offered by the bot.

With --init the active list is written to a YAML file that can be edited
and then referenced from data.categories_file.

Example:
  receipt-bot categories --init ./data/categories.yaml`,
	Args: cobra.NoArgs,
	RunE: categoriesFunc,
}

var initPath string

func init() {
	Cmd.Flags().StringVar(&initPath, "init", "", "Write the active categories to this YAML file")
}

func categoriesFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	catalog := c.GetCatalog()

	if initPath != "" {
		s := store.NewCategoryStore(initPath, c.GetLogger())
		if err := s.SaveCategories(catalog.All()); err != nil {
			return err
		}
		abs, _ := filepath.Abs(initPath)
		c.GetLogger().Info("Categories written", logging.F(logging.FieldOutputFile, abs), logging.F(logging.FieldCount, len(catalog.All())))
		return nil
	}

	WriteCategoryTable(cmd.OutOrStdout(), catalog)
	return nil
}

// WriteCategoryTable lists keys with their display labels.
func WriteCategoryTable(w io.Writer, catalog *models.CategoryCatalog) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Key", "Label"})
	for _, cat := range catalog.All() {
		t.AppendRow(table.Row{cat.Key, cat.Label()})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Render()
	fmt.Fprintf(w, "%d categories\n", len(catalog.All()))
}
