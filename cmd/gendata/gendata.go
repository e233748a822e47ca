// Package gendata writes a year of random receipts for trying out reports
package gendata

import (
	"fmt"
	"math/rand/v2"
	"time"

	"fjacquet/receipt-bot/cmd/root"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Cmd represents the generate-test-data command
var Cmd = &cobra.Command{
	Use:   "generate-test-data",
	Short: "Write a year of random receipts",
	Long: `Write one to three random receipts for every day of a year into a
separate directory, for trying out reports and charts.

Example:
  receipt-bot generate-test-data --year 2023 --output-dir ./data-test`,
	Args: cobra.NoArgs,
	RunE: genDataFunc,
}

var (
	yearFlag  int
	outputDir string
	seedFlag  uint64
)

func init() {
	Cmd.Flags().IntVar(&yearFlag, "year", time.Now().Year()-1, "Year to generate")
	Cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "./data-test", "Directory to write receipt files to")
	Cmd.Flags().Uint64Var(&seedFlag, "seed", 0, "Random seed (0 picks one)")
}

func genDataFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	if outputDir == c.GetConfig().Data.Directory {
		return fmt.Errorf("refusing to write test data into the live data directory %s", outputDir)
	}
	seed := seedFlag
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	loc := c.GetLocation()
	target := store.NewReceiptStore(outputDir, loc, c.GetLogger())
	days := GenerateYear(yearFlag, c.GetCatalog(), loc, rng)

	count := 0
	jan1 := time.Date(yearFlag, 1, 1, 0, 0, 0, 0, loc)
	for _, day := range dateutils.Days(jan1, dateutils.EndOfYear(jan1, loc), loc) {
		key := dateutils.DayKey(day, loc)
		if err := target.WriteDay(key, days[key]); err != nil {
			return err
		}
		count += len(days[key])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d receipts for %d into %s\n", count, yearFlag, outputDir)
	return nil
}

// GenerateYear builds one to three receipts for every local day of year,
// keyed by day. Categories are drawn from catalog, excluding MISC.
func GenerateYear(year int, catalog *models.CategoryCatalog, loc *time.Location, rng *rand.Rand) map[string][]models.Receipt {
	var categories []models.Category
	for _, c := range catalog.All() {
		if c.Key != models.CategoryMisc {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		categories = catalog.All()
	}

	jan1 := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
	out := make(map[string][]models.Receipt)
	for _, day := range dateutils.Days(jan1, dateutils.EndOfYear(jan1, loc), loc) {
		key := dateutils.DayKey(day, loc)
		n := rng.IntN(3) + 1
		for i := 0; i < n; i++ {
			out[key] = append(out[key], randomReceipt(day, categories, rng))
		}
	}
	return out
}

func randomReceipt(day time.Time, categories []models.Category, rng *rand.Rand) models.Receipt {
	at := day.Add(time.Duration(8+rng.IntN(12))*time.Hour + time.Duration(rng.IntN(60))*time.Minute)
	n := rng.IntN(3) + 1
	items := make([]models.Item, 0, n)
	for i := 0; i < n; i++ {
		cat := categories[rng.IntN(len(categories))]
		items = append(items, models.Item{
			Name:     fmt.Sprintf("%s Item %d", cat.Label(), i+1),
			Price:    decimal.NewFromInt(int64(50 + rng.IntN(451))),
			Category: cat.Key,
		})
	}
	r := models.Receipt{
		Date:  at.UTC(),
		Store: fmt.Sprintf("Store %d", rng.IntN(10)+1),
		Items: items,
	}
	return r.WithComputedAmount()
}
