package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/report"
	"fjacquet/receipt-bot/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groupID int64 = -1001

var chicago = func() *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		panic(err)
	}
	return loc
}()

var fixedNow = time.Date(2024, 2, 14, 20, 0, 0, 0, chicago)

func catalog() *models.CategoryCatalog {
	return models.NewCategoryCatalog(models.DefaultCategories())
}

func item(name, price, category string) models.Item {
	return models.Item{Name: name, Price: decimal.RequireFromString(price), Category: category}
}

type fakeRecurring struct {
	expenses []models.RecurringExpense
	applied  int
	err      error
}

func (f *fakeRecurring) GetRecurringExpenses() ([]models.RecurringExpense, error) {
	return f.expenses, f.err
}

func (f *fakeRecurring) AddRecurringExpense(e models.RecurringExpense) error {
	if f.err != nil {
		return f.err
	}
	f.expenses = append(f.expenses, e)
	return nil
}

func (f *fakeRecurring) DeleteRecurringExpense(index int) (bool, error) {
	if index < 0 || index >= len(f.expenses) {
		return false, nil
	}
	f.expenses = append(f.expenses[:index], f.expenses[index+1:]...)
	return true, nil
}

func (f *fakeRecurring) AddMonthlyExpenses() (int, error) {
	f.applied++
	return len(f.expenses), f.err
}

type fakeExtractor struct {
	reply string
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, _ string) (string, error) {
	return f.reply, f.err
}

type harness struct {
	d         *Dispatcher
	receipts  *store.MockReceiptStore
	recurring *fakeRecurring
	logger    *logging.MockLogger
}

func newHarness(extractor ReceiptExtractor) *harness {
	receipts := store.NewMockReceiptStore(chicago)
	recurring := &fakeRecurring{}
	logger := logging.NewMockLogger()
	reports := report.NewGenerator(receipts, nil, catalog(), chicago, "$", logger)
	d := NewDispatcher(receipts, recurring, reports, extractor, Options{
		ChatID:         groupID,
		Location:       chicago,
		Catalog:        catalog(),
		CurrencySymbol: "$",
		PromptTemplate: "Read this receipt",
		Now:            func() time.Time { return fixedNow },
	}, logger)
	return &harness{d: d, receipts: receipts, recurring: recurring, logger: logger}
}

func (h *harness) send(text string) []Action {
	return h.d.Dispatch(context.Background(), groupID, TextMessage{Text: text})
}

func (h *harness) press(data string) []Action {
	return h.d.Dispatch(context.Background(), groupID, CallbackQuery{QueryID: "q", Data: data, MessageID: 42})
}

func (h *harness) step() Step {
	conv, ok := h.d.States().Get(groupID)
	if !ok {
		return StepIdle
	}
	return conv.Step
}

// texts returns the text of every SendText and EditText action.
func texts(actions []Action) []string {
	var out []string
	for _, a := range actions {
		switch v := a.(type) {
		case SendText:
			out = append(out, v.Text)
		case EditText:
			out = append(out, v.Text)
		}
	}
	return out
}

func lastText(t *testing.T, actions []Action) SendText {
	t.Helper()
	for i := len(actions) - 1; i >= 0; i-- {
		if st, ok := actions[i].(SendText); ok {
			return st
		}
	}
	t.Fatalf("no SendText in %v", actions)
	return SendText{}
}

func TestDispatch_ManualReceiptFlow(t *testing.T) {
	h := newHarness(nil)

	start := h.send("/add")
	assert.Equal(t, StepAwaitingDate, h.step())
	assert.Equal(t, cbTimeNow, lastText(t, start).Inline[0][0].Data)

	assert.Equal(t, []string{msgInvalidDate}, texts(h.send("next tuesday-ish")))
	assert.Equal(t, StepAwaitingDate, h.step())

	dateReply := h.send("2024-02-14 12:00")
	assert.Contains(t, lastText(t, dateReply).Text, "Date set to: 2024-02-14 12:00")
	assert.Equal(t, StepAwaitingStore, h.step())

	assert.Equal(t, []string{msgAskItemName}, texts(h.send("Costco")))
	assert.Equal(t, []string{msgAskItemPrice}, texts(h.send("Milk")))
	assert.Equal(t, []string{msgInvalidPrice}, texts(h.send("cheap")))
	assert.Equal(t, StepAwaitingItemPrice, h.step())

	catPrompt := lastText(t, h.send("$4.50"))
	assert.Equal(t, msgAskCategory, catPrompt.Text)
	assert.Len(t, catPrompt.Inline, 6)
	assert.Len(t, catPrompt.Inline[0], 2)
	assert.Equal(t, "cat_GROCERIES", catPrompt.Inline[0][0].Data)
	assert.Equal(t, []string{msgUseButtons}, texts(h.send("groceries")))

	afterCat := h.press("cat_GROCERIES")
	require.NotEmpty(t, afterCat)
	assert.Equal(t, AnswerCallback{QueryID: "q"}, afterCat[0])
	assert.Equal(t, msgItemAdded, lastText(t, afterCat).Text)
	assert.Equal(t, StepAwaitingNextAction, h.step())

	assert.Equal(t, []string{msgAskItemName}, texts(h.press(cbAddItem)))
	h.send("Bread")
	h.send("3")
	h.press("cat_DINING")

	done := h.press(cbFinish)
	assert.Equal(t, []string{"✅ Receipt saved! Costco $7.50"}, texts(done))
	assert.Equal(t, StepIdle, h.step())

	require.Len(t, h.receipts.Saved, 1)
	saved := h.receipts.Saved[0]
	assert.Equal(t, "Costco", saved.Store)
	assert.True(t, saved.Amount.Equal(decimal.RequireFromString("7.50")))
	assert.True(t, saved.Date.Equal(time.Date(2024, 2, 14, 18, 0, 0, 0, time.UTC)))
	require.Len(t, saved.Items, 2)
	assert.Equal(t, "GROCERIES", saved.Items[0].Category)
	assert.Equal(t, "DINING", saved.Items[1].Category)
}

func TestDispatch_TimeNowButton(t *testing.T) {
	h := newHarness(nil)
	h.send("/add")

	reply := h.press(cbTimeNow)
	assert.Contains(t, lastText(t, reply).Text, "Date set to: 2024-02-14 20:00")
	conv, _ := h.d.States().Get(groupID)
	assert.True(t, conv.Receipt.Date.Equal(fixedNow))
}

func TestDispatch_StaleButtons(t *testing.T) {
	tests := []string{cbTimeNow, "cat_GROCERIES", cbAddItem, cbFinish, "rcat_HOUSING", "mystery"}
	for _, data := range tests {
		t.Run(data, func(t *testing.T) {
			h := newHarness(nil)
			assert.Equal(t, []string{msgStaleButton}, texts(h.press(data)))
			assert.Empty(t, h.receipts.Saved)
		})
	}
}

func TestDispatch_CancelClearsState(t *testing.T) {
	h := newHarness(nil)
	h.send("/add")
	h.send("2024-02-14")
	assert.Equal(t, []string{msgCancelled}, texts(h.press(cbCancel)))
	assert.Equal(t, StepIdle, h.step())

	h.send("/add")
	assert.Equal(t, []string{msgCancelled}, texts(h.send("/cancel")))
	assert.Equal(t, StepIdle, h.step())
}

func TestDispatch_SaveFailureClearsState(t *testing.T) {
	h := newHarness(nil)
	h.receipts.SaveErr = errors.New("disk full")
	h.send("/add")
	h.send("2024-02-14 09:00")
	h.send("Shop")
	h.send("Soap")
	h.send("2")
	h.press("cat_MISC")

	assert.Equal(t, []string{msgGenericFailure}, texts(h.press(cbFinish)))
	assert.Equal(t, StepIdle, h.step())
	assert.True(t, h.logger.HasEntry("ERROR", "Failed to handle event"))
}

func TestDispatch_ChatGating(t *testing.T) {
	h := newHarness(nil)

	assert.Nil(t, h.d.Dispatch(context.Background(), 777, TextMessage{Text: "/day"}))
	assert.Nil(t, h.d.Dispatch(context.Background(), 777, CallbackQuery{QueryID: "x", Data: cbFinish}))

	menu := h.d.Dispatch(context.Background(), 777, MemberJoined{})
	require.Len(t, menu, 1)
	st := menu[0].(SendText)
	assert.Equal(t, msgMainMenu, st.Text)
	assert.Equal(t, ReplyKeyboard{{"/day", "/week"}, {"/month", "/year"}, {"/add", "/delete"}}, st.Reply)
}

func TestDispatch_UnrecognizedCommandIsSilent(t *testing.T) {
	h := newHarness(nil)
	assert.Nil(t, h.send("/dance"))
	assert.True(t, h.logger.HasEntry("DEBUG", "Unrecognized command"))
}

func TestDispatch_FreeTextJSON(t *testing.T) {
	h := newHarness(nil)

	assert.Nil(t, h.send("just chatting"))
	assert.Empty(t, h.receipts.Saved)

	rejected := h.send(`{"date": "2024-02-14", "store": "Shop", "items": []}`)
	assert.Equal(t, []string{"❌ at least one item is required"}, texts(rejected))
	assert.Empty(t, h.receipts.Saved)

	ok := h.send(`{"date": "2024-02-14 10:00", "store": "Shop", "items": [{"name": "Tea", "price": 2, "category": "GROCERIES"}]}`)
	assert.Equal(t, []string{"✅ Receipt saved! Shop $2.00"}, texts(ok))
	require.Len(t, h.receipts.Saved, 1)
}

func TestDispatch_JSONMode(t *testing.T) {
	h := newHarness(nil)

	prompt := h.send("/json")
	assert.Contains(t, lastText(t, prompt).Text, SubmissionExample)
	assert.Equal(t, StepAwaitingJSON, h.step())

	assert.Equal(t, []string{msgInvalidJSON}, texts(h.send("not json")))
	assert.Equal(t, StepIdle, h.step())

	h.send("/json")
	saved := h.send(`{"date": "2024-02-14T08:00:00", "store": "Cafe", "items": [{"name": "Latte", "price": 5.25, "category": "DINING"}]}`)
	assert.Equal(t, []string{"✅ Receipt saved! Cafe $5.25"}, texts(saved))
	assert.Equal(t, StepIdle, h.step())
}

func recent(day string, idx int, storeName, amount string) models.RecentReceipt {
	date, _ := time.ParseInLocation("2006-01-02 15:04", day+" 12:00", chicago)
	return models.RecentReceipt{
		Receipt: models.Receipt{Date: date.UTC(), Store: storeName, Amount: decimal.RequireFromString(amount)},
		Ref:     models.ReceiptRef{Day: day, Index: idx},
	}
}

func TestDispatch_DeleteFlow(t *testing.T) {
	h := newHarness(nil)

	assert.Equal(t, []string{msgNothingToDelete}, texts(h.send("/delete")))

	h.receipts.Recent = []models.RecentReceipt{
		recent("2024-02-14", 0, "Costco", "12"),
		recent("2024-02-13", 1, "Target", "8.5"),
	}
	list := lastText(t, h.send("/delete"))
	require.Len(t, list.Inline, 2)
	assert.Equal(t, "2024-02-14 12:00 Costco ($12.00)", list.Inline[0][0].Text)
	assert.Equal(t, "del_receipt_20240214_0", list.Inline[0][0].Data)
	assert.Equal(t, "del_receipt_20240213_1", list.Inline[1][0].Data)

	first := h.press("del_receipt_20240214_0")
	require.Len(t, first, 2)
	edit := first[1].(EditText)
	assert.Equal(t, 42, edit.MessageID)
	assert.Equal(t, msgDeletedMore, edit.Text)
	require.Len(t, edit.Keyboard, 1)
	assert.Equal(t, []models.ReceiptRef{{Day: "2024-02-14", Index: 0}}, h.receipts.Deleted)

	again := h.press("del_receipt_20240214_0")
	assert.Equal(t, []string{msgReceiptGone, msgChooseDelete}, texts(again))

	last := h.press("del_receipt_20240213_1")
	assert.Equal(t, []string{msgDeletedLast}, texts(last))
	assert.Nil(t, last[1].(EditText).Keyboard)

	assert.Equal(t, []string{msgStaleButton}, texts(h.press("del_receipt_garbage")))
}

func TestRefEncoding(t *testing.T) {
	ref := models.ReceiptRef{Day: "2024-12-01", Index: 3}
	data := encodeRef(ref)
	assert.Equal(t, "del_receipt_20241201_3", data)

	decoded, err := decodeRef(data)
	require.NoError(t, err)
	assert.Equal(t, ref, decoded)

	for _, bad := range []string{"del_receipt_", "del_receipt_2024_1", "del_receipt_20241201_x", "del_receipt_20241201_-1"} {
		_, err := decodeRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestDispatch_RecurringFlow(t *testing.T) {
	h := newHarness(nil)

	menu := lastText(t, h.send("/recurring"))
	assert.Equal(t, msgRecurringMenu, menu.Text)
	assert.Len(t, menu.Inline, 4)

	assert.Equal(t, []string{msgNoRecurring}, texts(h.press(cbRecurringList)))
	assert.Equal(t, []string{msgNoRecurringDelete}, texts(h.press(cbRecurringDelete)))

	assert.Equal(t, []string{msgAskRecurringStore}, texts(h.press(cbRecurringAdd)))
	assert.Equal(t, []string{msgAskRecurringAmount}, texts(h.send("Landlord")))
	assert.Equal(t, []string{msgInvalidAmount}, texts(h.send("-5")))
	assert.Equal(t, []string{msgAskRecurringDesc}, texts(h.send("1200")))
	cats := lastText(t, h.send("Rent"))
	assert.Equal(t, "rcat_GROCERIES", cats.Inline[0][0].Data)
	assert.Equal(t, StepAwaitingRecurringCategory, h.step())

	assert.Equal(t, []string{msgRecurringAdded}, texts(h.press("rcat_HOUSING")))
	assert.Equal(t, StepIdle, h.step())
	require.Len(t, h.recurring.expenses, 1)
	added := h.recurring.expenses[0]
	assert.Equal(t, "Landlord", added.Store)
	assert.Equal(t, "Rent", added.Description)
	assert.Equal(t, "HOUSING", added.Category)
	assert.True(t, added.Amount.Equal(decimal.NewFromInt(1200)))

	listing := texts(h.press(cbRecurringList))
	require.Len(t, listing, 1)
	assert.Contains(t, listing[0], "1. Landlord")
	assert.Contains(t, listing[0], "💰 Amount: $1200.00")
	assert.Contains(t, listing[0], "🏷️ Category: Housing")

	delList := lastText(t, h.press(cbRecurringDelete))
	assert.Equal(t, "1. Landlord ($1200.00)", delList.Inline[0][0].Text)
	assert.Equal(t, "del_recurring_0", delList.Inline[0][0].Data)

	assert.Equal(t, []string{"✅ Added 1 recurring expense(s) for this month"}, texts(h.press(cbRecurringMonthly)))
	assert.Equal(t, 1, h.recurring.applied)

	assert.Equal(t, []string{msgRecurringDeleted}, texts(h.press("del_recurring_0")))
	assert.Equal(t, []string{msgRecurringGone}, texts(h.press("del_recurring_0")))
}

func TestDispatch_Reports(t *testing.T) {
	h := newHarness(nil)

	empty := h.send("/day")
	assert.Equal(t, []string{"📊 Daily Report\n\n" + report.NoExpensesMessage}, texts(empty))

	h.receipts.Add(models.Receipt{
		Date:   fixedNow.UTC(),
		Store:  "Shop",
		Amount: decimal.NewFromInt(20),
		Items:  []models.Item{item("Food", "20", "GROCERIES")},
	})
	daily := texts(h.send("/day"))
	require.Len(t, daily, 1)
	assert.Contains(t, daily[0], "💰 Total: $20.00")
	assert.Contains(t, daily[0], "Groceries: $20.00 (100.0%)")

	yearly := h.send("/year")
	require.Len(t, yearly, 2)
	summary := yearly[0].(SendText)
	assert.Equal(t, ParseModeHTML, summary.ParseMode)
	assert.Contains(t, summary.Text, "<b>Yearly Report 2024</b>")
	offer := yearly[1].(SendText)
	assert.Equal(t, cbYearlyDetail, offer.Inline[0][0].Data)

	detail := lastText(t, h.press(cbYearlyDetail))
	assert.Equal(t, ParseModeHTML, detail.ParseMode)
	assert.Contains(t, detail.Text, "Annual Expense Report 2024")
	assert.Contains(t, detail.Text, "Total Annual Expenses: $20.00")
}

func TestDispatch_ReportFailure(t *testing.T) {
	h := newHarness(nil)
	h.receipts.ReadErr = errors.New("corrupt")
	assert.Equal(t, []string{msgGenericFailure}, texts(h.send("/week")))
}

func TestReportActions_UnsupportedKind(t *testing.T) {
	h := newHarness(nil)
	_, err := h.d.ReportActions(report.Kind("hourly"), fixedNow)
	assert.Error(t, err)
}

func TestDispatch_PromptAndStart(t *testing.T) {
	h := newHarness(nil)
	assert.Equal(t, []string{msgPromptHeader + "Read this receipt"}, texts(h.send("/prompt")))
	assert.Equal(t, []string{msgMainMenu}, texts(h.send("/start")))
}

func TestDispatch_Photo(t *testing.T) {
	photo := Photo{Image: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/jpeg"}

	t.Run("disabled", func(t *testing.T) {
		h := newHarness(nil)
		assert.Nil(t, h.d.Dispatch(context.Background(), groupID, photo))
	})

	t.Run("saved", func(t *testing.T) {
		h := newHarness(&fakeExtractor{reply: `{"date": "2024-02-14 11:00", "store": "Deli", "items": [{"name": "Bagel", "price": 3.5, "category": "DINING"}]}`})
		assert.Equal(t, []string{"✅ Receipt saved! Deli $3.50"}, texts(h.d.Dispatch(context.Background(), groupID, photo)))
		require.Len(t, h.receipts.Saved, 1)
	})

	t.Run("extractor error", func(t *testing.T) {
		h := newHarness(&fakeExtractor{err: errors.New("quota")})
		assert.Equal(t, []string{msgPhotoFailed}, texts(h.d.Dispatch(context.Background(), groupID, photo)))
	})

	t.Run("unreadable reply", func(t *testing.T) {
		h := newHarness(&fakeExtractor{reply: "I cannot read this"})
		assert.Equal(t, []string{msgPhotoFailed}, texts(h.d.Dispatch(context.Background(), groupID, photo)))
		assert.Empty(t, h.receipts.Saved)
	})
}

func TestAcceptsPhotos(t *testing.T) {
	assert.False(t, newHarness(nil).d.AcceptsPhotos(groupID))

	h := newHarness(&fakeExtractor{})
	assert.True(t, h.d.AcceptsPhotos(groupID))
	assert.False(t, h.d.AcceptsPhotos(777))
}

func TestRecover_ClearsStateAndReportsFailure(t *testing.T) {
	h := newHarness(nil)
	h.send("/add")
	h.send("2024-02-14 09:00")
	require.Equal(t, StepAwaitingStore, h.step())

	assert.Equal(t, []string{msgGenericFailure}, texts(h.d.Recover(groupID)))
	assert.Equal(t, StepIdle, h.step())
}

func TestRemoveReceipt(t *testing.T) {
	h := newHarness(nil)
	h.receipts.Recent = []models.RecentReceipt{recent("2024-02-14", 0, "Costco", "12")}

	require.NoError(t, h.d.removeReceipt(models.ReceiptRef{Day: "2024-02-14", Index: 0}))

	err := h.d.removeReceipt(models.ReceiptRef{Day: "2024-02-14", Index: 0})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Contains(t, err.Error(), "receipt not found")

	h.receipts.DeleteErr = errors.New("disk gone")
	err = h.d.removeReceipt(models.ReceiptRef{Day: "2024-02-13", Index: 1})
	require.Error(t, err)
	assert.False(t, apperror.IsNotFound(err))
}

func TestDispatch_DeleteGoneReceiptIsLogged(t *testing.T) {
	h := newHarness(nil)
	h.receipts.Recent = []models.RecentReceipt{recent("2024-02-13", 1, "Target", "8.5")}

	actions := h.press("del_receipt_20240214_0")
	assert.Equal(t, []string{msgReceiptGone, msgChooseDelete}, texts(actions))
	assert.True(t, h.logger.HasEntry("INFO", "Receipt to delete is gone"))

	h.receipts.DeleteErr = errors.New("disk gone")
	assert.Equal(t, []string{msgGenericFailure}, texts(h.press("del_receipt_20240213_1")))
}
