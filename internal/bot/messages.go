package bot

// User-facing texts.
const (
	msgMainMenu = "🤖 Receipt Assistant\n\n" +
		"Choose an option:\n\n" +
		"📊 View expense reports\n" +
		"➕ Add a receipt\n" +
		"❌ Delete a record"

	msgGenericFailure  = "❌ Something went wrong, please start again"
	msgCancelled       = "❌ Cancelled"
	msgStaleButton     = "⌛ This button has expired. Please start again."
	msgUseButtons      = "Please choose one of the buttons above."
	msgAskDate         = "Enter the receipt date and time (e.g. 2024-02-14 12:00)\nor tap the button below to use the current time"
	msgInvalidDate     = "❌ Invalid date format, please try again (e.g. 2024-02-14 12:00)"
	msgAskStore        = "Enter the store name"
	msgEmptyStore      = "❌ The store name cannot be empty, please try again"
	msgAskItemName     = "Enter the item name"
	msgEmptyItemName   = "❌ The item name cannot be empty, please try again"
	msgAskItemPrice    = "Enter the item price"
	msgInvalidPrice    = "❌ Invalid price, please try again"
	msgAskCategory     = "Choose the item category:"
	msgItemAdded       = "Item added! What next?"
	msgInvalidJSON     = "❌ Invalid JSON format"
	msgAskJSON         = "Send the receipt as JSON in this format:\n"
	msgPromptHeader    = "📝 AI extraction prompt:\n\n"
	msgPhotoFailed     = "❌ Could not read the receipt photo"
	msgNothingToDelete = "No receipts to delete"
	msgChooseDelete    = "Choose a receipt to delete:\n\n"
	msgDeletedMore     = "Choose a receipt to delete:\n\n✅ Previous receipt deleted"
	msgDeletedLast     = "✅ Receipt deleted\n\nNo more receipts to delete"
	msgReceiptGone     = "❌ That receipt no longer exists"

	msgRecurringMenu      = "📊 Recurring expenses\n\nChoose an action:"
	msgNoRecurring        = "No recurring expenses configured"
	msgNoRecurringDelete  = "No recurring expenses to delete"
	msgChooseRecurring    = "Choose a recurring expense to delete:"
	msgRecurringDeleted   = "✅ Recurring expense deleted"
	msgRecurringGone      = "❌ That recurring expense no longer exists"
	msgRecurringAdded     = "✅ Recurring expense added"
	msgAskRecurringStore  = "Enter the store name:"
	msgAskRecurringAmount = "Enter the monthly amount:"
	msgInvalidAmount      = "❌ Invalid amount, please enter a number greater than zero"
	msgAskRecurringDesc   = "Enter a short description:"
	msgEmptyDescription   = "❌ The description cannot be empty, please try again"

	msgDailyTrendCaption  = "Daily spending trend"
	msgYearlyChartCaption = "Yearly non-recurring expenses by category"
	msgYearlyDetailOffer  = "Need a detailed yearly report?\nIt contains the full numbers and can be pasted into an AI assistant for analysis."
	msgYearlyDetailHeader = "<b>Annual Expense Report</b>\n\n"
	msgAnalysisPrompt     = "Suggested prompt:\n" +
		"Please analyze this annual expense report and provide:\n" +
		"1. An overview of total spending\n" +
		"2. An analysis of the main expense categories\n" +
		"3. Unusual or noteworthy expenses\n" +
		"4. Suggestions for improvement"
)

// Callback data values and prefixes.
const (
	cbTimeNow          = "time_now"
	cbCategory         = "cat_"
	cbAddItem          = "add_item"
	cbFinish           = "finish"
	cbCancel           = "cancel"
	cbDeleteReceipt    = "del_receipt_"
	cbRecurringList    = "recurring_list"
	cbRecurringAdd     = "recurring_add"
	cbRecurringDelete  = "recurring_delete"
	cbRecurringMonthly = "recurring_add_monthly"
	cbDeleteRecurring  = "del_recurring_"
	cbRecurringCat     = "rcat_"
	cbYearlyDetail     = "generate_year_report"
)
