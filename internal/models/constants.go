package models

// Category keys with special meaning.
const (
	CategoryMisc       = "MISC"
	CategoryOtherLabel = "Other"
)

// MaxCategoryKeyLength keeps "rcat_"+key within Telegram's 64-byte
// callback data limit.
const MaxCategoryKeyLength = 58

// Data file naming.
const (
	ReceiptFilePrefix  = "receipts-"
	ReceiptFileExt     = ".json"
	RecurringFileName  = "recurring.json"
	CategoriesFileName = "categories.yaml"
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionDataFile   = 0644
)
