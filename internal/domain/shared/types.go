package shared

// TransactionType defines the kind of monetary event a transaction records
type TransactionType string

const (
	TransactionTypeRegular         TransactionType = "REGULAR"
	TransactionTypeStartingBalance TransactionType = "STARTING_BALANCE"
	TransactionTypeManual          TransactionType = "MANUAL"
	TransactionTypeFunding         TransactionType = "FUNDING"
	TransactionTypeRebalance       TransactionType = "REBALANCE"
)

// IsTransfer reports whether the type is a zero-sum category transfer.
// Transfers carry no account transaction.
func (t TransactionType) IsTransfer() bool {
	return t == TransactionTypeFunding || t == TransactionTypeRebalance
}

// CategoryType defines the role of a budgeting envelope
type CategoryType string

const (
	CategoryTypeRegular         CategoryType = "REGULAR"
	CategoryTypeUnassigned      CategoryType = "UNASSIGNED"
	CategoryTypeFundingPool     CategoryType = "FUNDING POOL"
	CategoryTypeAccountTransfer CategoryType = "ACCOUNT TRANSFER"
	CategoryTypeLoan            CategoryType = "LOAN"
)

// IsSystem reports whether the category is one of the fixed per-budget categories
func (t CategoryType) IsSystem() bool {
	return t == CategoryTypeUnassigned || t == CategoryTypeFundingPool || t == CategoryTypeAccountTransfer
}

// GroupType defines the kind of category container
type GroupType string

const (
	GroupTypeRegular GroupType = "REGULAR"
	GroupTypeSystem  GroupType = "SYSTEM"
	GroupTypeNoGroup GroupType = "NO GROUP"
)

// TrackingMode governs whether an account's transactions require category splits
type TrackingMode string

const (
	TrackingTransactions              TrackingMode = "Transactions"
	TrackingUncategorizedTransactions TrackingMode = "Uncategorized Transactions"
	TrackingBalances                  TrackingMode = "Balances"
)
