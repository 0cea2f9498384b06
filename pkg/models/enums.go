package models

import "fmt"

// AccountType is the standard financial category assigned to a GL account.
type AccountType string

const (
	AccountRevenue      AccountType = "revenue"
	AccountReturns      AccountType = "returns"
	AccountCOGS         AccountType = "cogs"
	AccountOpex         AccountType = "opex"
	AccountDepreciation AccountType = "depreciation"
	AccountInterest     AccountType = "interest"
	AccountOtherIncome  AccountType = "other_income"
	AccountOtherExpense AccountType = "other_expense"
	AccountAsset        AccountType = "asset"
	AccountLiability    AccountType = "liability"
	AccountEquity       AccountType = "equity"
	AccountUnknown      AccountType = "unknown"
)

// AdjustmentCategory determines how an adjustment shifts the EBITDA
// components (see calc.ApplyAdjustments for the sign rules).
type AdjustmentCategory string

const (
	AdjustmentAddBack             AdjustmentCategory = "add_back"
	AdjustmentEliminate           AdjustmentCategory = "eliminate"
	AdjustmentNormalize           AdjustmentCategory = "normalize"
	AdjustmentAccrualConversion   AdjustmentCategory = "accrual_conversion"
	AdjustmentCurrencyTranslation AdjustmentCategory = "currency_translation"
)

// ParseAdjustmentCategory converts a free-text category value into an
// AdjustmentCategory. It fails closed: unrecognized values are an error,
// never a silent default.
func ParseAdjustmentCategory(s string) (AdjustmentCategory, error) {
	switch AdjustmentCategory(s) {
	case AdjustmentAddBack, AdjustmentEliminate, AdjustmentNormalize,
		AdjustmentAccrualConversion, AdjustmentCurrencyTranslation:
		return AdjustmentCategory(s), nil
	}
	return "", fmt.Errorf("unknown adjustment category %q", s)
}
