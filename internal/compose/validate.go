package compose

import (
	"github.com/mhartley/tally/internal/model"
)

// validateDraft applies the requirement matrix plus the cross-field rules
// the matrix cannot express. The returned set is dense: one entry per
// failing field, never a partial report.
func validateDraft(d Draft) FieldErrors {
	errs := FieldErrors{}
	required := RequiredFields(d.Mode)

	if required.Has(FieldDate) {
		if d.Date == "" {
			errs[FieldDate] = "Date is required"
		} else if _, err := model.ParseDate(d.Date); err != nil {
			errs[FieldDate] = "Date must be YYYY-MM-DD"
		}
	}

	if required.Has(FieldAmount) {
		switch amount, err := model.ParseAmount(d.Amount); {
		case d.Amount == "":
			errs[FieldAmount] = "Amount is required"
		case err != nil:
			errs[FieldAmount] = "Amount must be a number"
		case !amount.Positive():
			errs[FieldAmount] = "Amount must be greater than zero"
		}
	}

	if required.Has(FieldCurrency) && d.CurrencyCode == "" {
		errs[FieldCurrency] = "Currency is required"
	}
	if required.Has(FieldAccount) && d.AccountID == "" {
		errs[FieldAccount] = "Account is required"
	}
	if required.Has(FieldCategory) && d.CategoryID == "" {
		errs[FieldCategory] = "Category is required"
	}

	if d.Mode == model.ModeTransfer {
		if d.SourceAccountID == "" {
			errs[FieldSource] = "Source Account is required"
		}
		if d.DestinationAccountID == "" {
			errs[FieldDestination] = "Destination Account is required"
		} else if d.SourceAccountID != "" && d.SourceAccountID == d.DestinationAccountID {
			// Cross-field rule: both endpoints may be individually valid
			// and still name the same account.
			errs[FieldDestination] = "Source and Destination cannot be same"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
