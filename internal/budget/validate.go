package budget

import (
	"fmt"

	"github.com/mhartley/tally/internal/ledger"
	"github.com/mhartley/tally/internal/model"
)

// Validate checks the whole definition: header fields, the CUSTOM-period
// end-date rule (including ordering, which the requirement matrix cannot
// express), and every item. Returns nil on success.
func (d *Draft) Validate() FieldErrors {
	errs := FieldErrors{}

	if d.Name == "" {
		errs["name"] = "Name is required"
	}
	if !d.PeriodType.Valid() {
		errs["periodType"] = "Period Type is required"
	}

	var start, end struct {
		ok bool
		t  int64
	}
	if d.StartDate == "" {
		errs["startDate"] = "Start Date is required"
	} else if ts, err := model.ParseDate(d.StartDate); err != nil {
		errs["startDate"] = "Start Date must be YYYY-MM-DD"
	} else {
		start.ok, start.t = true, ts.Unix()
	}

	// End date only exists for CUSTOM periods; the service computes it for
	// the recurring ones.
	if d.PeriodType == model.PeriodCustom {
		if d.EndDate == "" {
			errs["endDate"] = "End Date is required for Custom Period"
		} else if te, err := model.ParseDate(d.EndDate); err != nil {
			errs["endDate"] = "End Date must be YYYY-MM-DD"
		} else {
			end.ok, end.t = true, te.Unix()
		}
		if start.ok && end.ok && end.t < start.t {
			errs["endDate"] = "End Date must not be before Start Date"
		}
	}

	if d.TotalLimit != "" {
		if amount, err := model.ParseAmount(d.TotalLimit); err != nil {
			errs["totalLimit"] = "Overall Limit must be a number"
		} else if !amount.Positive() {
			errs["totalLimit"] = "Overall Limit must be greater than zero"
		}
	}

	for i, item := range d.items {
		if item.CategoryID == "" {
			errs[fmt.Sprintf("items[%d].categoryId", i)] = "Category is required"
		}
		if amount, err := model.ParseAmount(item.LimitAmount); err != nil {
			errs[fmt.Sprintf("items[%d].limitAmount", i)] = "Limit must be a number"
		} else if amount < 1 { // minimum 0.01
			errs[fmt.Sprintf("items[%d].limitAmount", i)] = "Limit must be at least 0.01"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// BuildPayload maps the validated draft into the create-budget request,
// preserving item order for deterministic round-tripping.
func (d *Draft) BuildPayload(userID string) (*ledger.BudgetRequest, error) {
	if errs := d.Validate(); errs != nil {
		return nil, errs
	}

	req := &ledger.BudgetRequest{
		UserID:     userID,
		Name:       d.Name,
		PeriodType: d.PeriodType,
		StartDate:  d.StartDate,
		Notes:      d.Notes,
		Items:      make([]ledger.BudgetItemRequest, 0, len(d.items)),
	}
	if d.PeriodType == model.PeriodCustom {
		req.EndDate = d.EndDate
	}
	if d.TotalLimit != "" {
		limit, err := model.ParseAmount(d.TotalLimit)
		if err != nil {
			return nil, fmt.Errorf("total limit no longer parses: %w", err)
		}
		req.TotalLimit = &limit
	}
	for _, item := range d.items {
		limit, err := model.ParseAmount(item.LimitAmount)
		if err != nil {
			return nil, fmt.Errorf("item limit no longer parses: %w", err)
		}
		req.Items = append(req.Items, ledger.BudgetItemRequest{
			CategoryID:  item.CategoryID,
			LimitAmount: limit,
		})
	}
	return req, nil
}
