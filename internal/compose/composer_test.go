package compose

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mhartley/tally/internal/ledger"
	"github.com/mhartley/tally/internal/model"
)

type fakePoster struct {
	mu        sync.Mutex
	postings  []ledger.PostingRequest
	transfers []ledger.TransferRequest
	flags     []bool
	err       error
	block     chan struct{} // when set, CreatePosting blocks until closed
}

func (f *fakePoster) CreatePosting(_ context.Context, req ledger.PostingRequest, allowNegative bool) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.postings = append(f.postings, req)
	f.flags = append(f.flags, allowNegative)
	return nil
}

func (f *fakePoster) CreateTransfer(_ context.Context, req ledger.TransferRequest, allowNegative bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.transfers = append(f.transfers, req)
	f.flags = append(f.flags, allowNegative)
	return nil
}

func newExpenseComposer(poster Poster) *Composer {
	c := New(poster, "42", "PKR")
	mustSet := func(field, value string) {
		if err := c.SetField(field, value); err != nil {
			panic(err)
		}
	}
	mustSet(FieldAccount, "A1")
	mustSet(FieldCategory, "C1")
	mustSet(FieldAmount, "50.00")
	mustSet(FieldDate, "2025-01-10")
	return c
}

func TestRequiredFieldsMatrix(t *testing.T) {
	tests := []struct {
		mode     model.EntryMode
		required []string
		hidden   []string
	}{
		{model.ModeExpense, []string{FieldDate, FieldAmount, FieldCurrency, FieldAccount, FieldCategory}, []string{FieldSource, FieldDestination}},
		{model.ModeIncome, []string{FieldDate, FieldAmount, FieldCurrency, FieldAccount, FieldCategory}, []string{FieldSource, FieldDestination}},
		{model.ModeTransfer, []string{FieldDate, FieldAmount, FieldSource, FieldDestination}, []string{FieldAccount, FieldCategory, FieldCurrency, FieldStatus}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			required := RequiredFields(tt.mode)
			if len(required) != len(tt.required) {
				t.Errorf("RequiredFields(%s) has %d fields; want %d", tt.mode, len(required), len(tt.required))
			}
			for _, f := range tt.required {
				if !required.Has(f) {
					t.Errorf("RequiredFields(%s) missing %s", tt.mode, f)
				}
			}
			hidden := HiddenFields(tt.mode)
			for _, f := range tt.hidden {
				if !hidden.Has(f) {
					t.Errorf("HiddenFields(%s) missing %s", tt.mode, f)
				}
				if required.Has(f) {
					t.Errorf("%s is both required and hidden for %s", f, tt.mode)
				}
			}
		})
	}
}

func TestValidateNamesEveryMissingRequiredField(t *testing.T) {
	for _, mode := range model.Modes() {
		t.Run(string(mode), func(t *testing.T) {
			c := New(&fakePoster{}, "42", "")
			if err := c.SetMode(mode); err != nil {
				t.Fatalf("SetMode: %v", err)
			}
			// Blank out the defaults so nothing passes.
			if err := c.SetField(FieldDate, ""); err != nil {
				t.Fatalf("SetField: %v", err)
			}

			errs := c.Validate()
			if errs == nil {
				t.Fatal("Validate() = nil; want errors")
			}
			for field := range RequiredFields(mode) {
				if _, ok := errs[field]; !ok {
					t.Errorf("missing error for required field %s", field)
				}
			}
		})
	}
}

func TestValidateRejectsNonPositiveAmounts(t *testing.T) {
	for _, mode := range model.Modes() {
		for _, amount := range []string{"0", "0.00", "-5", "-0.01"} {
			c := New(&fakePoster{}, "42", "PKR")
			if err := c.SetMode(mode); err != nil {
				t.Fatalf("SetMode: %v", err)
			}
			if err := c.SetField(FieldAmount, amount); err != nil {
				t.Fatalf("SetField: %v", err)
			}
			errs := c.Validate()
			if errs == nil || errs[FieldAmount] == "" {
				t.Errorf("mode %s amount %q: want amount error, got %v", mode, amount, errs)
			}
		}
	}
}

func TestTransferSameAccountFailsRegardlessOfAmount(t *testing.T) {
	c := New(&fakePoster{}, "42", "PKR")
	if err := c.SetMode(model.ModeTransfer); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	for field, value := range map[string]string{
		FieldSource:      "A1",
		FieldDestination: "A1",
		FieldAmount:      "10",
		FieldDate:        "2025-03-01",
	} {
		if err := c.SetField(field, value); err != nil {
			t.Fatalf("SetField(%s): %v", field, err)
		}
	}

	errs := c.Validate()
	if errs == nil {
		t.Fatal("Validate() = nil; want same-account error")
	}
	if errs[FieldDestination] != "Source and Destination cannot be same" {
		t.Errorf("destination error = %q", errs[FieldDestination])
	}
	if _, ok := errs[FieldAmount]; ok {
		t.Error("amount flagged even though it is valid")
	}
}

func TestExpenseScenarioBuildsPostingPayload(t *testing.T) {
	c := newExpenseComposer(&fakePoster{})

	if errs := c.Validate(); errs != nil {
		t.Fatalf("Validate() = %v; want success", errs)
	}
	payload, err := c.BuildPayload()
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	if payload.Transfer != nil {
		t.Fatal("expense draft built a transfer payload")
	}
	p := payload.Posting
	if p.Type != model.ModeExpense {
		t.Errorf("Type = %s; want EXPENSE", p.Type)
	}
	if p.Amount.String() != "50.00" {
		t.Errorf("Amount = %s; want 50.00", p.Amount)
	}
	if p.CurrencyCode != "PKR" {
		t.Errorf("CurrencyCode = %s; want PKR", p.CurrencyCode)
	}
	if p.Status != model.StatusCleared {
		t.Errorf("Status = %s; want CLEARED", p.Status)
	}
	if payload.AllowNegative {
		t.Error("AllowNegative = true; want default false")
	}
}

func TestTransferScenarioSubmitsTransfer(t *testing.T) {
	poster := &fakePoster{}
	c := New(poster, "42", "PKR")
	if err := c.SetMode(model.ModeTransfer); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	for field, value := range map[string]string{
		FieldSource:      "A1",
		FieldDestination: "A2",
		FieldAmount:      "200.00",
		FieldDate:        "2025-01-10",
	} {
		if err := c.SetField(field, value); err != nil {
			t.Fatalf("SetField(%s): %v", field, err)
		}
	}
	c.SetAllowNegative(true)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(poster.postings) != 0 {
		t.Fatal("transfer draft hit the posting endpoint")
	}
	if len(poster.transfers) != 1 {
		t.Fatalf("got %d transfers; want 1", len(poster.transfers))
	}
	req := poster.transfers[0]
	if req.SourceAccountID != "A1" || req.DestinationAccountID != "A2" {
		t.Errorf("accounts = %s -> %s", req.SourceAccountID, req.DestinationAccountID)
	}
	if req.Amount.String() != "200.00" {
		t.Errorf("Amount = %s; want 200.00", req.Amount)
	}
	if req.TransferDate != "2025-01-10" {
		t.Errorf("TransferDate = %s", req.TransferDate)
	}
	if !poster.flags[0] {
		t.Error("allowNegative flag not forwarded")
	}
}

func TestBuildPayloadRequiresValidation(t *testing.T) {
	c := newExpenseComposer(&fakePoster{})
	if _, err := c.BuildPayload(); !errors.Is(err, ErrNotValidated) {
		t.Errorf("BuildPayload before Validate = %v; want ErrNotValidated", err)
	}
}

func TestModeSwitchPreservesCommonSubRecord(t *testing.T) {
	c := newExpenseComposer(&fakePoster{})
	for field, value := range map[string]string{
		FieldDescription: "weekly groceries",
		FieldReference:   "REF-7",
	} {
		if err := c.SetField(field, value); err != nil {
			t.Fatalf("SetField(%s): %v", field, err)
		}
	}
	c.SetAllowNegative(true)
	c.Validate()

	if err := c.SetMode(model.ModeTransfer); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	d := c.Draft()
	if d.Date != "2025-01-10" || d.Description != "weekly groceries" || d.ReferenceNumber != "REF-7" || !d.AllowNegative {
		t.Errorf("common sub-record not preserved: %+v", d)
	}
	if d.AccountID != "" || d.CategoryID != "" || d.Amount != "" {
		t.Errorf("mode-specific fields not reset: %+v", d)
	}
	if c.Errors() != nil {
		t.Error("validation errors not cleared on mode switch")
	}
}

func TestHiddenFieldRejectedForMode(t *testing.T) {
	c := New(&fakePoster{}, "42", "PKR")
	if err := c.SetField(FieldSource, "A1"); err == nil {
		t.Error("expense draft accepted sourceAccountId")
	}
	if err := c.SetMode(model.ModeTransfer); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if err := c.SetField(FieldCategory, "C1"); err == nil {
		t.Error("transfer draft accepted categoryId")
	}
}

func TestSubmitSuccessResetsDraft(t *testing.T) {
	poster := &fakePoster{}
	c := newExpenseComposer(poster)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(poster.postings) != 1 {
		t.Fatalf("got %d postings; want 1", len(poster.postings))
	}
	if poster.postings[0].ReferenceNumber == "" {
		t.Error("no client reference generated")
	}
	d := c.Draft()
	if d.AccountID != "" || d.Amount != "" {
		t.Errorf("draft not reset after success: %+v", d)
	}
	if d.Mode != model.ModeExpense {
		t.Errorf("mode changed on reset: %s", d.Mode)
	}
}

func TestSubmitFailurePreservesDraftAndReference(t *testing.T) {
	poster := &fakePoster{err: errors.New("boom")}
	c := newExpenseComposer(poster)

	err := c.Submit(context.Background())
	if err == nil {
		t.Fatal("Submit succeeded against failing poster")
	}
	d := c.Draft()
	if d.AccountID != "A1" || d.Amount != "50.00" {
		t.Errorf("draft mutated on failure: %+v", d)
	}
	firstRef := d.ReferenceNumber
	if firstRef == "" {
		t.Fatal("no idempotency reference assigned")
	}

	poster.mu.Lock()
	poster.err = nil
	poster.mu.Unlock()
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if got := poster.postings[0].ReferenceNumber; got != firstRef {
		t.Errorf("retry used reference %q; want the original %q", got, firstRef)
	}
}

func TestSecondSubmitWhileInFlightIsRejected(t *testing.T) {
	poster := &fakePoster{block: make(chan struct{})}
	c := newExpenseComposer(poster)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()

	// Wait until the first submit is parked inside the poster.
	for {
		c.mu.Lock()
		inFlight := c.submitting
		c.mu.Unlock()
		if inFlight {
			break
		}
	}

	if err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second Submit = %v; want ErrSubmitInFlight", err)
	}
	close(poster.block)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
}

func TestValidationErrorNeverReachesPoster(t *testing.T) {
	poster := &fakePoster{}
	c := New(poster, "42", "PKR")
	err := c.Submit(context.Background())

	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("Submit = %v; want FieldErrors", err)
	}
	if len(poster.postings)+len(poster.transfers) != 0 {
		t.Error("invalid draft reached the network layer")
	}
}
