package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mhartley/tally/internal/ledger"
	"github.com/mhartley/tally/internal/model"
)

// Poster is the slice of the ledger client the composer submits through.
type Poster interface {
	CreatePosting(ctx context.Context, req ledger.PostingRequest, allowNegative bool) error
	CreateTransfer(ctx context.Context, req ledger.TransferRequest, allowNegative bool) error
}

// ErrSubmitInFlight is returned when a second submit races an outstanding
// one on the same draft. One draft, one posting.
var ErrSubmitInFlight = errors.New("a submit is already in flight for this draft")

// ErrNotValidated is returned by BuildPayload when the draft has not passed
// validation.
var ErrNotValidated = errors.New("draft has not passed validation")

// Payload is the immutable, mode-correct submission shape. Exactly one of
// Posting or Transfer is set.
type Payload struct {
	Posting       *ledger.PostingRequest
	Transfer      *ledger.TransferRequest
	AllowNegative bool
}

// Composer owns the form state for one in-progress entry. It is exclusively
// owned by the dialog or command that created it; methods are synchronized
// only so an in-flight submit can be fenced against concurrent edits.
type Composer struct {
	poster          Poster
	userID          string
	defaultCurrency string

	mu         sync.Mutex
	draft      Draft
	errs       FieldErrors
	validated  bool
	submitting bool
}

// New creates a composer starting in expense mode with a fresh draft.
func New(poster Poster, userID, defaultCurrency string) *Composer {
	return &Composer{
		poster:          poster,
		userID:          userID,
		defaultCurrency: defaultCurrency,
		draft:           newDraft(model.ModeExpense, defaultCurrency),
	}
}

// Draft returns a copy of the current draft.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Errors returns the validation errors from the last Validate call, or nil.
func (c *Composer) Errors() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// SetMode replaces the mode-specific portion of the draft with fresh
// defaults, keeps the common sub-record (date, description, reference,
// overdraft override), and clears validation errors. Rejected while a
// submit is in flight.
func (c *Composer) SetMode(mode model.EntryMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown entry mode %q", mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitInFlight
	}
	c.draft = c.draft.withMode(mode, c.defaultCurrency)
	c.errs = nil
	c.validated = false
	return nil
}

// SetField mutates one named field. No eager validation; errors surface at
// the next Validate. Fields hidden for the current mode are rejected so the
// form and the payload cannot disagree.
func (c *Composer) SetField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitInFlight
	}
	if HiddenFields(c.draft.Mode).Has(field) {
		return fmt.Errorf("field %s is not available for %s entries", field, c.draft.Mode)
	}

	switch field {
	case FieldDate:
		c.draft.Date = value
	case FieldAmount:
		c.draft.Amount = value
	case FieldCurrency:
		c.draft.CurrencyCode = value
	case FieldAccount:
		c.draft.AccountID = value
	case FieldSource:
		c.draft.SourceAccountID = value
	case FieldDestination:
		c.draft.DestinationAccountID = value
	case FieldCategory:
		c.draft.CategoryID = value
	case FieldMerchant:
		c.draft.MerchantID = value
	case FieldPaymentMethod:
		c.draft.PaymentMethodID = value
	case FieldStatus:
		status, err := model.ParseTransactionStatus(value)
		if err != nil {
			return err
		}
		c.draft.Status = status
	case FieldDescription:
		c.draft.Description = value
	case FieldReference:
		c.draft.ReferenceNumber = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	c.validated = false
	return nil
}

// SetAllowNegative toggles the explicit overdraft override.
func (c *Composer) SetAllowNegative(allow bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.AllowNegative = allow
	c.validated = false
}

// Validate checks every field the matrix requires for the current mode,
// plus the cross-field transfer invariant. Returns nil on success,
// otherwise one entry per failing field.
func (c *Composer) Validate() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Composer) validateLocked() FieldErrors {
	errs := validateDraft(c.draft)
	if len(errs) == 0 {
		c.errs = nil
		c.validated = true
		return nil
	}
	c.errs = errs
	c.validated = false
	return errs
}

// BuildPayload shapes the validated draft into the exact request for its
// mode. Callable only after Validate succeeds.
func (c *Composer) BuildPayload() (*Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.validated {
		return nil, ErrNotValidated
	}
	return c.buildPayloadLocked()
}

func (c *Composer) buildPayloadLocked() (*Payload, error) {
	amount, err := model.ParseAmount(c.draft.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount no longer parses: %w", err)
	}

	if c.draft.Mode == model.ModeTransfer {
		return &Payload{
			Transfer: &ledger.TransferRequest{
				UserID:               c.userID,
				SourceAccountID:      c.draft.SourceAccountID,
				DestinationAccountID: c.draft.DestinationAccountID,
				Amount:               amount,
				TransferDate:         c.draft.Date,
				Description:          c.draft.Description,
				ReferenceNumber:      c.draft.ReferenceNumber,
			},
			AllowNegative: c.draft.AllowNegative,
		}, nil
	}

	return &Payload{
		Posting: &ledger.PostingRequest{
			UserID:          c.userID,
			AccountID:       c.draft.AccountID,
			CategoryID:      c.draft.CategoryID,
			Type:            c.draft.Mode,
			Amount:          amount,
			CurrencyCode:    c.draft.CurrencyCode,
			TransactionDate: c.draft.Date,
			Status:          c.draft.Status,
			MerchantID:      c.draft.MerchantID,
			PaymentMethodID: c.draft.PaymentMethodID,
			Description:     c.draft.Description,
			ReferenceNumber: c.draft.ReferenceNumber,
		},
		AllowNegative: c.draft.AllowNegative,
	}, nil
}

// Submit validates, builds and sends the draft. On success the draft is
// replaced with fresh defaults for the same mode and the caller should
// refresh dependent views. On any failure the draft is left exactly as the
// user typed it.
//
// Only one submit may be outstanding per draft; a concurrent second call
// fails with ErrSubmitInFlight rather than risking a duplicate posting.
func (c *Composer) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if errs := c.validateLocked(); errs != nil {
		c.mu.Unlock()
		return errs
	}
	// A stable client reference doubles as an idempotency key: retries of
	// this draft reuse it, so the service can spot an accidental repost.
	if c.draft.ReferenceNumber == "" {
		c.draft.ReferenceNumber = "tally-" + uuid.NewString()
	}
	payload, err := c.buildPayloadLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.submitting = true
	mode := c.draft.Mode
	c.mu.Unlock()

	if payload.Transfer != nil {
		err = c.poster.CreateTransfer(ctx, *payload.Transfer, payload.AllowNegative)
	} else {
		err = c.poster.CreatePosting(ctx, *payload.Posting, payload.AllowNegative)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		slog.Debug("Submit failed, draft preserved", "mode", mode, "error", err)
		return err
	}
	c.draft = newDraft(mode, c.defaultCurrency)
	c.errs = nil
	c.validated = false
	return nil
}
