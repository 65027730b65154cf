package budget

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// rupees renders an amount exactly, to the paisa, with Indian digit
// grouping. Only the whole rupees go through the printer so no float
// conversion touches the value.
func rupees(d decimal.Decimal) string {
	d = d.Round(2)

	whole, paise, _ := strings.Cut(d.Abs().StringFixed(2), ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return d.StringFixed(2)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	return sign + printer.Sprint(number.Decimal(n)) + "." + paise
}

// AllocationMismatchError is returned when a new head disagrees with the
// allocation already fixed for its scope.
type AllocationMismatchError struct {
	Attempted decimal.Decimal
	Existing  decimal.Decimal
}

func (e *AllocationMismatchError) Error() string {
	return fmt.Sprintf("%s: allocated %s differs from %s already set for this district and fiscal year",
		apperr.ErrAllocationMismatch, rupees(e.Attempted), rupees(e.Existing))
}

func (e *AllocationMismatchError) Is(target error) bool { return target == apperr.ErrAllocationMismatch }

// CumulativeSanctionExceededError reports a scope whose sanctions would
// overrun the allocation.
type CumulativeSanctionExceededError struct {
	Attempted decimal.Decimal
	Ceiling   decimal.Decimal
}

func (e *CumulativeSanctionExceededError) Error() string {
	return fmt.Sprintf("%s: total sanctioned %s would exceed allocated %s",
		apperr.ErrCumulativeSanctionExceeded, rupees(e.Attempted), rupees(e.Ceiling))
}

func (e *CumulativeSanctionExceededError) Is(target error) bool {
	return target == apperr.ErrCumulativeSanctionExceeded
}

// OrderViolationError reports a head where released ≤ sanctioned ≤ allocated
// does not hold.
type OrderViolationError struct {
	Field      string
	Amount     decimal.Decimal
	LimitField string
	Limit      decimal.Decimal
}

func (e *OrderViolationError) Error() string {
	return fmt.Sprintf("%s: %s %s exceeds %s %s",
		apperr.ErrBudgetOrderViolation, e.Field, rupees(e.Amount), e.LimitField, rupees(e.Limit))
}

func (e *OrderViolationError) Is(target error) bool { return target == apperr.ErrBudgetOrderViolation }

// ImmutableFieldError reports an update that tried to change a fixed amount.
type ImmutableFieldError struct {
	Field     string
	Current   decimal.Decimal
	Attempted decimal.Decimal
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%s: %s is %s and cannot be changed to %s",
		apperr.ErrImmutableField, e.Field, rupees(e.Current), rupees(e.Attempted))
}

func (e *ImmutableFieldError) Is(target error) bool { return target == apperr.ErrImmutableField }

// Check enforces the budget invariants on candidate before it is written.
// current is the stored head when candidate is an update and nil on create;
// others are the live heads in the same scope, excluding candidate.
func Check(candidate, current *Head, others []*Head) error {
	if current != nil && !current.AllocatedAmount.Equal(candidate.AllocatedAmount) {
		return &ImmutableFieldError{
			Field:     "allocated_amount",
			Current:   current.AllocatedAmount,
			Attempted: candidate.AllocatedAmount,
		}
	}

	if err := checkSigns(candidate); err != nil {
		return err
	}

	if current == nil {
		for _, o := range others {
			if !o.AllocatedAmount.Equal(candidate.AllocatedAmount) {
				return &AllocationMismatchError{Attempted: candidate.AllocatedAmount, Existing: o.AllocatedAmount}
			}
		}
	}

	if candidate.SanctionedAmount.GreaterThan(candidate.AllocatedAmount) {
		return &OrderViolationError{
			Field: "sanctioned_amount", Amount: candidate.SanctionedAmount,
			LimitField: "allocated_amount", Limit: candidate.AllocatedAmount,
		}
	}

	if candidate.ReleasedAmount.GreaterThan(candidate.SanctionedAmount) {
		return &OrderViolationError{
			Field: "released_amount", Amount: candidate.ReleasedAmount,
			LimitField: "sanctioned_amount", Limit: candidate.SanctionedAmount,
		}
	}

	total := candidate.SanctionedAmount
	for _, o := range others {
		total = total.Add(o.SanctionedAmount)
	}

	if total.GreaterThan(candidate.AllocatedAmount) {
		return &CumulativeSanctionExceededError{Attempted: total, Ceiling: candidate.AllocatedAmount}
	}

	return nil
}

func checkSigns(h *Head) error {
	var fields []apperr.FieldError

	for _, f := range []struct {
		name   string
		amount decimal.Decimal
	}{
		{"allocated_amount", h.AllocatedAmount},
		{"sanctioned_amount", h.SanctionedAmount},
		{"released_amount", h.ReleasedAmount},
	} {
		if f.amount.IsNegative() {
			fields = append(fields, apperr.FieldError{Field: f.name, Message: "must not be negative"})
		}
	}

	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}

	return nil
}

// stampDates records when each amount first became non-zero.
func stampDates(h *Head, now time.Time) {
	stamp := func(amount decimal.Decimal, date **time.Time) {
		if *date == nil && !amount.IsZero() {
			t := now
			*date = &t
		}
	}

	stamp(h.AllocatedAmount, &h.AllocatedDate)
	stamp(h.SanctionedAmount, &h.SanctionedDate)
	stamp(h.ReleasedAmount, &h.ReleaseDate)
}
