// Package phone validates and formats local (Cambodian) phone numbers.
package phone

import (
	"strings"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/notify"
)

// Accepted digit counts: landlines carry 8, mobiles 9, with slack on both sides.
const (
	MinDigits = 7
	MaxDigits = 10
)

// Field is the form field name used in validation errors.
const Field = "phone_number"

// Clean strips everything but ASCII digits.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks the digit count of s.
func Validate(s string) error {
	d := Clean(s)
	if d == "" {
		return &errs.ValidationError{Field: Field, Message: notify.Message(notify.PhoneNumberRequired)}
	}
	if len(d) < MinDigits || len(d) > MaxDigits {
		return &errs.ValidationError{Field: Field, Message: notify.Message(notify.PhoneLength)}
	}
	return nil
}

// Format groups digits for display: "012 345 678".
func Format(s string) string {
	d := Clean(s)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + " " + d[3:]
	case len(d) <= 9:
		return d[:3] + " " + d[3:6] + " " + d[6:]
	default:
		return d[:3] + " " + d[3:6] + " " + d[6:9] + " " + d[9:]
	}
}
