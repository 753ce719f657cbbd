// Package intake is the new-client form: phone lookup, validation and save.
package intake

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/phone"
)

// FieldName is the form field of the client name.
const FieldName = "cus_name"

// ClientStore is the backend surface the form needs.
type ClientStore interface {
	GetByPhone(ctx context.Context, digits string) (model.Client, error)
	Create(ctx context.Context, c model.Client) (model.Client, error)
}

// Form holds the typed values and inline field errors. It is not safe for
// concurrent use; one form belongs to one screen.
type Form struct {
	store  ClientStore
	notify notify.Func
	log    *zap.Logger

	Name    string
	Address string
	phone   string
	// ClientID is set after a successful lookup.
	ClientID int
	// Errors maps a field name to its inline message.
	Errors map[string]string
}

// New builds an empty form.
func New(store ClientStore, n notify.Func, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	return &Form{store: store, notify: n, log: log, Errors: map[string]string{}}
}

// Phone returns the display-formatted phone value.
func (f *Form) Phone() string { return f.phone }

// SetPhone accepts raw input. Input with more than phone.MaxDigits digits is
// rejected and leaves the value unchanged.
func (f *Form) SetPhone(raw string) bool {
	d := phone.Clean(raw)
	if len(d) > phone.MaxDigits {
		return false
	}
	f.phone = phone.Format(d)
	delete(f.Errors, phone.Field)
	if len(d) >= phone.MinDigits {
		f.fieldError(phone.Validate(d))
	}
	return true
}

// Lookup searches a client by the typed phone number and fills the form on success.
func (f *Form) Lookup(ctx context.Context) (model.Client, error) {
	d := phone.Clean(f.phone)
	if d == "" {
		err := &errs.ValidationError{Field: phone.Field, Message: notify.Message(notify.PhoneRequiredSearch)}
		return model.Client{}, f.reject(err)
	}
	if err := phone.Validate(d); err != nil {
		return model.Client{}, f.reject(err)
	}

	c, err := f.store.GetByPhone(ctx, d)
	if err != nil {
		f.log.Info("client lookup failed", zap.Error(err))
		if errors.Is(err, errs.ErrNotFound) {
			f.notify.Errorf(notify.ClientNotFound)
		} else {
			f.notify.Emit(notify.Error, notify.FromError(err, notify.ClientSearchError))
		}
		return model.Client{}, err
	}
	f.Name = c.Name
	f.Address = c.Address
	f.phone = phone.Format(c.PhoneNumber)
	f.ClientID = c.ID
	f.Errors = map[string]string{}
	f.notify.Emit(notify.Success, notify.ClientFoundMessage(c.Name))
	return c, nil
}

// Validate checks required fields and the phone length without any network call.
func (f *Form) Validate() error {
	f.Errors = map[string]string{}
	var first error
	if strings.TrimSpace(f.Name) == "" {
		first = &errs.ValidationError{Field: FieldName, Message: notify.Message(notify.CustomerNameRequired)}
		f.fieldError(first)
	}
	if err := phone.Validate(f.phone); err != nil {
		f.fieldError(err)
		if first == nil {
			first = err
		}
	}
	return first
}

// Save posts the client with a digits-only phone. On failure the form is kept.
func (f *Form) Save(ctx context.Context) (model.Client, error) {
	if err := f.Validate(); err != nil {
		f.notify.Emit(notify.Error, notify.FromError(err, notify.ClientSaveError))
		return model.Client{}, err
	}
	in := model.Client{
		Name:        strings.TrimSpace(f.Name),
		Address:     strings.TrimSpace(f.Address),
		PhoneNumber: phone.Clean(f.phone),
	}
	c, err := f.store.Create(ctx, in)
	if err != nil {
		f.log.Warn("client save failed", zap.Error(err))
		f.notify.Emit(notify.Error, notify.FromError(err, notify.ClientSaveError))
		return model.Client{}, err
	}
	f.notify.Successf(notify.ClientCreated)
	f.Reset()
	return c, nil
}

// Reset empties every field.
func (f *Form) Reset() {
	f.Name, f.Address, f.phone, f.ClientID = "", "", "", 0
	f.Errors = map[string]string{}
}

func (f *Form) reject(err error) error {
	f.fieldError(err)
	f.notify.Emit(notify.Error, notify.FromError(err, notify.InvalidPhone))
	return err
}

func (f *Form) fieldError(err error) {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		f.Errors[ve.Field] = ve.Message
	}
}

// NextID returns the id following the largest one in clients.
func NextID(clients []model.Client) int {
	top := 0
	for _, c := range clients {
		top = max(top, c.ID)
	}
	return top + 1
}
