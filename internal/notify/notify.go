package notify

import (
	"errors"

	"github.com/and161185/pawnshop/internal/errs"
)

// Type distinguishes success from error notifications.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
)

// Notification is what every fetch-path outcome is converted into at the component boundary.
type Notification struct {
	Type    Type
	Message string
}

// Func receives notifications; nil is allowed and drops them.
type Func func(Notification)

// Emit calls f when it is set.
func (f Func) Emit(t Type, msg string) {
	if f != nil {
		f(Notification{Type: t, Message: msg})
	}
}

// Errorf emits an error notification with a table message.
func (f Func) Errorf(key Key, args ...string) { f.Emit(Error, Message(key, args...)) }

// Successf emits a success notification with a table message.
func (f Func) Successf(key Key, args ...string) { f.Emit(Success, Message(key, args...)) }

// FromError picks a message for err following the shop's error taxonomy.
// fallback is used for generic server/transport failures.
func FromError(err error, fallback Key) string {
	var (
		ve *errs.ValidationError
		ae *errs.APIError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, errs.ErrRateLimited):
		return Message(TooManyAttempts)
	case errors.Is(err, errs.ErrSessionTerminated), errors.Is(err, errs.ErrUnauthorized):
		return Message(Unauthorized)
	case errors.Is(err, errs.ErrPopupBlocked):
		return Message(PrintBlocked)
	case errors.Is(err, errs.ErrMalformedResponse):
		return Message(BackendError)
	case errors.As(err, &ae) && ae.Message != "":
		return ae.Message
	case errs.Status(err) == 404:
		return Message(APIEndpointNotFound)
	case errs.Status(err) >= 500:
		return Message(ServerError)
	}
	return Message(fallback)
}
