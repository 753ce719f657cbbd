package notify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	t.Parallel()
	require.Equal(t, "ទាញយកអតិថិជន 5 ចំនួនបានជោគជ័យ", Message(DataLoaded, "អតិថិជន", "5"))
	require.Equal(t, "Message not found: nope", Message(Key("nope")))
	require.Equal(t, Message(ClientFound)+": Dara", ClientFoundMessage("Dara"))
}

func TestFromError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &errs.ValidationError{Field: "phone", Message: "bad"}, "bad"},
		{"session", fmt.Errorf("wrap: %w", errs.ErrSessionTerminated), Message(Unauthorized)},
		{"popup", errs.ErrPopupBlocked, Message(PrintBlocked)},
		{"json", errs.ErrMalformedResponse, Message(BackendError)},
		{"api message", &errs.APIError{Code: 400, Message: "duplicate phone"}, "duplicate phone"},
		{"http 404", &errs.HTTPError{Status: 404}, Message(APIEndpointNotFound)},
		{"http 500", &errs.HTTPError{Status: 502}, Message(ServerError)},
		{"transport", errors.New("dial tcp: refused"), Message(SearchError)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FromError(tc.err, SearchError))
		})
	}
}

func TestFuncNilSafe(t *testing.T) {
	t.Parallel()
	var f Func
	f.Errorf(General)

	var got []Notification
	f = func(n Notification) { got = append(got, n) }
	f.Successf(SearchCompleted)
	require.Equal(t, []Notification{{Type: Success, Message: Message(SearchCompleted)}}, got)
}
