// Package api exposes the shop backend resources over a session.Doer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/pagination"
	"github.com/and161185/pawnshop/internal/session"
)

// CodeOK is the only envelope code treated as success.
const CodeOK = 200

// Envelope is the wrapper every backend response uses.
type Envelope[T any] struct {
	Code       int              `json:"code"`
	Status     string           `json:"status"`
	Message    string           `json:"message,omitempty"`
	Result     T                `json:"result"`
	Pagination *pagination.Info `json:"pagination,omitempty"`

	// hasResult is false when result was absent or null.
	hasResult bool
}

// HasResult reports whether the envelope carried a non-null result.
func (e Envelope[T]) HasResult() bool { return e.hasResult }

type rawEnvelope struct {
	Code       int              `json:"code"`
	Status     string           `json:"status"`
	Message    string           `json:"message,omitempty"`
	Result     json.RawMessage  `json:"result"`
	Pagination *pagination.Info `json:"pagination,omitempty"`
}

// Decode parses body and applies the code==200 rule.
func Decode[T any](body []byte) (Envelope[T], error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope[T]{}, fmt.Errorf("%w: %v", errs.ErrMalformedResponse, err)
	}
	env := Envelope[T]{Code: raw.Code, Status: raw.Status, Message: raw.Message, Pagination: raw.Pagination}
	if len(raw.Result) > 0 && !bytes.Equal(raw.Result, []byte("null")) {
		if err := json.Unmarshal(raw.Result, &env.Result); err != nil {
			return env, fmt.Errorf("%w: result: %v", errs.ErrMalformedResponse, err)
		}
		env.hasResult = true
	}
	if env.Code != CodeOK {
		return env, &errs.APIError{Code: env.Code, Status: env.Status, Message: env.Message, HasResult: env.hasResult}
	}
	return env, nil
}

func call[T any](ctx context.Context, d session.Doer, method, path string, q url.Values, body any) (Envelope[T], error) {
	resp, err := d.Do(ctx, method, path, q, body)
	if err != nil {
		return Envelope[T]{}, withServerMessage(err)
	}
	return Decode[T](resp.Body)
}

// withServerMessage lifts the envelope message out of a non-2xx body.
func withServerMessage(err error) error {
	var he *errs.HTTPError
	if !errors.As(err, &he) || len(he.Body) == 0 {
		return err
	}
	var raw rawEnvelope
	if json.Unmarshal(he.Body, &raw) != nil || raw.Message == "" {
		return err
	}
	hasResult := len(raw.Result) > 0 && !bytes.Equal(raw.Result, []byte("null"))
	return &errs.APIError{Code: he.Status, Status: raw.Status, Message: raw.Message, HasResult: hasResult}
}

func get[T any](ctx context.Context, d session.Doer, path string, q url.Values) (Envelope[T], error) {
	return call[T](ctx, d, http.MethodGet, path, q, nil)
}

// required turns a successful envelope without result into errs.ErrNotFound.
func required[T any](env Envelope[T], err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	if !env.HasResult() {
		var zero T
		return zero, errs.ErrNotFound
	}
	return env.Result, nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page < 1 {
		page = pagination.DefaultPage
	}
	if limit < 1 {
		limit = pagination.DefaultPageSize
	}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	return q
}
