package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/metrics"
	"github.com/and161185/pawnshop/internal/notify"
)

// DetailFetcher loads one expanded record.
type DetailFetcher[D any] func(ctx context.Context, id int) (D, error)

// DetailOptions configure a Detail.
type DetailOptions struct {
	Notify      notify.Func
	OnChange    func()
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	View        string
	NotFoundKey notify.Key
	ErrorKey    notify.Key
}

// Detail is a single-slot view: only the most recently requested record is kept.
type Detail[D any] struct {
	fetch DetailFetcher[D]
	opts  DetailOptions
	log   *zap.Logger

	mu      sync.Mutex
	seq     uint64
	id      int
	current D
	has     bool
	loading bool
}

// NewDetail builds a detail slot.
func NewDetail[D any](fetch DetailFetcher[D], opts DetailOptions) *Detail[D] {
	if opts.NotFoundKey == "" {
		opts.NotFoundKey = notify.ClientNotFound
	}
	if opts.ErrorKey == "" {
		opts.ErrorKey = notify.ClientDetailError
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Detail[D]{fetch: fetch, opts: opts, log: log}
}

// Fetch loads id into the slot. A response overtaken by a later Fetch or Back
// returns errs.ErrSuperseded and leaves the slot alone.
func (d *Detail[D]) Fetch(ctx context.Context, id int) (D, error) {
	var zero D
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.id = id
	d.loading = true
	d.mu.Unlock()
	d.changed()

	v, err := d.fetch(ctx, id)
	if missing(err) && !errors.Is(err, errs.ErrNotFound) {
		err = fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}

	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		d.opts.Metrics.Discarded(d.opts.View)
		return zero, errs.ErrSuperseded
	}
	d.loading = false
	if err != nil {
		d.current, d.has = zero, false
		d.mu.Unlock()
		d.log.Warn("detail fetch failed", zap.Int("id", id), zap.Error(err))
		var ae *errs.APIError
		if errors.Is(err, errs.ErrNotFound) && !(errors.As(err, &ae) && ae.Message != "") {
			d.opts.Notify.Errorf(d.opts.NotFoundKey)
		} else {
			d.opts.Notify.Emit(notify.Error, notify.FromError(err, d.opts.ErrorKey))
		}
		d.changed()
		return zero, err
	}
	d.current, d.has = v, true
	d.mu.Unlock()
	d.changed()
	return v, nil
}

// missing reports an envelope that failed with nothing to show: no result and no
// server message. Code 404 already unwraps to errs.ErrNotFound.
func missing(err error) bool {
	var ae *errs.APIError
	return errors.As(err, &ae) && !ae.HasResult && ae.Message == ""
}

// Current returns the displayed record, if any.
func (d *Detail[D]) Current() (D, int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, d.id, d.has
}

// Loading reports whether the latest Fetch is still running.
func (d *Detail[D]) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Back empties the slot and invalidates any fetch in flight.
func (d *Detail[D]) Back() {
	var zero D
	d.mu.Lock()
	d.seq++
	d.current, d.has, d.id, d.loading = zero, false, 0, false
	d.mu.Unlock()
	d.changed()
}

func (d *Detail[D]) changed() {
	if d.opts.OnChange != nil {
		d.opts.OnChange()
	}
}
