package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/metrics"
	"github.com/and161185/pawnshop/internal/model"
)

type fakeRefresher struct {
	calls atomic.Int32
	next  model.Tokens
	err   error
}

var _ Refresher = (*fakeRefresher)(nil)

func (f *fakeRefresher) Refresh(_ context.Context, _ string) (model.Tokens, error) {
	f.calls.Add(1)
	return f.next, f.err
}

// gateRefresher holds every exchange until release is closed or its ctx ends.
type gateRefresher struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	next    model.Tokens
}

func newGateRefresher(next model.Tokens) *gateRefresher {
	return &gateRefresher{entered: make(chan struct{}), release: make(chan struct{}), next: next}
}

func (f *gateRefresher) Refresh(ctx context.Context, _ string) (model.Tokens, error) {
	if f.calls.Add(1) == 1 {
		close(f.entered)
	}
	select {
	case <-f.release:
		return f.next, nil
	case <-ctx.Done():
		return model.Tokens{}, ctx.Err()
	}
}

// backend answers GET /api/v1/order with 200 only for the bearer in accept.
type backend struct {
	hits   atomic.Int32
	accept string
	status int // forced status when non-zero
	bearer atomic.Value
}

func (b *backend) server(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/v1/order", func(w http.ResponseWriter, req *http.Request) {
		b.hits.Add(1)
		b.bearer.Store(req.Header.Get("Authorization"))
		if req.Header.Get("X-Request-ID") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if b.status != 0 {
			w.WriteHeader(b.status)
			return
		}
		if req.Header.Get("Authorization") != "Bearer "+b.accept {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"status":"OK","result":[]}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srvURL string, tokens model.Tokens, r Refresher, terminated *atomic.Int32) (*Client, *MemoryStore, *metrics.Metrics) {
	t.Helper()
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	ep, err := NewEndpoint(srvURL+"/api/v1", nil, nil, m)
	require.NoError(t, err)
	store := NewMemoryStore(tokens)
	sess, err := New(context.Background(), store, OnTerminate(func() { terminated.Add(1) }))
	require.NoError(t, err)
	return NewClient(ep, sess, r), store, m
}

func TestClient_AttachesBearer(t *testing.T) {
	t.Parallel()
	be := &backend{accept: "A1"}
	srv := be.server(t)
	var term atomic.Int32
	c, _, _ := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1", RefreshToken: "R1"}, &fakeRefresher{}, &term)

	resp, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "Bearer A1", be.bearer.Load())
	require.EqualValues(t, 1, be.hits.Load())
}

func TestClient_RefreshAndRetryOnce(t *testing.T) {
	t.Parallel()
	be := &backend{accept: "A2"}
	srv := be.server(t)
	ref := &fakeRefresher{next: model.Tokens{AccessToken: "A2"}}
	var term atomic.Int32
	c, store, m := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1", RefreshToken: "R1"}, ref, &term)

	resp, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.EqualValues(t, 1, ref.calls.Load())
	require.EqualValues(t, 2, be.hits.Load())
	require.Equal(t, "Bearer A2", be.bearer.Load())
	require.Zero(t, term.Load())

	saved, _ := store.Load(context.Background())
	require.Equal(t, model.Tokens{AccessToken: "A2", RefreshToken: "R1"}, saved)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("ok")))
}

func TestClient_SecondUnauthorizedIsHardFailure(t *testing.T) {
	t.Parallel()
	be := &backend{accept: "never"}
	srv := be.server(t)
	ref := &fakeRefresher{next: model.Tokens{AccessToken: "A2"}}
	var term atomic.Int32
	c, _, _ := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1", RefreshToken: "R1"}, ref, &term)

	_, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.NotErrorIs(t, err, errs.ErrSessionTerminated)
	require.Equal(t, http.StatusUnauthorized, errs.Status(err))
	require.EqualValues(t, 1, ref.calls.Load(), "exactly one refresh")
	require.EqualValues(t, 2, be.hits.Load(), "original + one replay")
	require.Zero(t, term.Load())
}

func TestClient_NoRefreshTokenTerminates(t *testing.T) {
	t.Parallel()
	be := &backend{accept: "A9"}
	srv := be.server(t)
	ref := &fakeRefresher{}
	var term atomic.Int32
	c, store, _ := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1"}, ref, &term)

	_, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.ErrorIs(t, err, errs.ErrSessionTerminated)
	require.Zero(t, ref.calls.Load())
	require.EqualValues(t, 1, be.hits.Load())
	require.EqualValues(t, 1, term.Load())
	saved, _ := store.Load(context.Background())
	require.True(t, saved.Empty())
	require.Empty(t, c.Session().AccessToken())
}

func TestClient_RefreshFailureTerminates(t *testing.T) {
	t.Parallel()
	be := &backend{accept: "A9"}
	srv := be.server(t)
	ref := &fakeRefresher{err: errors.New("refresh rejected")}
	var term atomic.Int32
	c, store, _ := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1", RefreshToken: "R1"}, ref, &term)

	_, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.ErrorIs(t, err, errs.ErrSessionTerminated)
	require.EqualValues(t, 1, ref.calls.Load())
	require.EqualValues(t, 1, be.hits.Load())
	require.EqualValues(t, 1, term.Load())
	saved, _ := store.Load(context.Background())
	require.True(t, saved.Empty())
}

func TestClient_OtherErrorsSurfaceUnchanged(t *testing.T) {
	t.Parallel()
	be := &backend{status: http.StatusInternalServerError}
	srv := be.server(t)
	ref := &fakeRefresher{}
	var term atomic.Int32
	c, _, _ := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1", RefreshToken: "R1"}, ref, &term)

	_, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
	var he *errs.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusInternalServerError, he.Status)
	require.Zero(t, ref.calls.Load())
	require.Zero(t, term.Load())
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	var term atomic.Int32
	c, _, m := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1"}, &fakeRefresher{}, &term)

	_, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.Error(t, err)
	require.Zero(t, errs.Status(err))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "0")))
}

func TestNewEndpoint_RejectsRelative(t *testing.T) {
	t.Parallel()
	_, err := NewEndpoint("api/v1", nil, nil, nil)
	require.Error(t, err)
	ep, err := NewEndpoint("http://localhost:8000/api/v1", nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "/api/v1/", ep.base.Path)
}

func TestClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	t.Parallel()
	const n = 5
	be := &backend{accept: "A2"}
	srv := be.server(t)
	ref := newGateRefresher(model.Tokens{AccessToken: "A2"})
	var term atomic.Int32
	c, _, _ := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1", RefreshToken: "R1"}, ref, &term)

	var wg sync.WaitGroup
	statuses := make(chan int, n)
	failures := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
			if err != nil {
				failures <- err
				return
			}
			statuses <- resp.Status
		}()
	}

	<-ref.entered
	require.Eventually(t, func() bool { return be.hits.Load() == n }, time.Second, 5*time.Millisecond)
	require.True(t, c.Session().Refreshing())
	close(ref.release)
	wg.Wait()
	close(statuses)
	close(failures)

	for err := range failures {
		t.Fatalf("Do: %v", err)
	}
	for st := range statuses {
		require.Equal(t, http.StatusOK, st)
	}
	require.EqualValues(t, 1, ref.calls.Load())
	require.EqualValues(t, 2*n, be.hits.Load())
	require.Equal(t, "Bearer A2", be.bearer.Load())
	require.False(t, c.Session().Refreshing())
	require.Zero(t, term.Load())
}

func TestClient_CancelDuringRefreshKeepsSession(t *testing.T) {
	t.Parallel()
	be := &backend{accept: "A2"}
	srv := be.server(t)
	ref := newGateRefresher(model.Tokens{AccessToken: "A2"})
	var term atomic.Int32
	c, store, m := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1", RefreshToken: "R1"}, ref, &term)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Do(ctx, http.MethodGet, "order", nil, nil)
		done <- err
	}()
	<-ref.entered
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, errs.ErrSessionTerminated)
	require.Zero(t, term.Load())
	saved, _ := store.Load(context.Background())
	require.Equal(t, model.Tokens{AccessToken: "A1", RefreshToken: "R1"}, saved)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("abandoned")))

	// the exchange itself was not cancelled and lands for the next call
	close(ref.release)
	require.Eventually(t, func() bool { return !c.Session().Refreshing() && c.Session().AccessToken() == "A2" },
		time.Second, 5*time.Millisecond)
	resp, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.EqualValues(t, 1, ref.calls.Load())
}

func TestClient_ExpiryReportedOnce(t *testing.T) {
	t.Parallel()
	be := &backend{accept: "A9"}
	srv := be.server(t)
	var term atomic.Int32
	c, _, _ := newTestClient(t, srv.URL, model.Tokens{AccessToken: "A1"}, &fakeRefresher{}, &term)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Do(context.Background(), http.MethodGet, "order", nil, nil)
			assert.ErrorIs(t, err, errs.ErrSessionTerminated)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, term.Load())
}

func TestHTTPClient_TracesRoundTrips(t *testing.T) {
	t.Parallel()
	var traceparent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent.Store(r.Header.Get("traceparent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ep, err := NewEndpoint(srv.URL+"/api/v1", NewHTTPClient(HTTPOptions{Tracer: tp}, nil), nil, nil)
	require.NoError(t, err)
	_, err = ep.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.NoError(t, err)

	require.NotEmpty(t, traceparent.Load())
	require.Len(t, exp.GetSpans(), 1)

	ep, err = NewEndpoint(srv.URL+"/api/v1", NewHTTPClient(HTTPOptions{}, nil), nil, nil)
	require.NoError(t, err)
	_, err = ep.Do(context.Background(), http.MethodGet, "order", nil, nil)
	require.NoError(t, err)
	require.Empty(t, traceparent.Load())
	require.Len(t, exp.GetSpans(), 1)
}
