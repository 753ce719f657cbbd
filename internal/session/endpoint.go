package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/metrics"
	"github.com/and161185/pawnshop/internal/telemetry"
)

// maxBody caps how much of a response is read into memory.
const maxBody = 8 << 20

// Response is a fully read backend answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Doer is the request surface shared by Endpoint (anonymous) and Client (authenticated).
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error)
}

// request is one logical call; it can be dispatched more than once.
type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

// Endpoint sends anonymous requests relative to the versioned API base URL.
type Endpoint struct {
	base    *url.URL
	http    *http.Client
	log     *zap.Logger
	metrics *metrics.Metrics
}

var _ Doer = (*Endpoint)(nil)

// HTTPOptions tune the transport built by NewHTTPClient.
type HTTPOptions struct {
	Timeout time.Duration
	// Tracer enables a client span and a traceparent header per round trip.
	Tracer trace.TracerProvider
}

// NewHTTPClient builds the shared HTTP client: request logging and, with a tracer,
// OpenTelemetry spans around every round trip.
func NewHTTPClient(opts HTTPOptions, log *zap.Logger) *http.Client {
	if log == nil {
		log = zap.NewNop()
	}
	var rt http.RoundTripper = http.DefaultTransport
	if opts.Tracer != nil {
		rt = otelhttp.NewTransport(rt,
			otelhttp.WithTracerProvider(opts.Tracer),
			otelhttp.WithPropagators(telemetry.Propagator()),
		)
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &loggingTransport{next: rt, log: log},
	}
}

// NewEndpoint parses baseURL (e.g. http://localhost:8000/api/v1/).
func NewEndpoint(baseURL string, hc *http.Client, log *zap.Logger, m *metrics.Metrics) (*Endpoint, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse api url: %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Endpoint{base: u, http: hc, log: log, metrics: m}, nil
}

// Do sends an anonymous request and maps non-2xx answers to *errs.HTTPError.
func (e *Endpoint) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	req, err := newRequest(method, path, query, body)
	if err != nil {
		return nil, err
	}
	resp, err := e.send(ctx, req, "")
	if err != nil {
		return nil, err
	}
	return resp, check(resp)
}

func newRequest(method, path string, query url.Values, body any) (*request, error) {
	r := &request{method: method, path: strings.TrimPrefix(path, "/"), query: query}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		r.body = b
	}
	return r, nil
}

// send performs one round trip; only transport failures are errors here.
func (e *Endpoint) send(ctx context.Context, r *request, bearer string) (*Response, error) {
	u := e.base.ResolveReference(&url.URL{Path: r.path})
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	hreq, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Accept", "application/json")
	if r.body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	if id, err := uuid.NewV4(); err == nil {
		hreq.Header.Set("X-Request-ID", id.String())
	}
	if bearer != "" {
		hreq.Header.Set("Authorization", "Bearer "+bearer)
	}

	hresp, err := e.http.Do(hreq)
	if err != nil {
		e.metrics.Request(r.method, 0)
		return nil, err
	}
	defer hresp.Body.Close()
	e.metrics.Request(r.method, hresp.StatusCode)

	b, err := io.ReadAll(io.LimitReader(hresp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	return &Response{Status: hresp.StatusCode, Header: hresp.Header, Body: b}, nil
}

func check(r *Response) error {
	if r.Status >= 200 && r.Status < 300 {
		return nil
	}
	return &errs.HTTPError{Status: r.Status, Body: r.Body}
}

// loggingTransport logs metadata of every round trip; never payloads or credentials.
type loggingTransport struct {
	next http.RoundTripper
	log  *zap.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
		zap.Duration("dur", time.Since(start)),
	}
	if err != nil {
		t.log.Warn("http", append(fields, zap.Error(err))...)
		return nil, err
	}
	t.log.Debug("http", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}
