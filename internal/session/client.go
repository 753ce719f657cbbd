package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/errs"
)

// Client performs authenticated calls: it attaches the access token and, on a 401,
// refreshes at most once per call before replaying it.
type Client struct {
	ep        *Endpoint
	sess      *Session
	refresher Refresher
	log       *zap.Logger
}

var _ Doer = (*Client)(nil)

// NewClient wires an endpoint, the session context and the refresher.
func NewClient(ep *Endpoint, sess *Session, r Refresher) *Client {
	return &Client{ep: ep, sess: sess, refresher: r, log: ep.log}
}

// Session returns the session context the client reads tokens from.
func (c *Client) Session() *Session { return c.sess }

// Do dispatches the call. A 401 triggers one refresh and one replay; a failed or
// impossible refresh terminates the session and returns errs.ErrSessionTerminated.
// A 401 on the replay is returned as *errs.HTTPError (errs.ErrUnauthorized) with no
// further refresh.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	req, err := newRequest(method, path, query, body)
	if err != nil {
		return nil, err
	}
	bearer := c.sess.AccessToken()
	resp, err := c.ep.send(ctx, req, bearer)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusUnauthorized {
		resp, err = c.retry(ctx, req, bearer)
		if err != nil {
			return nil, err
		}
	}
	return resp, check(resp)
}

// retry runs the single recovery attempt for req, which was rejected with bearer.
// A caller that gave up (ctx done) leaves the session as it is.
func (c *Client) retry(ctx context.Context, req *request, bearer string) (*Response, error) {
	if c.sess.RefreshToken() == "" {
		c.ep.metrics.Refresh("missing")
		c.log.Info("session expired without refresh token", zap.String("path", req.path))
		c.sess.Terminate(ctx)
		return nil, errs.ErrSessionTerminated
	}
	access, err := c.sess.Refresh(ctx, c.refresher, bearer)
	if err != nil && ctx.Err() != nil {
		c.ep.metrics.Refresh("abandoned")
		return nil, ctx.Err()
	}
	if err != nil {
		c.ep.metrics.Refresh("failed")
		c.log.Info("token refresh failed", zap.String("path", req.path), zap.Error(err))
		c.sess.Terminate(ctx)
		return nil, fmt.Errorf("%w: %v", errs.ErrSessionTerminated, err)
	}
	c.ep.metrics.Refresh("ok")
	return c.ep.send(ctx, req, access)
}
