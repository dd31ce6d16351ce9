package native

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/insolar/frostload"
)

const (
	DefaultSessionLifetime = 24 * time.Hour
	// session token is signed again when it expires sooner
	sessionRenewGap = time.Minute
)

type options struct {
	dialTimeout     time.Duration
	streamTimeout   time.Duration
	sessionLifetime time.Duration
	dump            bool
	logger          *frostload.Logger
}

// Option configures Connect
type Option func(*options)

// WithDialTimeout limits connection establishment
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithStreamTimeout limits one request round trip
func WithStreamTimeout(d time.Duration) Option {
	return func(o *options) { o.streamTimeout = d }
}

// WithSessionLifetime sets lifetime of self-signed session tokens
func WithSessionLifetime(d time.Duration) Option {
	return func(o *options) { o.sessionLifetime = d }
}

// WithDumpTransport prints every request and response
func WithDumpTransport(dump bool) Option {
	return func(o *options) { o.dump = dump }
}

// WithLogger sets client logger
func WithLogger(l *frostload.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Client is a handle bound to one endpoint and one identity
type Client struct {
	endpoint      string
	baseURL       string
	key           *ecdsa.PrivateKey
	owner         string
	lifetime      time.Duration
	streamTimeout time.Duration
	http          *frostload.FastHTTPClient
	L             *frostload.Logger

	tokMu  sync.RWMutex
	tok    string
	tokExp time.Time
}

// Connect builds a client without network I/O.
// credential is a hex encoded P-256 private key, empty credential generates a random one.
// Malformed credential returns ErrInvalidCredential, empty endpoint returns ErrInvalidEndpoint.
func Connect(endpoint, credential string, opts ...Option) (*Client, error) {
	o := options{sessionLifetime: DefaultSessionLifetime}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = frostload.NewNopLogger()
	}
	if endpoint == "" {
		return nil, errors.Wrap(ErrInvalidEndpoint, "empty endpoint")
	}
	key, err := ParsePrivateKey(credential)
	if err != nil {
		return nil, err
	}
	tok, exp, err := NewSessionToken(key, o.sessionLifetime)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:      endpoint,
		baseURL:       baseURL(endpoint),
		key:           key,
		owner:         OwnerID(&key.PublicKey),
		lifetime:      o.sessionLifetime,
		streamTimeout: o.streamTimeout,
		http:          frostload.NewLoggingFastHTTPClient(o.dump, o.dialTimeout),
		L:             o.logger.With("endpoint", endpoint),
		tok:           tok,
		tokExp:        exp,
	}
	c.L.Debugf("client connected, owner: %s", c.owner)
	return c, nil
}

// Endpoint the client is bound to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Owner id of client identity
func (c *Client) Owner() string {
	return c.owner
}

func baseURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimSuffix(endpoint, "/")
	}
	return "http://" + strings.TrimSuffix(endpoint, "/")
}

// bearer returns valid session token, signing a new one when current is about to expire
func (c *Client) bearer() (string, error) {
	c.tokMu.RLock()
	tok, exp := c.tok, c.tokExp
	c.tokMu.RUnlock()
	if time.Until(exp) > sessionRenewGap {
		return tok, nil
	}
	c.tokMu.Lock()
	defer c.tokMu.Unlock()
	if time.Until(c.tokExp) > sessionRenewGap {
		return c.tok, nil
	}
	tok, exp, err := NewSessionToken(c.key, c.lifetime)
	if err != nil {
		return "", err
	}
	c.tok, c.tokExp = tok, exp
	return tok, nil
}

// do sends prepared request to path and checks response status
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response, path string, expectStatus int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tok, err := c.bearer()
	if err != nil {
		return err
	}
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set(HeaderAuthorization, "Bearer "+tok)

	timeout := c.streamTimeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return context.DeadlineExceeded
		}
		if timeout == 0 || left < timeout {
			timeout = left
		}
	}
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return errors.Wrapf(err, "%s %s", req.Header.Method(), path)
	}
	if status := resp.StatusCode(); status != expectStatus {
		return statusError(status, resp.Body())
	}
	return nil
}

func statusError(status int, body []byte) error {
	var e ErrorResponse
	if err := jsoniter.Unmarshal(body, &e); err == nil && e.Message != "" {
		return fmt.Errorf("status %d: %s", status, e.Message)
	}
	return fmt.Errorf("status %d", status)
}
