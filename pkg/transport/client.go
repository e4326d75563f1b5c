package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/observability"
)

const (
	// DefaultTimeout bounds a single panel call when Options.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	// maxResponseBody bounds how much of a response body is read.
	maxResponseBody = 32 << 20

	defaultRetryInterval = 200 * time.Millisecond
)

// Options configures a Client.
type Options struct {
	// Kind labels logs, metrics and errors with the backend family.
	Kind api.Kind

	// Timeout bounds each call including its retries. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is how often a failed GET is retried on transport_error.
	MaxRetries int

	// RetryInterval is the initial backoff interval. Zero means 200ms.
	RetryInterval time.Duration

	// RateLimit caps calls per second. Zero disables limiting.
	RateLimit float64
	// Burst is the limiter bucket size. Zero means 1.
	Burst int

	UserAgent string

	// HTTPClient overrides the underlying client, e.g. for custom TLS.
	HTTPClient *http.Client
}

// Request describes one backend call.
type Request struct {
	// Op names the logical operation (ListUsers, Login) for logs and metrics.
	Op     string
	Method string
	Path   string

	// Session supplies host and bearer token. When nil, Host is used and no
	// Authorization header is sent.
	Session *api.Session
	Host    string

	Query url.Values

	// Form is sent as application/x-www-form-urlencoded. JSON is marshaled
	// as the body otherwise. At most one of them may be set.
	Form url.Values
	JSON any
}

// Response is a fully read backend response with a 2xx status.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

// Client performs panel calls. It holds no hosts or tokens and is safe for
// concurrent use by multiple goroutines.
type Client struct {
	httpClient *http.Client
	kind       api.Kind
	timeout    time.Duration
	maxRetries int
	retryEvery time.Duration
	limiter    *rate.Limiter
	userAgent  string

	inflight *InFlightRegistry
	seq      atomic.Uint64
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		kind:       opts.Kind,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		retryEvery: opts.RetryInterval,
		userAgent:  opts.UserAgent,
		inflight:   NewInFlightRegistry(),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.retryEvery <= 0 {
		c.retryEvery = defaultRetryInterval
	}
	if c.userAgent == "" {
		c.userAgent = "opexcore/" + string(opts.Kind)
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Kind returns the backend family the client is labeled with.
func (c *Client) Kind() api.Kind {
	return c.kind
}

// Send executes req and returns the response of a 2xx reply. Every other
// outcome is an *api.APIError annotated with the client's kind and req.Op.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	resp, apiErr := c.send(ctx, req)

	observability.ObserveCall(c.kind, req.Op, errOrNil(apiErr), time.Since(start))
	if apiErr != nil {
		apiErr = apiErr.WithOp(c.kind, req.Op)
		logFailure(ctx, c.kind, req, apiErr, time.Since(start))
		return nil, apiErr
	}
	logSuccess(c.kind, req, resp, time.Since(start))
	return resp, nil
}

func (c *Client) send(ctx context.Context, req *Request) (*Response, *api.APIError) {
	base := req.Host
	if req.Session != nil {
		base = req.Session.Host()
	}
	base = strings.TrimRight(base, "/")
	if base == "" {
		return nil, api.NewInvalidRequestError("host", "host is required")
	}
	if req.Form != nil && req.JSON != nil {
		return nil, api.NewInvalidRequestError("body", "request has both a form and a JSON body")
	}

	var body []byte
	contentType := ""
	switch {
	case req.Form != nil:
		body = []byte(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, api.NewInvalidRequestError("body", fmt.Sprintf("failed to marshal request: %s", err.Error()))
		}
		body = b
		contentType = "application/json"
	}

	target := base + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	reqID := requestIDFor(ctx)
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	key := reqID + "#" + strconv.FormatUint(c.seq.Add(1), 10)
	if !c.inflight.Register(key, cancel) {
		return nil, api.NewTransportError("client is closed", nil)
	}
	defer c.inflight.Remove(key)

	gauge := observability.PanelInFlight.WithLabelValues(string(c.kind))
	gauge.Inc()
	defer gauge.Dec()

	attempt := func() (*Response, *api.APIError) {
		if c.limiter != nil {
			if err := c.limiter.Wait(callCtx); err != nil {
				return nil, MapNetworkError(limiterError(callCtx, err))
			}
		}
		return c.roundTrip(callCtx, req.Method, target, body, contentType, req.Session, reqID)
	}

	if req.Method != http.MethodGet || c.maxRetries == 0 {
		return attempt()
	}

	var resp *Response
	op := func() error {
		r, apiErr := attempt()
		if apiErr != nil {
			if apiErr.Type != api.ErrorTypeTransport {
				return backoff.Permanent(apiErr)
			}
			return apiErr
		}
		resp = r
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryEvery
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), callCtx)

	notify := func(err error, wait time.Duration) {
		observability.PanelRetriesTotal.WithLabelValues(string(c.kind), req.Op).Inc()
		logRetry(c.kind, req, reqID, err, wait)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if apiErr, ok := api.AsAPIError(err); ok {
			return nil, apiErr
		}
		return nil, MapNetworkError(err)
	}
	return resp, nil
}

// roundTrip performs one HTTP exchange and reads the whole body.
func (c *Client) roundTrip(ctx context.Context, method, target string, body []byte, contentType string, sess *api.Session, reqID string) (*Response, *api.APIError) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, api.NewInvalidRequestError("host", fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if sess != nil {
		httpReq.Header.Set("Authorization", "Bearer "+sess.Token())
	}
	logRequest(c.kind, httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		// A partially read body is discarded.
		return nil, MapNetworkError(err)
	}
	traceBody(c.kind, httpResp.StatusCode, data)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp.StatusCode, data)
	}

	return &Response{
		Status:    httpResp.StatusCode,
		Header:    httpResp.Header,
		Body:      data,
		RequestID: reqID,
	}, nil
}

// Close cancels in-flight calls and releases idle connections. Calls made
// after Close fail with transport_error.
func (c *Client) Close() error {
	c.inflight.CancelAll()
	c.httpClient.CloseIdleConnections()
	return nil
}

// limiterError reports a limiter wait that could not finish before the
// deadline as a deadline error so that it maps to transport_timeout.
func limiterError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("rate limit wait exceeds deadline: %w", context.DeadlineExceeded)
	}
	return err
}

// errOrNil avoids handing a typed nil pointer to an error interface.
func errOrNil(e *api.APIError) error {
	if e == nil {
		return nil
	}
	return e
}
