package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vocapoll/vocax/pkg/utils"
)

// HTTPClient talks to one or more ledger gateway endpoints with a shared
// token-bucket rate limit and a per-endpoint circuit-breaker. Transport
// failures rotate to the next endpoint; policy refusals (4xx with a ledger
// error code) are authoritative and returned immediately without failover.
type HTTPClient struct {
	endpoints []string
	client    *http.Client

	// token-bucket
	tokens      int64
	maxTokens   int64
	refillEvery time.Duration
	lastRefill  atomic.Value // time.Time

	// circuit-breaker
	mu       sync.Mutex
	failures map[string]int
	opened   map[string]time.Time

	breakerThreshold int
	breakerCooldown  time.Duration
}

// Opts is the set of options for a new HTTPClient.
type Opts struct {
	Endpoints       []string
	Timeout         time.Duration
	RPS             int
	Burst           int
	BreakerFailures int
	BreakerCooldown time.Duration
	HTTPClient      *http.Client
}

// NewHTTPWithOpts creates a new HTTPClient with the given options.
func NewHTTPWithOpts(o Opts) *HTTPClient {
	if o.RPS <= 0 {
		o.RPS = 20
	}
	if o.Burst <= 0 {
		o.Burst = 40
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.BreakerFailures <= 0 {
		o.BreakerFailures = 3
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 5 * time.Second
	}

	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = o.Timeout
	}

	c := &HTTPClient{
		endpoints:        utils.Dedup(o.Endpoints),
		client:           client,
		maxTokens:        int64(o.Burst),
		refillEvery:      time.Second / time.Duration(o.RPS),
		failures:         map[string]int{},
		opened:           map[string]time.Time{},
		breakerThreshold: o.BreakerFailures,
		breakerCooldown:  o.BreakerCooldown,
	}
	c.tokens = c.maxTokens
	c.lastRefill.Store(time.Now())
	return c
}

// refill adds tokens to the bucket if the refill interval elapsed.
func (c *HTTPClient) refill() {
	last := c.lastRefill.Load().(time.Time)
	now := time.Now()
	if now.Sub(last) >= c.refillEvery {
		if atomic.LoadInt64(&c.tokens) < c.maxTokens {
			atomic.AddInt64(&c.tokens, 1)
		}
		c.lastRefill.Store(now)
	}
}

// acquire takes a token from the bucket, blocking until one is available.
func (c *HTTPClient) acquire() {
	for {
		c.refill()
		if atomic.LoadInt64(&c.tokens) > 0 {
			atomic.AddInt64(&c.tokens, -1)
			return
		}
		time.Sleep(c.refillEvery / 2)
	}
}

// isOpen returns true while the endpoint's breaker is in the OPEN state.
func (c *HTTPClient) isOpen(ep string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.opened[ep]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(c.opened, ep)
		c.failures[ep] = 0
		return false
	}
	return true
}

// noteFailure marks an endpoint as failed and opens its breaker once the
// failure count reaches the threshold.
func (c *HTTPClient) noteFailure(ep string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[ep]++
	if c.failures[ep] >= c.breakerThreshold {
		c.opened[ep] = time.Now().Add(c.breakerCooldown)
	}
}

// refusal is the body shape of a 4xx ledger response.
type refusal struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// attempt issues one request against one endpoint. The bool reports whether
// the failure is endpoint-specific (network, 5xx, unreadable success body),
// i.e. whether a different endpoint could answer differently; a policy
// refusal is authoritative everywhere and comes back non-retryable.
func (c *HTTPClient) attempt(ctx context.Context, op, method, ep, path string, payload any, out any) (retryable bool, err error) {
	c.acquire()

	var body *bytes.Reader
	if payload != nil {
		b, mErr := json.Marshal(payload)
		if mErr != nil {
			// Fatal for the whole call; not an endpoint failure.
			return false, mErr
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, reqErr := http.NewRequestWithContext(ctx, method, ep+path, body)
	if reqErr != nil {
		return false, reqErr
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := c.client.Do(req)
	if doErr != nil {
		c.noteFailure(ep)
		return true, doErr
	}

	if resp.StatusCode >= 500 {
		c.noteFailure(ep)
		_ = utils.DrainAndClose(resp.Body)
		return true, fmt.Errorf("server %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		// Authoritative refusal: decode the ledger error code and stop.
		// Other endpoints would refuse identically.
		var r refusal
		decErr := json.NewDecoder(resp.Body).Decode(&r)
		_ = utils.DrainAndClose(resp.Body)
		if decErr != nil || r.Code == "" {
			return false, &TransportError{Op: op, Err: fmt.Errorf("http %d with unreadable body", resp.StatusCode)}
		}
		return false, &PolicyError{Code: r.Code, Message: r.Error}
	}
	if resp.StatusCode >= 300 {
		_ = utils.DrainAndClose(resp.Body)
		return true, fmt.Errorf("http %d", resp.StatusCode)
	}

	if out != nil {
		if decErr := json.NewDecoder(resp.Body).Decode(out); decErr != nil {
			_ = utils.DrainAndClose(resp.Body)
			return true, decErr
		}
	}
	return false, utils.DrainAndClose(resp.Body)
}

// doJSON issues a read request against the configured endpoints, rotating on
// transport failures. A 4xx with a ledger error code short-circuits into a
// *PolicyError; anything else that exhausts the endpoint list comes back as
// a *TransportError. Only reads may use this: rotation re-sends the request.
func (c *HTTPClient) doJSON(ctx context.Context, op, method, path string, payload any, out any) error {
	if len(c.endpoints) == 0 {
		return &TransportError{Op: op, Err: fmt.Errorf("no endpoints configured")}
	}

	var lastErr error
	for i := 0; i < len(c.endpoints); i++ {
		ep := c.endpoints[i]
		if c.isOpen(ep) {
			continue
		}
		retryable, err := c.attempt(ctx, op, method, ep, path, payload, out)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("all endpoints circuit-open")
	}
	return &TransportError{Op: op, Err: lastErr}
}

// doJSONWrite issues a mutating request with exactly one attempt. Once the
// request has been sent its outcome is unknown on any transport failure: the
// write may have landed, so re-sending it anywhere (this endpoint or another)
// risks double-submission. The failure surfaces as a *TransportError and any
// retry is the caller's explicit decision after re-checking state.
func (c *HTTPClient) doJSONWrite(ctx context.Context, op, method, path string, payload any, out any) error {
	if len(c.endpoints) == 0 {
		return &TransportError{Op: op, Err: fmt.Errorf("no endpoints configured")}
	}

	for _, ep := range c.endpoints {
		if c.isOpen(ep) {
			// Breaker-open endpoints are skipped, not attempted: nothing was
			// sent, so trying the next one cannot double-submit.
			continue
		}
		retryable, err := c.attempt(ctx, op, method, ep, path, payload, out)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		return &TransportError{Op: op, Err: fmt.Errorf("outcome unknown: %w", err)}
	}

	return &TransportError{Op: op, Err: fmt.Errorf("all endpoints circuit-open")}
}
