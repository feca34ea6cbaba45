package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client performs single HTTP round trips against the backend API. It never
// retries and enforces explicit connect and request timeouts. All failures
// come back as *Error values carrying the taxonomy in errors.go.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    *zap.SugaredLogger
}

// NewClient builds a client for the given base URL ("http://host:port/api").
func NewClient(baseURL string, connectTimeout, requestTimeout time.Duration, tokens TokenSource, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext:           dialer.DialContext,
				TLSHandshakeTimeout:   connectTimeout,
				ResponseHeaderTimeout: requestTimeout,
			},
		},
		tokens: tokens,
		log:    log,
	}
}

// Do performs one request and decodes a 2xx JSON body into out. A nil out
// discards the body; only the status range is checked then.
func (c *Client) Do(ctx context.Context, method, path string, body any, out any) error {
	raw, err := c.DoRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warnw("response decode failed", "method", method, "path", path, "err", err)
		return decodeError(err)
	}
	return nil
}

// DoRaw performs one request and returns the raw 2xx body bytes.
func (c *Client) DoRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, decodeError(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, networkError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("request failed", "method", method, "path", path, "err", err)
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Infow("request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return nil, httpError(resp.StatusCode, raw)
	}
	return raw, nil
}
