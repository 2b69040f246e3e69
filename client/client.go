package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/ethda/chainfront/chainfront"
	"github.com/ethda/chainfront/httperr"
	"github.com/pkg/errors"
)

// DefaultMaxResponseSize caps the size of any response body read by the
// client.
const DefaultMaxResponseSize = 2 * datasize.MB

// ErrUnexpectedStatusCode is returned for non-2xx responses. It carries the
// upstream status code.
type ErrUnexpectedStatusCode struct {
	Code   int
	Body   string
	ErrMsg string
}

var _ httperr.StatusCoder = ErrUnexpectedStatusCode{}

func (err ErrUnexpectedStatusCode) StatusCode() int {
	return err.Code
}

func (err ErrUnexpectedStatusCode) Error() string {
	var errstr = fmt.Sprintf("Unexpected status code %d", err.Code)
	switch {
	case err.ErrMsg != "":
		errstr += ": " + err.ErrMsg
	case err.Body != "":
		errstr += ", body: " + err.Body
	}

	return errstr
}

// Client is a small HTTP client bound to a single backend host.
type Client struct {
	http.Client
	host    *url.URL
	agent   string
	maxBody datasize.ByteSize
}

// NewClient makes a new client for the given backend host, such as
// "https://explorer.example.com".
func NewClient(host string) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse host URL")
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("host URL %q is not absolute", host)
	}

	var client = &Client{
		Client: http.Client{
			Timeout: 10 * time.Second,
		},
		host:    u,
		maxBody: DefaultMaxResponseSize,
	}

	return client, nil
}

func (c *Client) SetUserAgent(userAgent string) {
	c.agent = userAgent
}

// SetMaxResponseSize sets the largest response body the client will read.
// Zero restores the default.
func (c *Client) SetMaxResponseSize(size datasize.ByteSize) {
	if size == 0 {
		size = DefaultMaxResponseSize
	}
	c.maxBody = size
}

// Host returns the stringified URL.
func (c *Client) Host() string {
	return strings.TrimSuffix(c.host.String(), "/")
}

// Endpoint returns the API root.
func (c *Client) Endpoint() string {
	return c.Host() + "/api/v2"
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	// Override the UserAgent if we have one.
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}

	r, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}

	r.Body = newLimitedBody(r.Body, int64(c.maxBody.Bytes()))

	if r.StatusCode < 200 || r.StatusCode > 299 {
		// Start reading the body for the error.
		defer r.Body.Close()

		var unexp = ErrUnexpectedStatusCode{Code: r.StatusCode}

		b, err := ioutil.ReadAll(r.Body)
		if err == nil {
			var errResp chainfront.ErrResponse
			if json.Unmarshal(b, &errResp); errResp.Message != "" {
				unexp.ErrMsg = errResp.Message
			} else {
				if len(b) > 100 {
					unexp.Body = string(b[:97]) + "..."
				} else {
					unexp.Body = string(b)
				}
			}
		}

		return nil, unexp
	}

	return r, nil
}

// DoRead sends the request and calls fn with the response body.
func (c *Client) DoRead(req *http.Request, fn func(io.Reader) error) error {
	q, err := c.Do(req)
	if err != nil {
		return err
	}
	defer q.Body.Close()

	return fn(q.Body)
}

func (c *Client) DoJSON(req *http.Request, resp interface{}) error {
	return c.DoRead(req, func(r io.Reader) error {
		if resp == nil {
			return nil
		}

		if err := json.NewDecoder(r).Decode(resp); err != nil {
			return errors.Wrap(err, "Failed to decode response")
		}

		return nil
	})
}

// Get sends a GET request to the given API path and decodes the JSON response
// into resp.
func (c *Client) Get(ctx context.Context, path string, resp interface{}, v url.Values) error {
	var url = c.Endpoint() + path
	if len(v) > 0 {
		url += "?" + v.Encode()
	}

	r, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return errors.Wrap(err, "Failed to create request")
	}
	r.Header.Set("Accept", "application/json")

	return c.DoJSON(r, resp)
}

// GetURL sends a GET request to an absolute URL that is not necessarily on the
// backend host.
func (c *Client) GetURL(ctx context.Context, rawurl string, fn func(io.Reader) error) error {
	r, err := http.NewRequestWithContext(ctx, "GET", rawurl, nil)
	if err != nil {
		return errors.Wrap(err, "Failed to create request")
	}

	return c.DoRead(r, fn)
}
